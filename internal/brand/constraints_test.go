package brand

import (
	"strings"
	"testing"
)

func TestInjectConstraintsAppendsBlock(t *testing.T) {
	out := InjectConstraints("  a cup of coffee on a table  ")
	if !strings.HasPrefix(out, "a cup of coffee on a table") {
		t.Fatalf("prompt not preserved: %q", out)
	}
	for _, want := range []string{"--- BRAND CONSTRAINTS ---", "FORBIDDEN:", "NEGATIVE PROMPTS:", "--- END CONSTRAINTS ---"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in constraint block", want)
		}
	}
}

func TestMergeNegativePromptsDeduplicates(t *testing.T) {
	merged := MergeNegativePrompts([]string{"Faces", "motion blur", "  ", "BOKEH", "motion blur"})

	counts := map[string]int{}
	for _, n := range merged {
		counts[strings.ToLower(n)]++
	}
	if counts["faces"] != 1 || counts["bokeh"] != 1 || counts["motion blur"] != 1 {
		t.Fatalf("duplicates not merged: %v", merged)
	}
	// Brand negatives lead the list.
	if merged[0] != NegativePrompts[0] {
		t.Fatalf("brand negatives must come first, got %q", merged[0])
	}
}

func TestMergeNegativePromptsNilInput(t *testing.T) {
	merged := MergeNegativePrompts(nil)
	if len(merged) != len(NegativePrompts) {
		t.Fatalf("len = %d, want %d", len(merged), len(NegativePrompts))
	}
}
