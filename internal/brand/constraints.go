// Package brand centralises the Luckin brand guardrails that every generated
// asset must follow. The constraint block is appended verbatim to user
// prompts before they reach the gateway.
package brand

import (
	"fmt"
	"strings"
)

// Forbidden lists content that must never appear in generated footage.
var Forbidden = []string{
	"NO human faces visible",
	"NO people (full body or partial)",
	"NO hands or fingers clearly shown",
	"NO external brand logos",
	"NO price tags or text overlays on screen",
}

// Required style parameters for every video.
const (
	AspectRatio = "9:16"
	Duration    = 8
	MinCuts     = 4
	Focus       = "Deep focus F/11+, entire frame sharp, no bokeh"
	Motion      = "Constant subtle motion, no static frames"
	Style       = "Hyper-realistic textures, premium product UGC aesthetic"
)

// Brand palette.
const (
	PrimaryColor = "#0066CC"
	DarkColor    = "#004C99"
	AccentColor  = "#00A0E9"
	Theme        = "blue-white minimalist"
)

// NegativePrompts are merged into every request's negative prompt list.
var NegativePrompts = []string{
	"faces", "people", "hands", "fingers", "text overlays",
	"subtitles", "price tags", "watermarks", "blur", "bokeh",
	"cartoon", "low-res", "extra logos",
}

// InjectConstraints appends the brand constraint block to a user prompt.
func InjectConstraints(userPrompt string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(userPrompt))
	b.WriteString("\n\n--- BRAND CONSTRAINTS ---\n\nFORBIDDEN:\n")
	for _, f := range Forbidden {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	b.WriteString("\nREQUIRED STYLE:\n")
	fmt.Fprintf(&b, "  - Focus: %s\n", Focus)
	fmt.Fprintf(&b, "  - Motion: %s\n", Motion)
	fmt.Fprintf(&b, "  - Style: %s\n", Style)
	fmt.Fprintf(&b, "  - Minimum cuts: %d\n", MinCuts)
	b.WriteString("\nNEGATIVE PROMPTS:\n")
	fmt.Fprintf(&b, "  %s\n", strings.Join(NegativePrompts, ", "))
	b.WriteString("\n--- END CONSTRAINTS ---")
	return b.String()
}

// MergeNegativePrompts combines user-supplied negatives with the brand list,
// deduplicating case-insensitively. Brand negatives always come first.
func MergeNegativePrompts(userNegatives []string) []string {
	merged := make([]string, 0, len(NegativePrompts)+len(userNegatives))
	seen := make(map[string]struct{}, len(NegativePrompts)+len(userNegatives))
	for _, n := range NegativePrompts {
		merged = append(merged, n)
		seen[strings.ToLower(n)] = struct{}{}
	}
	for _, n := range userNegatives {
		trimmed := strings.TrimSpace(n)
		key := strings.ToLower(trimmed)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, trimmed)
	}
	return merged
}

// Context returns a one-line brand summary for chat system prompts.
func Context() string {
	return fmt.Sprintf("Brand: Luckin Coffee. Primary color: %s. Theme: %s. Forbidden: %s. Style: %s.",
		PrimaryColor, Theme, strings.Join(Forbidden, "; "), Style)
}
