package kie

import "testing"

func TestResolveModelPath(t *testing.T) {
	cases := []struct {
		model     string
		imageMode bool
		want      string
		ok        bool
	}{
		{"sora2", true, "sora-2/image-to-video", true},
		{"sora2", false, "sora-2/text-to-video", true},
		{"sora2_pro", true, "sora-2-pro/image-to-video", true},
		{"kling26", false, "kling-2.6/text-to-video", true},
		{"veo3", false, "veo3/text-to-video", true},
		{"veo3", true, "", false},
		{"veo3_fast", true, "", false},
		{"unknown-model", false, "", false},
	}
	for _, tc := range cases {
		got, ok := ResolveModelPath(tc.model, tc.imageMode)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ResolveModelPath(%q, %v) = (%q, %v), want (%q, %v)",
				tc.model, tc.imageMode, got, ok, tc.want, tc.ok)
		}
	}
}

func TestModelFamilyDetection(t *testing.T) {
	if !IsVeoModel("veo3_fast") || !IsVeoModel("VEO3") {
		t.Fatalf("veo detection failed")
	}
	if !IsSoraModel("sora2_pro") || IsSoraModel("veo3") {
		t.Fatalf("sora detection failed")
	}
	if !IsKlingModel("kling26") || IsKlingModel("sora2") {
		t.Fatalf("kling detection failed")
	}
}

func TestVeoTaskTaggingIsIdempotent(t *testing.T) {
	id := "abc-123"
	tagged := TagVeoTask(id)
	if tagged != "veo_abc-123" {
		t.Fatalf("tagged = %q", tagged)
	}
	if TagVeoTask(tagged) != tagged {
		t.Fatalf("double-tagging changed the id: %q", TagVeoTask(tagged))
	}
	if StripVeoTask(tagged) != id {
		t.Fatalf("strip(tag(id)) = %q, want %q", StripVeoTask(tagged), id)
	}
	if StripVeoTask(id) != id {
		t.Fatalf("stripping an untagged id changed it: %q", StripVeoTask(id))
	}
	// The gateway lowercases ids in some responses.
	if StripVeoTask("VEO_xyz") != "xyz" {
		t.Fatalf("case-insensitive strip failed: %q", StripVeoTask("VEO_xyz"))
	}
	if !IsVeoTask(tagged) || IsVeoTask(id) {
		t.Fatalf("tag detection failed for %q / %q", tagged, id)
	}
}

func TestMapAspectRatio(t *testing.T) {
	cases := map[string]string{
		"720x1280":  "9:16",
		"1280x720":  "16:9",
		"1024x1024": "1:1",
		"9:16":      "9:16",
		"21:9":      "21:9",
		"auto":      "Auto",
		"AUTO":      "Auto",
		"":          "16:9",
		"banana":    "16:9",
	}
	for input, want := range cases {
		if got := MapAspectRatio(input); got != want {
			t.Errorf("MapAspectRatio(%q) = %q, want %q", input, got, want)
		}
	}
}
