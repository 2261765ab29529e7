package kie

import (
	"testing"
)

func TestNormalizeStatusCompletedWithNestedResultUrls(t *testing.T) {
	raw := []byte(`{"successFlag":1,"data":{"response":{"resultUrls":["https://x/y.mp4"]}}}`)

	result := NormalizeStatus(raw)
	if result.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", result.Status)
	}
	if result.Progress != 1 {
		t.Fatalf("progress = %v, want 1", result.Progress)
	}
	if result.ResultURL != "https://x/y.mp4" {
		t.Fatalf("resultUrl = %q, want https://x/y.mp4", result.ResultURL)
	}
	if result.ErrorMessage != "" {
		t.Fatalf("errorMessage = %q, want empty", result.ErrorMessage)
	}
}

func TestNormalizeStatusFailedWithMessage(t *testing.T) {
	raw := []byte(`{"status":"error","message":"quota exceeded"}`)

	result := NormalizeStatus(raw)
	if result.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
	if result.Progress != 0 {
		t.Fatalf("progress = %v, want 0", result.Progress)
	}
	if result.ResultURL != "" {
		t.Fatalf("resultUrl = %q, want empty", result.ResultURL)
	}
	if result.ErrorMessage != "quota exceeded" {
		t.Fatalf("errorMessage = %q, want quota exceeded", result.ErrorMessage)
	}
}

func TestNormalizeStatusUnrecognizedStateIsProcessing(t *testing.T) {
	result := NormalizeStatus([]byte(`{"state":"queued"}`))
	if result.Status != StatusProcessing {
		t.Fatalf("status = %q, want processing", result.Status)
	}
	if result.Progress != 0 {
		t.Fatalf("progress = %v, want 0", result.Progress)
	}
	if result.ResultURL != "" || result.ErrorMessage != "" {
		t.Fatalf("expected empty url and error, got %q / %q", result.ResultURL, result.ErrorMessage)
	}
}

func TestNormalizeStatusStateVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Status
	}{
		{"success flag", `{"data":{"successFlag":1}}`, StatusCompleted},
		{"success flag at root", `{"successFlag":1}`, StatusCompleted},
		{"failure flag 2", `{"data":{"successFlag":2}}`, StatusFailed},
		{"failure flag 3", `{"successFlag":3}`, StatusFailed},
		{"state succeed", `{"data":{"state":"SUCCEED"}}`, StatusCompleted},
		{"snake task_status", `{"data":{"task_status":"done"}}`, StatusCompleted},
		{"camel taskStatus", `{"data":{"taskStatus":"FAILED"}}`, StatusFailed},
		{"flat status", `{"status":"completed"}`, StatusCompleted},
		{"fail state", `{"data":{"status":"fail"}}`, StatusFailed},
		{"pending flag", `{"data":{"successFlag":0}}`, StatusProcessing},
	}
	for _, tc := range cases {
		if got := NormalizeStatus([]byte(tc.raw)).Status; got != tc.want {
			t.Errorf("%s: status = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// The normalizer interprets an unreliable external contract; it must return a
// well-formed result for anything a JSON parser will hand it.
func TestNormalizeStatusIsTotal(t *testing.T) {
	inputs := []string{
		`{}`,
		`null`,
		`[]`,
		`[1,2,3]`,
		`"just a string"`,
		`42`,
		`true`,
		``,
		`not even json`,
		`{"data":null}`,
		`{"data":[{"deeply":{"nested":["garbage"]}}]}`,
		`{"data":{"response":{"resultUrls":[123,null]}}}`,
		`{"state":{"object":"instead of string"}}`,
	}
	for _, input := range inputs {
		result := NormalizeStatus([]byte(input))
		if result.Status != StatusProcessing && result.Status != StatusCompleted && result.Status != StatusFailed {
			t.Errorf("input %q: invalid status %q", input, result.Status)
		}
		if result.Progress < 0 || result.Progress > 1 {
			// unknown progress must stay in range, not explode
			t.Errorf("input %q: progress %v out of range", input, result.Progress)
		}
	}
}

func TestNormalizeStatusProgressFallbacks(t *testing.T) {
	if got := NormalizeStatus([]byte(`{"data":{"state":"generating","progress":0.4}}`)).Progress; got != 0.4 {
		t.Fatalf("progress = %v, want 0.4", got)
	}
	if got := NormalizeStatus([]byte(`{"data":{"state":"generating","response":{"progress":0.7}}}`)).Progress; got != 0.7 {
		t.Fatalf("nested progress = %v, want 0.7", got)
	}
}

func TestNormalizeStatusResultURLPriority(t *testing.T) {
	// Plural array in the response sub-object wins over singular data fields.
	raw := []byte(`{"data":{"state":"success","videoUrl":"https://x/single.mp4","response":{"resultUrls":["https://x/first.mp4","https://x/second.mp4"]}}}`)
	if got := NormalizeStatus(raw).ResultURL; got != "https://x/first.mp4" {
		t.Fatalf("resultUrl = %q, want https://x/first.mp4", got)
	}

	// Kling-style nested video list.
	raw = []byte(`{"data":{"state":"success","task_result":{"videos":[{"url":"https://x/kling.mp4"}]}}}`)
	if got := NormalizeStatus(raw).ResultURL; got != "https://x/kling.mp4" {
		t.Fatalf("resultUrl = %q, want https://x/kling.mp4", got)
	}

	// Non-string candidates are skipped, not coerced.
	raw = []byte(`{"data":{"state":"success","videoUrl":12345,"url":"https://x/fallback.mp4"}}`)
	if got := NormalizeStatus(raw).ResultURL; got != "https://x/fallback.mp4" {
		t.Fatalf("resultUrl = %q, want https://x/fallback.mp4", got)
	}
}

func TestNormalizeStatusErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"data":{"state":"failed","errorMessage":"a"}}`, "a"},
		{`{"data":{"state":"failed","error_message":"b"}}`, "b"},
		{`{"data":{"state":"failed","response":{"errorMessage":"c"}}}`, "c"},
		{`{"status":"failed","error":{"message":"d"}}`, "d"},
		{`{"status":"failed","msg":"e"}`, "e"},
		{`{"status":"failed"}`, ""},
	}
	for _, tc := range cases {
		if got := NormalizeStatus([]byte(tc.raw)).ErrorMessage; got != tc.want {
			t.Errorf("input %s: errorMessage = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestExtractResultURLsPluralAndSingular(t *testing.T) {
	urls := extractResultURLs([]byte(`{"data":{"response":{"resultUrls":["https://x/1.png","https://x/2.png"]}}}`))
	if len(urls) != 2 || urls[0] != "https://x/1.png" || urls[1] != "https://x/2.png" {
		t.Fatalf("urls = %v", urls)
	}

	urls = extractResultURLs([]byte(`{"data":{"url":"https://x/only.png"}}`))
	if len(urls) != 1 || urls[0] != "https://x/only.png" {
		t.Fatalf("urls = %v", urls)
	}

	if urls = extractResultURLs([]byte(`{"data":{}}`)); urls != nil {
		t.Fatalf("urls = %v, want nil", urls)
	}
}
