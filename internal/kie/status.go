package kie

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Status is one of the three canonical lifecycle states a generation task can
// be in. Every provider-specific state string maps onto these.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// TaskResult is the canonical interpretation of a record-info response. It is
// the only shape the rest of the system ever sees; it fully insulates callers
// from the gateway's per-provider field variance.
type TaskResult struct {
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	// ResultURL is empty until the task completes.
	ResultURL string `json:"resultUrl"`
	// ErrorMessage is populated only when Status is failed.
	ErrorMessage string `json:"errorMessage"`
}

// Field discovery is data-driven: each extraction concern is an ordered path
// list, first match wins. Adding support for a new provider shape means
// appending a path, not touching control flow. Paths are relative to the
// unwrapped data object unless noted.
var (
	stateFieldPaths = []string{"state", "status", "task_status", "taskStatus"}

	progressPaths = []string{"progress", "response.progress"}

	// Plural URL arrays first (response/result sub-object, then data level),
	// then singular fields.
	resultURLPaths = []string{
		"response.resultUrls.0", "response.result_urls.0", "response.urls.0",
		"result.resultUrls.0", "result.result_urls.0", "result.urls.0",
		"resultUrls.0", "result_urls.0", "urls.0",
		"videoUrl", "video_url",
		"task_result.videos.0.url", "taskResult.videos.0.url",
		"url",
		"response.videoUrl", "response.video_url", "response.videos.0.url",
		"result.videoUrl", "result.video_url", "result.videos.0.url",
	}

	errorMessagePaths = []string{
		"errorMessage", "error_message", "message", "response.errorMessage",
	}

	resultURLArrayPaths = []string{
		"response.resultUrls", "response.result_urls", "response.urls",
		"result.resultUrls", "result.result_urls", "result.urls",
		"resultUrls", "result_urls", "urls",
	}
)

var completedStates = map[string]bool{
	"success":   true,
	"succeed":   true,
	"completed": true,
	"done":      true,
}

var failedStates = map[string]bool{
	"failed": true,
	"error":  true,
	"fail":   true,
}

// NormalizeStatus maps an arbitrary record-info payload onto a TaskResult.
// It is total: any input, including invalid JSON, nulls and arrays, yields a
// well-formed result. Unrecognized states degrade to processing rather than
// erroring, since a state we cannot read is not evidence of failure.
func NormalizeStatus(raw []byte) TaskResult {
	doc := gjson.ParseBytes(raw)
	data := unwrapData(doc)

	successFlag, hasFlag := successFlagOf(doc, data)
	state := stateOf(doc, data)

	status := StatusProcessing
	switch {
	case (hasFlag && successFlag == 1) || completedStates[state]:
		status = StatusCompleted
	case (hasFlag && (successFlag == 2 || successFlag == 3)) || failedStates[state]:
		status = StatusFailed
	}

	result := TaskResult{Status: status, ResultURL: extractResultURL(data)}
	switch status {
	case StatusCompleted:
		result.Progress = 1
	case StatusProcessing:
		result.Progress = progressOf(data)
	}
	if status == StatusFailed {
		result.ErrorMessage = extractErrorMessage(doc, data)
	}
	return result
}

// unwrapData peels one level of {"data": ...} nesting when present and
// non-null; otherwise the document itself is the data.
func unwrapData(doc gjson.Result) gjson.Result {
	if data := doc.Get("data"); data.Exists() && data.Type != gjson.Null {
		return data
	}
	return doc
}

func successFlagOf(doc, data gjson.Result) (int64, bool) {
	for _, candidate := range []gjson.Result{data.Get("successFlag"), doc.Get("successFlag")} {
		if candidate.Type == gjson.Number {
			return candidate.Int(), true
		}
	}
	return 0, false
}

func stateOf(doc, data gjson.Result) string {
	for _, path := range stateFieldPaths {
		if v := data.Get(path); v.Exists() && v.Type != gjson.Null {
			return strings.ToLower(v.String())
		}
	}
	if v := doc.Get("status"); v.Exists() && v.Type != gjson.Null {
		return strings.ToLower(v.String())
	}
	return ""
}

func progressOf(data gjson.Result) float64 {
	for _, path := range progressPaths {
		if v := data.Get(path); v.Type == gjson.Number {
			return v.Float()
		}
	}
	return 0
}

func extractResultURL(data gjson.Result) string {
	return firstString(data, resultURLPaths...)
}

// extractResultURLs returns every URL in the first recognized plural-array
// field, falling back to the singular fields. Used by the image poll loop,
// where one task can yield several assets.
func extractResultURLs(raw []byte) []string {
	data := unwrapData(gjson.ParseBytes(raw))
	for _, path := range resultURLArrayPaths {
		candidate := data.Get(path)
		if !candidate.IsArray() {
			continue
		}
		var urls []string
		for _, item := range candidate.Array() {
			if item.Type == gjson.String && item.Str != "" {
				urls = append(urls, item.Str)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	if single := extractResultURL(data); single != "" {
		return []string{single}
	}
	return nil
}

func extractErrorMessage(doc, data gjson.Result) string {
	if msg := firstString(data, errorMessagePaths...); msg != "" {
		return msg
	}
	return firstString(doc, "error.message", "msg")
}
