package kie

import (
	"regexp"
	"strings"
)

// ModelPaths holds the gateway slugs for one model, per generation mode. An
// empty slug means the mode is unsupported for that model.
type ModelPaths struct {
	TextToVideo  string
	ImageToVideo string
}

// Models registers every video model reachable through the gateway. The keys
// are the logical identifiers the dashboard uses.
var Models = map[string]ModelPaths{
	"veo3":      {TextToVideo: "veo3/text-to-video"},
	"veo3_fast": {TextToVideo: "veo3_fast/text-to-video"},
	"sora2":     {TextToVideo: "sora-2/text-to-video", ImageToVideo: "sora-2/image-to-video"},
	"sora2_pro": {TextToVideo: "sora-2-pro/text-to-video", ImageToVideo: "sora-2-pro/image-to-video"},
	"kling26":   {TextToVideo: "kling-2.6/text-to-video", ImageToVideo: "kling-2.6/image-to-video"},
}

// ModelOption describes one model for UI dropdowns.
type ModelOption struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Engine string `json:"engine"`
}

// AllModels lists the supported models in display order.
var AllModels = []ModelOption{
	{Label: "Veo 3", Value: "veo3", Engine: "google"},
	{Label: "Veo 3 Fast", Value: "veo3_fast", Engine: "google"},
	{Label: "Sora 2", Value: "sora2", Engine: "openai"},
	{Label: "Sora 2 Pro", Value: "sora2_pro", Engine: "openai"},
	{Label: "Kling 2.6", Value: "kling26", Engine: "kuaishou"},
}

// ResolveModelPath looks up the gateway slug for a model and mode. ok is
// false for unknown models and for modes the model does not support; callers
// treat that as a user-facing "unsupported combination", not a fault.
func ResolveModelPath(model string, imageMode bool) (string, bool) {
	entry, found := Models[model]
	if !found {
		return "", false
	}
	slug := entry.TextToVideo
	if imageMode {
		slug = entry.ImageToVideo
	}
	if slug == "" {
		return "", false
	}
	return slug, true
}

// Family detection is a prefix test on the model string. Brittle, but the
// naming convention is the only contract the gateway keeps stable.

// IsVeoModel reports whether the model string names a Google Veo variant.
func IsVeoModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "veo")
}

// IsSoraModel reports whether the model string names an OpenAI Sora variant.
func IsSoraModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "sora")
}

// IsKlingModel reports whether the model string names a Kuaishou Kling variant.
func IsKlingModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "kling")
}

const veoTaskPrefix = "veo_"

var veoPrefixPattern = regexp.MustCompile(`(?i)^veo_`)

// TagVeoTask namespaces a task id so later polls route to the Veo endpoints.
// Tagging an already-tagged id is a no-op.
func TagVeoTask(taskID string) string {
	if veoPrefixPattern.MatchString(taskID) {
		return taskID
	}
	return veoTaskPrefix + taskID
}

// StripVeoTask removes the routing tag before the id is sent upstream.
// Untagged ids pass through unchanged.
func StripVeoTask(taskID string) string {
	return veoPrefixPattern.ReplaceAllString(taskID, "")
}

// IsVeoTask reports whether the id carries the Veo routing tag.
func IsVeoTask(taskID string) bool {
	return veoPrefixPattern.MatchString(taskID)
}

var ratioPattern = regexp.MustCompile(`^\d+:\d+$`)

// pixel-dimension shorthands the dashboard UI still sends
var dimensionRatios = map[string]string{
	"720x1280":  "9:16",
	"1280x720":  "16:9",
	"1024x1024": "1:1",
}

// MapAspectRatio converts pixel-dimension strings to the ratio form the
// gateway expects and passes well-formed ratios through. Anything else falls
// back to 16:9.
func MapAspectRatio(input string) string {
	v := strings.TrimSpace(input)
	if v == "" {
		return "16:9"
	}
	if ratio, ok := dimensionRatios[v]; ok {
		return ratio
	}
	if ratioPattern.MatchString(v) {
		return v
	}
	if strings.EqualFold(v, "auto") {
		return "Auto"
	}
	return "16:9"
}
