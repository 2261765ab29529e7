package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"studio/internal/brand"
	"studio/internal/domain"
	"studio/internal/kie"
	"studio/internal/middleware"
)

// Per-family polish instructions. Each model family rewards a different
// prompt shape, so the system prompt steers the rewrite accordingly.
var polishSystemPrompts = map[string]string{
	"veo": "You are a prompt engineer for Google Veo. Rewrite the user's video prompt into a single cinematic paragraph: concrete subjects, camera movement, lens and lighting detail. " +
		"Keep it under 120 words. Return only the rewritten prompt.",
	"sora": "You are a prompt engineer for OpenAI Sora. Rewrite the user's video prompt with a clear shot-by-shot narrative and physical realism cues. " +
		"Keep it under 150 words. Return only the rewritten prompt.",
	"kling": "You are a prompt engineer for Kling. Rewrite the user's video prompt emphasising motion dynamics, scene transitions and texture detail. " +
		"Keep it under 120 words. Return only the rewritten prompt.",
}

func polishSystemPrompt(model, locale string) string {
	base := polishSystemPrompts["veo"]
	switch {
	case kie.IsSoraModel(model):
		base = polishSystemPrompts["sora"]
	case kie.IsKlingModel(model):
		base = polishSystemPrompts["kling"]
	}
	base += " " + brand.Context()
	if locale == "zh" {
		base += " Reply in Chinese."
	}
	return base
}

type promptPolishRequest struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	ImageURL  string `json:"imageUrl"`
	AccountID string `json:"accountId"`
}

// PromptsPolish rewrites a rough prompt through the chat route, optionally
// grounding the rewrite on a reference image.
func (a *App) PromptsPolish(w http.ResponseWriter, r *http.Request) {
	var req promptPolishRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}

	ctx := r.Context()
	cfg, _, err := a.kieConfigFor(ctx, req.AccountID)
	if err != nil {
		a.kieError(w, err)
		return
	}

	locale := middleware.LocaleFromContext(ctx)
	messages := []kie.ChatMessage{
		kie.TextMessage("system", polishSystemPrompt(req.Model, locale)),
	}
	if req.ImageURL != "" {
		messages = append(messages, kie.VisionMessage("user", req.Prompt, req.ImageURL))
	} else {
		messages = append(messages, kie.TextMessage("user", req.Prompt))
	}

	polished, err := a.KIE.ChatCompletion(ctx, cfg, messages, "")
	if err != nil {
		a.kieError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"prompt": strings.TrimSpace(polished)})
}

type promptGenerateRequest struct {
	Category  string `json:"category"`
	Theme     string `json:"theme"`
	Count     int    `json:"count"`
	AccountID string `json:"accountId"`
}

// PromptsGenerate asks the chat route for new prompt templates and stores
// them in the library as custom entries.
func (a *App) PromptsGenerate(w http.ResponseWriter, r *http.Request) {
	var req promptGenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Category == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "category is required")
		return
	}
	if req.Count <= 0 || req.Count > 10 {
		req.Count = 3
	}

	ctx := r.Context()
	cfg, _, err := a.kieConfigFor(ctx, req.AccountID)
	if err != nil {
		a.kieError(w, err)
		return
	}

	system := "You design short-form product video prompts. " + brand.Context() +
		" Respond with a JSON array only, no prose. Each element: " +
		`{"titleEn","titleCn","description","style","camera","lighting","setting","motion","keywords":[],"negativePrompts":[]}.`
	user := fmt.Sprintf("Generate %d prompt templates for category %q.", req.Count, req.Category)
	if req.Theme != "" {
		user += " Theme: " + req.Theme + "."
	}

	reply, err := a.KIE.ChatCompletion(ctx, cfg, []kie.ChatMessage{
		kie.TextMessage("system", system),
		kie.TextMessage("user", user),
	}, "")
	if err != nil {
		a.kieError(w, err)
		return
	}

	parsed := gjson.Parse(stripCodeFence(reply))
	if !parsed.IsArray() {
		a.error(w, http.StatusBadGateway, "malformed_response", "model did not return a prompt list")
		return
	}

	var created []domain.Prompt
	for _, item := range parsed.Array() {
		prompt := promptFromJSON(item, req.Category)
		if prompt.Description == "" {
			continue
		}
		if err := a.Prompts.Create(ctx, &prompt); err != nil {
			a.Logger.Error().Err(err).Msg("persist generated prompt")
			continue
		}
		created = append(created, prompt)
	}
	if len(created) == 0 {
		a.error(w, http.StatusBadGateway, "malformed_response", "no usable prompts in model reply")
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"items": promptResponses(created)})
}

func promptFromJSON(item gjson.Result, category string) domain.Prompt {
	prompt := domain.Prompt{
		ID:              uuid.NewString(),
		Category:        category,
		TitleEN:         item.Get("titleEn").String(),
		TitleCN:         item.Get("titleCn").String(),
		Description:     strings.TrimSpace(item.Get("description").String()),
		DurationSeconds: brand.Duration,
		AspectRatio:     brand.AspectRatio,
		Cuts:            brand.MinCuts + 1,
		IsCustom:        true,
	}
	for _, field := range []struct {
		key  string
		dest **string
	}{
		{"style", &prompt.Style},
		{"camera", &prompt.Camera},
		{"lighting", &prompt.Lighting},
		{"setting", &prompt.Setting},
		{"motion", &prompt.Motion},
	} {
		if v := item.Get(field.key).String(); v != "" {
			value := v
			*field.dest = &value
		}
	}
	for _, kw := range item.Get("keywords").Array() {
		if v := strings.TrimSpace(kw.String()); v != "" {
			prompt.Keywords = append(prompt.Keywords, v)
		}
	}
	var negatives []string
	for _, n := range item.Get("negativePrompts").Array() {
		negatives = append(negatives, n.String())
	}
	prompt.NegativePrompts = brand.MergeNegativePrompts(negatives)
	return prompt
}

// stripCodeFence unwraps a reply the model insisted on fencing.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// PromptsList returns library entries filtered by query parameters.
func (a *App) PromptsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PromptFilter{
		Category:   q.Get("category"),
		CustomOnly: q.Get("custom") == "true",
		Search:     q.Get("q"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	prompts, err := a.Prompts.List(r.Context(), filter)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list prompts")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": promptResponses(prompts)})
}

type promptCreateRequest struct {
	Category        string   `json:"category"`
	TitleEN         string   `json:"titleEn"`
	TitleCN         string   `json:"titleCn"`
	Description     string   `json:"description"`
	Style           string   `json:"style"`
	Camera          string   `json:"camera"`
	Lighting        string   `json:"lighting"`
	Setting         string   `json:"setting"`
	Motion          string   `json:"motion"`
	Keywords        []string `json:"keywords"`
	NegativePrompts []string `json:"negativePrompts"`
}

// PromptsCreate stores an operator-authored prompt template.
func (a *App) PromptsCreate(w http.ResponseWriter, r *http.Request) {
	var req promptCreateRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Category == "" || strings.TrimSpace(req.Description) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "category and description are required")
		return
	}

	prompt := domain.Prompt{
		ID:              uuid.NewString(),
		Category:        req.Category,
		TitleEN:         req.TitleEN,
		TitleCN:         req.TitleCN,
		Description:     strings.TrimSpace(req.Description),
		DurationSeconds: brand.Duration,
		AspectRatio:     brand.AspectRatio,
		Cuts:            brand.MinCuts + 1,
		Keywords:        req.Keywords,
		NegativePrompts: brand.MergeNegativePrompts(req.NegativePrompts),
		IsCustom:        true,
	}
	for _, field := range []struct {
		value string
		dest  **string
	}{
		{req.Style, &prompt.Style},
		{req.Camera, &prompt.Camera},
		{req.Lighting, &prompt.Lighting},
		{req.Setting, &prompt.Setting},
		{req.Motion, &prompt.Motion},
	} {
		if field.value != "" {
			v := field.value
			*field.dest = &v
		}
	}

	if err := a.Prompts.Create(r.Context(), &prompt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save prompt")
		return
	}
	a.json(w, http.StatusCreated, promptResponse(&prompt))
}

// PromptsDelete removes a custom prompt.
func (a *App) PromptsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}
	if err := a.Prompts.Delete(r.Context(), id); err != nil {
		a.kieError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]bool{"deleted": true})
}

type promptView struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	TitleEN         string   `json:"titleEn"`
	TitleCN         string   `json:"titleCn"`
	Description     string   `json:"description"`
	Style           *string  `json:"style,omitempty"`
	Camera          *string  `json:"camera,omitempty"`
	Lighting        *string  `json:"lighting,omitempty"`
	Setting         *string  `json:"setting,omitempty"`
	Motion          *string  `json:"motion,omitempty"`
	DurationSeconds int      `json:"durationSeconds"`
	AspectRatio     string   `json:"aspectRatio"`
	Cuts            int      `json:"cuts"`
	Keywords        []string `json:"keywords"`
	NegativePrompts []string `json:"negativePrompts"`
	IsCustom        bool     `json:"isCustom"`
}

func promptResponse(p *domain.Prompt) promptView {
	return promptView{
		ID:              p.ID,
		Category:        p.Category,
		TitleEN:         p.TitleEN,
		TitleCN:         p.TitleCN,
		Description:     p.Description,
		Style:           p.Style,
		Camera:          p.Camera,
		Lighting:        p.Lighting,
		Setting:         p.Setting,
		Motion:          p.Motion,
		DurationSeconds: p.DurationSeconds,
		AspectRatio:     p.AspectRatio,
		Cuts:            p.Cuts,
		Keywords:        p.Keywords,
		NegativePrompts: p.NegativePrompts,
		IsCustom:        p.IsCustom,
	}
}

func promptResponses(prompts []domain.Prompt) []promptView {
	out := make([]promptView, 0, len(prompts))
	for i := range prompts {
		out = append(out, promptResponse(&prompts[i]))
	}
	return out
}
