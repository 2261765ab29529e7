package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studio/internal/brand"
	"studio/internal/domain"
	"studio/internal/kie"
)

type videoGenerateRequest struct {
	Model           string   `json:"model"`
	Prompt          string   `json:"prompt"`
	PromptID        string   `json:"promptId"`
	SourceType      string   `json:"sourceType"`
	ImageURL        string   `json:"imageUrl"`
	AspectRatio     string   `json:"aspectRatio"`
	DurationSeconds int      `json:"durationSeconds"`
	AccountID       string   `json:"accountId"`
	NegativePrompts []string `json:"negativePrompts"`
}

type videoTaskResponse struct {
	ID              string  `json:"id"`
	GatewayTaskID   string  `json:"taskId,omitempty"`
	Model           string  `json:"model"`
	Prompt          string  `json:"prompt"`
	SourceType      string  `json:"sourceType"`
	AspectRatio     string  `json:"aspectRatio"`
	DurationSeconds int     `json:"durationSeconds"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress"`
	ResultURL       string  `json:"resultUrl,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

// VideosGenerate submits a generation job to the gateway and records it
// locally. Veo models go through the legacy Veo routes; everything else uses
// the Market createTask endpoint with a resolved model slug.
func (a *App) VideosGenerate(w http.ResponseWriter, r *http.Request) {
	var req videoGenerateRequest
	if !a.decode(w, r, &req) {
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	if req.Model == "" {
		req.Model = "veo3_fast"
	}

	imageMode := req.SourceType == string(domain.SourceImage) && req.ImageURL != ""
	modelPath, supported := kie.ResolveModelPath(req.Model, imageMode)
	if !supported && !kie.IsVeoModel(req.Model) {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported model or mode")
		return
	}
	if imageMode && kie.IsVeoModel(req.Model) {
		a.error(w, http.StatusBadRequest, "bad_request", "image input is not supported for veo models")
		return
	}

	ctx := r.Context()
	cfg, account, err := a.kieConfigFor(ctx, req.AccountID)
	if err != nil {
		a.kieError(w, err)
		return
	}
	if err := checkQuota(account, today()); err != nil {
		a.kieError(w, err)
		return
	}

	aspect := kie.MapAspectRatio(req.AspectRatio)
	if req.AspectRatio == "" {
		aspect = brand.AspectRatio
	}
	duration := req.DurationSeconds
	if duration <= 0 {
		duration = brand.Duration
	}
	fullPrompt := brand.InjectConstraints(req.Prompt)
	negatives := brand.MergeNegativePrompts(req.NegativePrompts)

	task := &domain.VideoTask{
		ID:              uuid.NewString(),
		Model:           req.Model,
		Prompt:          req.Prompt,
		SourceType:      domain.SourceText,
		AspectRatio:     aspect,
		DurationSeconds: duration,
		Status:          string(kie.StatusProcessing),
	}
	if modelPath != "" {
		task.ModelPath = &modelPath
	}
	if req.PromptID != "" {
		task.PromptID = &req.PromptID
	}
	if imageMode {
		task.SourceType = domain.SourceImage
		task.InputImageURL = &req.ImageURL
	}
	if account != nil {
		task.AccountID = &account.ID
	}

	var gatewayID string
	if kie.IsVeoModel(req.Model) {
		gatewayID, err = a.KIE.VeoGenerate(ctx, cfg, map[string]any{
			"prompt":      fullPrompt,
			"model":       req.Model,
			"aspectRatio": aspect,
		})
	} else {
		input := map[string]any{
			"prompt":          fullPrompt,
			"aspect_ratio":    aspect,
			"duration":        duration,
			"negative_prompt": strings.Join(negatives, ", "),
		}
		if imageMode {
			input["image_urls"] = []string{req.ImageURL}
		}
		gatewayID, err = a.KIE.CreateTask(ctx, cfg, modelPath, input)
	}
	if err != nil {
		// Keep a record of the failed submission so the dashboard history
		// shows it alongside successful runs.
		message := err.Error()
		task.Status = string(kie.StatusFailed)
		task.ErrorMessage = &message
		if createErr := a.Tasks.Create(ctx, task); createErr != nil {
			a.Logger.Error().Err(createErr).Msg("persist failed task")
		}
		a.kieError(w, err)
		return
	}

	task.GatewayTaskID = &gatewayID
	if err := a.Tasks.Create(ctx, task); err != nil {
		a.Logger.Error().Err(err).Str("task_id", gatewayID).Msg("persist task")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save task")
		return
	}
	if account != nil {
		if err := a.Accounts.RecordUsage(ctx, account.ID, today()); err != nil {
			a.Logger.Warn().Err(err).Str("account_id", account.ID).Msg("record usage")
		}
	}

	a.json(w, http.StatusAccepted, taskResponse(task))
}

// VideosStatus returns the current state of a task. Terminal states are
// served from storage; in-flight tasks are re-polled through the gateway and
// the normalized result is written back.
func (a *App) VideosStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id required")
		return
	}

	ctx := r.Context()
	task, err := a.Tasks.GetByID(ctx, id)
	if err != nil {
		a.kieError(w, err)
		return
	}
	if task.Status == string(kie.StatusCompleted) || task.Status == string(kie.StatusFailed) {
		a.json(w, http.StatusOK, taskResponse(task))
		return
	}
	if task.GatewayTaskID == nil {
		a.json(w, http.StatusOK, taskResponse(task))
		return
	}

	accountID := ""
	if task.AccountID != nil {
		accountID = *task.AccountID
	}
	cfg, _, err := a.kieConfigFor(ctx, accountID)
	if err != nil {
		a.kieError(w, err)
		return
	}

	gatewayID := *task.GatewayTaskID
	var raw []byte
	if kie.IsVeoTask(gatewayID) {
		raw, err = a.KIE.VeoRecordInfo(ctx, cfg, gatewayID)
	} else {
		raw, err = a.KIE.RecordInfo(ctx, cfg, gatewayID)
	}
	if err != nil {
		a.kieError(w, err)
		return
	}

	normalized := kie.NormalizeStatus(raw)
	update := domain.TaskStatusUpdate{
		Status:   string(normalized.Status),
		Progress: normalized.Progress,
	}
	if normalized.ResultURL != "" {
		update.ResultURL = &normalized.ResultURL
	}
	if normalized.ErrorMessage != "" {
		update.ErrorMessage = &normalized.ErrorMessage
	}
	if err := a.Tasks.UpdateStatus(ctx, task.ID, update); err != nil {
		a.Logger.Error().Err(err).Str("task_id", task.ID).Msg("update task status")
	}

	task.Status = update.Status
	task.Progress = update.Progress
	task.ResultURL = update.ResultURL
	task.ErrorMessage = update.ErrorMessage
	a.json(w, http.StatusOK, taskResponse(task))
}

// VideosList returns recent tasks, newest first.
func (a *App) VideosList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	tasks, err := a.Tasks.ListRecent(r.Context(), limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list tasks")
		return
	}
	items := make([]videoTaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func taskResponse(task *domain.VideoTask) videoTaskResponse {
	resp := videoTaskResponse{
		ID:              task.ID,
		Model:           task.Model,
		Prompt:          task.Prompt,
		SourceType:      string(task.SourceType),
		AspectRatio:     task.AspectRatio,
		DurationSeconds: task.DurationSeconds,
		Status:          task.Status,
		Progress:        task.Progress,
		CreatedAt:       task.CreatedAt.UTC().Format(time.RFC3339),
	}
	if task.GatewayTaskID != nil {
		resp.GatewayTaskID = *task.GatewayTaskID
	}
	if task.ResultURL != nil {
		resp.ResultURL = *task.ResultURL
	}
	if task.ErrorMessage != nil {
		resp.ErrorMessage = *task.ErrorMessage
	}
	return resp
}
