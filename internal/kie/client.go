package kie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"studio/internal/infra"
)

const defaultPollInterval = 2 * time.Second

// Options configures the gateway client. Credentials deliberately do not
// appear here; they travel with the per-call Config instead.
type Options struct {
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
}

// Client performs HTTP calls against the KIE gateway. It holds no credential
// or base-URL state, so one client instance serves every account concurrently.
type Client struct {
	httpClient   *http.Client
	logger       zerolog.Logger
	pollInterval time.Duration
}

// NewClient constructs a client with injected dependencies and sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Client{httpClient: httpClient, logger: logger, pollInterval: interval}
}

// CreateTask starts a generation job through the Market createTask endpoint
// used by Sora, Kling and the other non-Veo models. modelPath is the
// slash-delimited gateway slug, e.g. "sora-2/text-to-video".
func (c *Client) CreateTask(ctx context.Context, cfg Config, modelPath string, input map[string]any) (string, error) {
	if !cfg.hasCredentials() {
		return "", ErrMissingAPIKey
	}
	payload, err := json.Marshal(map[string]any{"model": modelPath, "input": input})
	if err != nil {
		return "", fmt.Errorf("kie: encode createTask: %w", err)
	}

	// Single known route; failures here are reported directly rather than
	// hidden behind candidate probing.
	result, err := c.fetchJSON(ctx, cfg, cfg.origin()+"/api/v1/jobs/createTask", requestSpec{
		method:      http.MethodPost,
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("kie: createTask: %w", err)
	}
	if !result.ok {
		return "", &UpstreamError{Op: "createTask", Status: result.status, Message: string(result.body)}
	}

	taskID := firstScalar(result.json, "data.taskId", "data.task_id", "taskId", "data.id")
	if taskID == "" {
		return "", &MalformedResponseError{Op: "createTask", Body: result.body}
	}
	c.logger.Debug().Str("model", modelPath).Str("task_id", taskID).Msg("kie: task created")
	return taskID, nil
}

// VeoGenerate submits a Veo generation request through the legacy Veo routes,
// probing both historical endpoint names. The returned id carries the veo_
// tag so a later status poll knows which endpoint family to query.
func (c *Client) VeoGenerate(ctx context.Context, cfg Config, params map[string]any) (string, error) {
	if !cfg.hasCredentials() {
		return "", ErrMissingAPIKey
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("kie: encode veo request: %w", err)
	}
	candidates := []string{
		cfg.origin() + "/api/v1/veo/generate",
		cfg.origin() + "/api/v1/veo/create",
	}
	result, err := c.tryEndpoints(ctx, cfg, "veoGenerate", candidates, requestSpec{
		method:      http.MethodPost,
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	taskID := firstScalar(result.json, "data.taskId", "data.task_id", "taskId", "task_id")
	if taskID == "" {
		return "", &MalformedResponseError{Op: "veoGenerate", Body: result.body}
	}
	tagged := TagVeoTask(taskID)
	c.logger.Debug().Str("task_id", tagged).Msg("kie: veo task created")
	return tagged, nil
}

// RecordInfo polls the generic Market record-info endpoint and returns the
// raw gateway JSON. Interpret it with NormalizeStatus.
func (c *Client) RecordInfo(ctx context.Context, cfg Config, taskID string) (json.RawMessage, error) {
	if !cfg.hasCredentials() {
		return nil, ErrMissingAPIKey
	}
	encoded := url.QueryEscape(taskID)
	candidates := []string{
		cfg.origin() + "/api/v1/jobs/recordInfo?taskId=" + encoded,
		cfg.origin() + "/api/v1/jobs/record-info?taskId=" + encoded,
	}
	result, err := c.tryEndpoints(ctx, cfg, "recordInfo", candidates, requestSpec{method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(result.body), nil
}

// VeoRecordInfo polls the Veo-specific record-info endpoints, falling back to
// the generic ones. Veo routes come first: the generic endpoints will answer
// for Veo tasks but may return partial data.
func (c *Client) VeoRecordInfo(ctx context.Context, cfg Config, taskID string) (json.RawMessage, error) {
	if !cfg.hasCredentials() {
		return nil, ErrMissingAPIKey
	}
	encoded := url.QueryEscape(StripVeoTask(taskID))
	candidates := []string{
		cfg.origin() + "/api/v1/veo/record-info?taskId=" + encoded,
		cfg.origin() + "/api/v1/veo/recordInfo?taskId=" + encoded,
		cfg.origin() + "/api/v1/jobs/recordInfo?taskId=" + encoded,
		cfg.origin() + "/api/v1/jobs/record-info?taskId=" + encoded,
	}
	result, err := c.tryEndpoints(ctx, cfg, "veoRecordInfo", candidates, requestSpec{method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(result.body), nil
}

// UploadFile pushes raw bytes to the gateway's file-hosting service and
// returns the public URL. Each candidate route gets a freshly encoded
// multipart body, and the response URL is accepted under any of the field
// names the gateway has used historically.
func (c *Client) UploadFile(ctx context.Context, cfg Config, data []byte, filename string) (string, error) {
	if !cfg.hasCredentials() {
		return "", ErrMissingAPIKey
	}
	candidates := []string{
		cfg.origin() + "/api/v1/files/upload",
		cfg.origin() + "/api/v1/file/upload",
		cfg.origin() + "/api/v1/upload",
	}

	for _, endpoint := range candidates {
		body, contentType, err := encodeMultipart(data, filename)
		if err != nil {
			return "", fmt.Errorf("kie: encode upload: %w", err)
		}
		result, err := c.fetchJSON(ctx, cfg, endpoint, requestSpec{
			method:      http.MethodPost,
			body:        body,
			contentType: contentType,
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.logger.Debug().Err(err).Str("url", endpoint).Msg("kie: upload attempt failed")
			continue
		}
		if !result.ok {
			continue
		}
		fileURL := firstString(result.json,
			"data.url", "data.fileUrl", "data.file_url", "data.downloadUrl", "data.result_url",
			"url", "fileUrl", "file_url", "downloadUrl", "result_url",
		)
		if fileURL != "" {
			c.logger.Debug().Str("url", fileURL).Msg("kie: file uploaded")
			return fileURL, nil
		}
	}
	return "", &AllCandidatesFailedError{Op: "uploadFile", URLs: candidates}
}

func encodeMultipart(data []byte, filename string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// ChatMessage is one entry in a chat-completion conversation. Content is
// either a plain string or a slice of ContentPart for vision requests.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part message body.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

// ImageRef wraps an image URL for vision content.
type ImageRef struct {
	URL string `json:"url"`
}

// TextMessage builds a plain-text chat message.
func TextMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Content: text}
}

// VisionMessage builds a user message pairing text with an image reference.
func VisionMessage(role, text, imageURL string) ChatMessage {
	return ChatMessage{Role: role, Content: []ContentPart{
		{Type: "text", Text: text},
		{Type: "image_url", ImageURL: &ImageRef{URL: imageURL}},
	}}
}

// ChatCompletion sends a non-streaming request through the gateway's
// OpenAI-compatible route and returns the assistant's reply. This route is
// stable and documented, so unlike the legacy task routes it is called
// directly and fails loudly instead of probing candidates.
func (c *Client) ChatCompletion(ctx context.Context, cfg Config, messages []ChatMessage, model string) (string, error) {
	if !cfg.hasCredentials() {
		return "", ErrMissingAPIKey
	}
	if model == "" {
		model = cfg.chatModel()
	}
	payload, err := json.Marshal(map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
	})
	if err != nil {
		return "", fmt.Errorf("kie: encode chat request: %w", err)
	}
	result, err := c.fetchJSON(ctx, cfg, cfg.origin()+"/v1/chat/completions", requestSpec{
		method:      http.MethodPost,
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("kie: chat completion: %w", err)
	}
	if !result.ok {
		return "", &UpstreamError{Op: "chatCompletion", Status: result.status, Message: string(result.body)}
	}
	content := result.json.Get("choices.0.message.content")
	if content.Type != gjson.String {
		return "", &MalformedResponseError{Op: "chatCompletion", Body: result.body}
	}
	return content.Str, nil
}

// ImageTask pairs an image-generation task id with the poll-route prefix of
// the endpoint family that accepted it. The pairing matters: polling a task
// through the wrong family yields empty responses.
type ImageTask struct {
	TaskID     string
	RecordBase string
}

type imageCandidate struct {
	path       string
	recordBase string
}

var imageGenerateCandidates = []imageCandidate{
	{path: "/api/v1/gpt-image/generate", recordBase: "/api/v1/gpt-image"},
	{path: "/api/v1/images/generate", recordBase: "/api/v1/images"},
	{path: "/api/v1/image/generate", recordBase: "/api/v1/image"},
	{path: "/api/v1/jobs/createTask", recordBase: "/api/v1/jobs"},
}

// ImageGenerate submits an image generation request, probing the known
// endpoint families. The winning family's recordBase is returned alongside
// the task id so that ImageRecordInfo can poll the matching routes.
func (c *Client) ImageGenerate(ctx context.Context, cfg Config, body map[string]any) (ImageTask, error) {
	if !cfg.hasCredentials() {
		return ImageTask{}, ErrMissingAPIKey
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return ImageTask{}, fmt.Errorf("kie: encode image request: %w", err)
	}

	attempted := make([]string, 0, len(imageGenerateCandidates))
	for _, candidate := range imageGenerateCandidates {
		endpoint := cfg.origin() + candidate.path
		attempted = append(attempted, endpoint)
		result, err := c.fetchJSON(ctx, cfg, endpoint, requestSpec{
			method:      http.MethodPost,
			body:        payload,
			contentType: "application/json",
		})
		if err != nil {
			if ctx.Err() != nil {
				return ImageTask{}, ctx.Err()
			}
			continue
		}
		if !result.ok {
			continue
		}
		taskID := firstScalar(result.json, "data.taskId", "data.task_id", "data.id", "taskId")
		if taskID == "" {
			continue
		}
		c.logger.Debug().Str("task_id", taskID).Str("record_base", candidate.recordBase).Msg("kie: image task created")
		return ImageTask{TaskID: taskID, RecordBase: candidate.recordBase}, nil
	}
	return ImageTask{}, &AllCandidatesFailedError{Op: "imageGenerate", URLs: attempted}
}

// imagePollTimeout is shorter than the submission timeout; a status check
// that takes longer than this is better abandoned and retried next tick.
const imagePollTimeout = 30 * time.Second

// ImageRecordInfo polls an image task through the endpoint family recorded at
// submission, with the generic jobs route as a last resort.
func (c *Client) ImageRecordInfo(ctx context.Context, cfg Config, recordBase, taskID string) (json.RawMessage, error) {
	if !cfg.hasCredentials() {
		return nil, ErrMissingAPIKey
	}
	encoded := url.QueryEscape(taskID)
	candidates := []string{
		cfg.origin() + recordBase + "/recordInfo?taskId=" + encoded,
		cfg.origin() + recordBase + "/record-info?taskId=" + encoded,
		cfg.origin() + "/api/v1/jobs/recordInfo?taskId=" + encoded,
	}
	result, err := c.tryEndpoints(ctx, cfg, "imageRecordInfo", candidates, requestSpec{
		method:  http.MethodGet,
		timeout: imagePollTimeout,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(result.body), nil
}

// WaitForImageResult polls an image task at a fixed interval until it
// completes, fails, or the wall-clock budget runs out. A budget overrun
// returns a *TimeoutError, distinct from a provider-reported failure.
func (c *Client) WaitForImageResult(ctx context.Context, cfg Config, recordBase, taskID string, maxWait time.Duration) ([]string, error) {
	if !cfg.hasCredentials() {
		return nil, ErrMissingAPIKey
	}
	start := time.Now()
	for time.Since(start) < maxWait {
		raw, err := c.ImageRecordInfo(ctx, cfg, recordBase, taskID)
		if err != nil {
			return nil, err
		}

		normalized := NormalizeStatus(raw)
		switch normalized.Status {
		case StatusCompleted:
			urls := extractResultURLs(raw)
			if len(urls) == 0 {
				return nil, &MalformedResponseError{Op: "waitForImageResult", Body: raw}
			}
			return urls, nil
		case StatusFailed:
			message := normalized.ErrorMessage
			if message == "" {
				message = "image generation failed"
			}
			return nil, &UpstreamError{Op: "waitForImageResult", Message: message}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
	return nil, &TimeoutError{Op: "image generation", Elapsed: maxWait}
}
