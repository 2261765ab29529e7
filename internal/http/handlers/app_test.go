package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/infra"
	"studio/internal/kie"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// gatewayStub records requests and answers by URL path.
type gatewayStub struct {
	mu     sync.Mutex
	routes map[string]string
	calls  []string
}

func (g *gatewayStub) RoundTrip(r *http.Request) (*http.Response, error) {
	g.mu.Lock()
	g.calls = append(g.calls, r.URL.Path)
	body, ok := g.routes[r.URL.Path]
	g.mu.Unlock()
	if !ok {
		return jsonResponse(http.StatusNotFound, `{"error":"not found"}`), nil
	}
	return jsonResponse(http.StatusOK, body), nil
}

func (g *gatewayStub) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type taskStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.VideoTask
}

func newTaskStore() *taskStore {
	return &taskStore{tasks: map[string]*domain.VideoTask{}}
}

func (s *taskStore) Create(ctx context.Context, task *domain.VideoTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	copied.CreatedAt = time.Now()
	s.tasks[task.ID] = &copied
	return nil
}

func (s *taskStore) GetByID(ctx context.Context, id string) (*domain.VideoTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *taskStore) ListRecent(ctx context.Context, limit int) ([]domain.VideoTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VideoTask
	for _, task := range s.tasks {
		out = append(out, *task)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *taskStore) UpdateStatus(ctx context.Context, id string, update domain.TaskStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	task.Status = update.Status
	task.Progress = update.Progress
	task.ResultURL = update.ResultURL
	task.ErrorMessage = update.ErrorMessage
	return nil
}

func (s *taskStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int{}
	for _, task := range s.tasks {
		counts[task.Status]++
	}
	return counts, nil
}

type accountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	usage    []string
}

func newAccountStore(accounts ...*domain.Account) *accountStore {
	s := &accountStore{accounts: map[string]*domain.Account{}}
	for _, account := range accounts {
		s.accounts[account.ID] = account
	}
	return s
}

func (s *accountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

func (s *accountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *accountStore) GetPrimary(ctx context.Context) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.IsPrimary {
			copied := *account
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *accountStore) List(ctx context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, account := range s.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (s *accountStore) Update(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

func (s *accountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *accountStore) RecordUsage(ctx context.Context, id string, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = append(s.usage, id)
	return nil
}

type promptStore struct {
	mu      sync.Mutex
	prompts map[string]*domain.Prompt
}

func newPromptStore() *promptStore {
	return &promptStore{prompts: map[string]*domain.Prompt{}}
}

func (s *promptStore) Create(ctx context.Context, prompt *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[prompt.ID] = prompt
	return nil
}

func (s *promptStore) GetByID(ctx context.Context, id string) (*domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prompt, ok := s.prompts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return prompt, nil
}

func (s *promptStore) List(ctx context.Context, filter domain.PromptFilter) ([]domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Prompt
	for _, prompt := range s.prompts {
		out = append(out, *prompt)
	}
	return out, nil
}

func (s *promptStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prompts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.prompts, id)
	return nil
}

type settingsStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newSettingsStore(values map[string]string) *settingsStore {
	if values == nil {
		values = map[string]string{}
	}
	return &settingsStore{values: values}
}

func (s *settingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (s *settingsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *settingsStore) All(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

type testDeps struct {
	app      *App
	gateway  *gatewayStub
	tasks    *taskStore
	accounts *accountStore
	prompts  *promptStore
	settings *settingsStore
}

func newTestApp(routes map[string]string) *testDeps {
	gateway := &gatewayStub{routes: routes}
	logger := zerolog.New(io.Discard)
	deps := &testDeps{
		gateway:  gateway,
		tasks:    newTaskStore(),
		accounts: newAccountStore(),
		prompts:  newPromptStore(),
		settings: newSettingsStore(nil),
	}
	deps.app = &App{
		Cfg: &infra.Config{
			KieAPIKey:  "env-key",
			KieAPIBase: "https://gateway.test",
			KieTimeout: 5 * time.Second,
		},
		Logger: logger,
		KIE: kie.NewClient(kie.Options{
			HTTPClient:   &http.Client{Transport: gateway},
			PollInterval: 5 * time.Millisecond,
		}),
		Tasks:    deps.tasks,
		Accounts: deps.accounts,
		Prompts:  deps.prompts,
		Settings: deps.settings,
	}
	return deps
}

func jsonBody(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}
