package domain

import "context"

// TaskRepository persists video generation tasks. The gateway client itself
// never touches storage; handlers feed it normalized results to write back.
type TaskRepository interface {
	Create(ctx context.Context, task *VideoTask) error
	GetByID(ctx context.Context, id string) (*VideoTask, error)
	ListRecent(ctx context.Context, limit int) ([]VideoTask, error)
	UpdateStatus(ctx context.Context, id string, update TaskStatusUpdate) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AccountRepository manages gateway API-key accounts and their daily quotas.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetPrimary(ctx context.Context) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id string) error
	// RecordUsage bumps the daily counter, resetting it first when the
	// stored day differs from today.
	RecordUsage(ctx context.Context, id string, today string) error
}

// PromptRepository stores the prompt library.
type PromptRepository interface {
	Create(ctx context.Context, prompt *Prompt) error
	GetByID(ctx context.Context, id string) (*Prompt, error)
	List(ctx context.Context, filter PromptFilter) ([]Prompt, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository is the key-value store behind the settings page. The
// gateway credential fallback (`kie_api_key`) lives here.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}
