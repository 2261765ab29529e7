package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// TaskRepositoryPG implements domain.TaskRepository.
type TaskRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a task repository backed by PostgreSQL.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepositoryPG {
	return &TaskRepositoryPG{pool: pool}
}

const taskColumns = `id, gateway_task_id, model, model_path, prompt, prompt_id, source_type,
input_image_url, aspect_ratio, duration_seconds, status, progress, result_url,
error_message, account_id, created_at, updated_at`

// Create inserts a new task record.
func (r *TaskRepositoryPG) Create(ctx context.Context, task *domain.VideoTask) error {
	query := `
INSERT INTO video_tasks (id, gateway_task_id, model, model_path, prompt, prompt_id, source_type,
  input_image_url, aspect_ratio, duration_seconds, status, progress, error_message, account_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
`
	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.GatewayTaskID,
		task.Model,
		task.ModelPath,
		task.Prompt,
		task.PromptID,
		string(task.SourceType),
		task.InputImageURL,
		task.AspectRatio,
		task.DurationSeconds,
		task.Status,
		task.Progress,
		task.ErrorMessage,
		task.AccountID,
	)
	return err
}

// GetByID fetches a task by its identifier.
func (r *TaskRepositoryPG) GetByID(ctx context.Context, id string) (*domain.VideoTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM video_tasks WHERE id = $1;`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListRecent returns the newest tasks first.
func (r *TaskRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.VideoTask, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM video_tasks ORDER BY created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.VideoTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateStatus overwrites the poll-derived fields of a task.
func (r *TaskRepositoryPG) UpdateStatus(ctx context.Context, id string, update domain.TaskStatusUpdate) error {
	query := `
UPDATE video_tasks
SET status = $2,
    progress = $3,
    result_url = COALESCE($4, result_url),
    error_message = COALESCE($5, error_message),
    updated_at = NOW()
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, id, update.Status, update.Progress, update.ResultURL, update.ErrorMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByStatus returns task counts grouped by status, for the dashboard.
func (r *TaskRepositoryPG) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM video_tasks GROUP BY status;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanTask(row pgx.Row) (*domain.VideoTask, error) {
	var task domain.VideoTask
	var sourceType string
	if err := row.Scan(
		&task.ID,
		&task.GatewayTaskID,
		&task.Model,
		&task.ModelPath,
		&task.Prompt,
		&task.PromptID,
		&sourceType,
		&task.InputImageURL,
		&task.AspectRatio,
		&task.DurationSeconds,
		&task.Status,
		&task.Progress,
		&task.ResultURL,
		&task.ErrorMessage,
		&task.AccountID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.SourceType = domain.SourceType(sourceType)
	return &task, nil
}

var _ domain.TaskRepository = (*TaskRepositoryPG)(nil)
