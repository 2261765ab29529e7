package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// PromptRepositoryPG implements domain.PromptRepository.
type PromptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a prompt repository backed by PostgreSQL.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepositoryPG {
	return &PromptRepositoryPG{pool: pool}
}

const promptColumns = `id, category, title_en, title_cn, description, style, camera, lighting,
setting, duration_seconds, aspect_ratio, cuts, motion, keywords, negative_prompts,
is_custom, created_at, updated_at`

// Create inserts a prompt template.
func (r *PromptRepositoryPG) Create(ctx context.Context, prompt *domain.Prompt) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO prompts (id, category, title_en, title_cn, description, style, camera, lighting,
  setting, duration_seconds, aspect_ratio, cuts, motion, keywords, negative_prompts, is_custom)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
`,
		prompt.ID, prompt.Category, prompt.TitleEN, prompt.TitleCN, prompt.Description,
		prompt.Style, prompt.Camera, prompt.Lighting, prompt.Setting,
		prompt.DurationSeconds, prompt.AspectRatio, prompt.Cuts, prompt.Motion,
		prompt.Keywords, prompt.NegativePrompts, prompt.IsCustom,
	)
	return err
}

// GetByID fetches one prompt.
func (r *PromptRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Prompt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1;`, id)
	prompt, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return prompt, nil
}

// List returns prompts matching the filter, newest first.
func (r *PromptRepositoryPG) List(ctx context.Context, filter domain.PromptFilter) ([]domain.Prompt, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+promptColumns+` FROM prompts
WHERE ($1 = '' OR category = $1)
  AND (NOT $2 OR is_custom)
  AND ($3 = '' OR title_en ILIKE '%' || $3 || '%' OR title_cn ILIKE '%' || $3 || '%' OR description ILIKE '%' || $3 || '%')
ORDER BY created_at DESC
LIMIT $4;
`, filter.Category, filter.CustomOnly, filter.Search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []domain.Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, *prompt)
	}
	return prompts, rows.Err()
}

// Delete removes a prompt.
func (r *PromptRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPrompt(row pgx.Row) (*domain.Prompt, error) {
	var prompt domain.Prompt
	if err := row.Scan(
		&prompt.ID,
		&prompt.Category,
		&prompt.TitleEN,
		&prompt.TitleCN,
		&prompt.Description,
		&prompt.Style,
		&prompt.Camera,
		&prompt.Lighting,
		&prompt.Setting,
		&prompt.DurationSeconds,
		&prompt.AspectRatio,
		&prompt.Cuts,
		&prompt.Motion,
		&prompt.Keywords,
		&prompt.NegativePrompts,
		&prompt.IsCustom,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &prompt, nil
}

var _ domain.PromptRepository = (*PromptRepositoryPG)(nil)
