package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// SettingsRepositoryPG implements domain.SettingsRepository as a plain
// key-value table.
type SettingsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a settings repository backed by PostgreSQL.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepositoryPG {
	return &SettingsRepositoryPG{pool: pool}
}

// Get returns the value for key, or domain.ErrNotFound.
func (r *SettingsRepositoryPG) Get(ctx context.Context, key string) (string, error) {
	row := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1;`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts a key-value pair.
func (r *SettingsRepositoryPG) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO settings (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW();
`, key, value)
	return err
}

// All returns every setting.
func (r *SettingsRepositoryPG) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

var _ domain.SettingsRepository = (*SettingsRepositoryPG)(nil)
