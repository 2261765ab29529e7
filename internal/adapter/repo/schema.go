package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors the dashboard's four tables. Statements are idempotent so
// EnsureSchema can run on every boot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS video_tasks (
  id               TEXT PRIMARY KEY,
  gateway_task_id  TEXT,
  model            TEXT NOT NULL,
  model_path       TEXT,
  prompt           TEXT NOT NULL,
  prompt_id        TEXT,
  source_type      TEXT NOT NULL DEFAULT 'text',
  input_image_url  TEXT,
  aspect_ratio     TEXT NOT NULL DEFAULT '9:16',
  duration_seconds INT NOT NULL DEFAULT 8,
  status           TEXT NOT NULL DEFAULT 'processing',
  progress         DOUBLE PRECISION NOT NULL DEFAULT 0,
  result_url       TEXT,
  error_message    TEXT,
  account_id       TEXT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	`CREATE TABLE IF NOT EXISTS accounts (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  api_key     TEXT NOT NULL,
  is_primary  BOOLEAN NOT NULL DEFAULT FALSE,
  daily_quota INT NOT NULL DEFAULT 50,
  used_today  INT NOT NULL DEFAULT 0,
  last_reset  TEXT,
  notes       TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	`CREATE TABLE IF NOT EXISTS prompts (
  id               TEXT PRIMARY KEY,
  category         TEXT NOT NULL,
  title_en         TEXT NOT NULL,
  title_cn         TEXT NOT NULL,
  description      TEXT NOT NULL,
  style            TEXT,
  camera           TEXT,
  lighting         TEXT,
  setting          TEXT,
  duration_seconds INT NOT NULL DEFAULT 8,
  aspect_ratio     TEXT NOT NULL DEFAULT '9:16',
  cuts             INT NOT NULL DEFAULT 5,
  motion           TEXT,
  keywords         TEXT[] NOT NULL DEFAULT '{}',
  negative_prompts TEXT[] NOT NULL DEFAULT '{}',
  is_custom        BOOLEAN NOT NULL DEFAULT FALSE,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	`CREATE TABLE IF NOT EXISTS settings (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON video_tasks (status);`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_created ON video_tasks (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_prompts_category ON prompts (category);`,
}

// EnsureSchema creates the tables and indexes when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
