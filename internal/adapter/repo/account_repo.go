package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// AccountRepositoryPG implements domain.AccountRepository.
type AccountRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates an account repository backed by PostgreSQL.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepositoryPG {
	return &AccountRepositoryPG{pool: pool}
}

const accountColumns = `id, name, api_key, is_primary, daily_quota, used_today, last_reset, notes, created_at, updated_at`

// Create inserts a new account. Marking an account primary demotes the
// previous primary inside the same transaction.
func (r *AccountRepositoryPG) Create(ctx context.Context, account *domain.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if account.IsPrimary {
		if _, err := tx.Exec(ctx, `UPDATE accounts SET is_primary = FALSE WHERE is_primary;`); err != nil {
			return err
		}
	}
	_, err = tx.Exec(ctx, `
INSERT INTO accounts (id, name, api_key, is_primary, daily_quota, used_today, last_reset, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`,
		account.ID, account.Name, account.APIKey, account.IsPrimary,
		account.DailyQuota, account.UsedToday, account.LastReset, account.Notes,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID fetches one account.
func (r *AccountRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1;`, id)
	return scanAccount(row)
}

// GetPrimary fetches the account flagged as primary, if any.
func (r *AccountRepositoryPG) GetPrimary(ctx context.Context) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE is_primary LIMIT 1;`)
	return scanAccount(row)
}

// List returns all accounts, primary first.
func (r *AccountRepositoryPG) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY is_primary DESC, created_at;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// Update rewrites an account's editable fields.
func (r *AccountRepositoryPG) Update(ctx context.Context, account *domain.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if account.IsPrimary {
		if _, err := tx.Exec(ctx, `UPDATE accounts SET is_primary = FALSE WHERE is_primary AND id <> $1;`, account.ID); err != nil {
			return err
		}
	}
	tag, err := tx.Exec(ctx, `
UPDATE accounts
SET name = $2, api_key = $3, is_primary = $4, daily_quota = $5, notes = $6, updated_at = NOW()
WHERE id = $1;
`,
		account.ID, account.Name, account.APIKey, account.IsPrimary, account.DailyQuota, account.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit(ctx)
}

// Delete removes an account.
func (r *AccountRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordUsage bumps today's counter, resetting it when the stored day is
// stale. Done in one statement so concurrent submissions count correctly.
func (r *AccountRepositoryPG) RecordUsage(ctx context.Context, id string, today string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE accounts
SET used_today = CASE WHEN last_reset IS DISTINCT FROM $2 THEN 1 ELSE used_today + 1 END,
    last_reset = $2,
    updated_at = NOW()
WHERE id = $1;
`, id, today)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.APIKey,
		&account.IsPrimary,
		&account.DailyQuota,
		&account.UsedToday,
		&account.LastReset,
		&account.Notes,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
