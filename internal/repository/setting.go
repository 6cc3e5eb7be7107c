package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const settingColumns = `id, key, value, created_at, updated_at`

// ListSettings returns every setting, newest first.
func (r *Repository) ListSettings(ctx context.Context) ([]*model.Setting, error) {
	return querySettings(ctx, r.pool, `SELECT `+settingColumns+` FROM settings ORDER BY created_at DESC, id DESC`)
}

func querySettings(ctx context.Context, q querier, query string, args ...any) ([]*model.Setting, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make([]*model.Setting, 0)
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return settings, nil
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := scanSetting(r.pool.QueryRow(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return setting, nil
}

// CreateSetting inserts a new setting. An existing key yields ErrDuplicateKey.
func (r *Repository) CreateSetting(ctx context.Context, s *model.Setting) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, s.Key, string(s.Value)).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create setting %q: %w", s.Key, classify(err))
	}
	return nil
}

// UpsertSetting inserts the setting or updates the value of the row with the same key.
// Returns true when a new row was created.
func (r *Repository) UpsertSetting(ctx context.Context, s *model.Setting) (bool, error) {
	return upsertSetting(ctx, r.pool, s)
}

func upsertSetting(ctx context.Context, q querier, s *model.Setting) (bool, error) {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := q.QueryRow(ctx, query, s.Key, string(s.Value)).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert setting %q: %w", s.Key, classify(err))
	}
	return inserted, nil
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertSettingRow(ctx context.Context, q querier, s *model.Setting) error {
	query := `
		INSERT INTO settings (id, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()), COALESCE($5, NOW()))
	`

	_, err := q.Exec(ctx, query,
		s.ID, s.Key, string(s.Value), nullTime(s.CreatedAt), nullTime(s.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert setting %q: %w", s.Key, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to insert setting %q: %w", s.Key, err)
	}
	return nil
}

func scanSetting(row pgx.Row) (*model.Setting, error) {
	var (
		s     model.Setting
		value string
	)
	err := row.Scan(
		&s.ID,
		&s.Key,
		&value,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	s.Value = model.SettingValue(value)
	return &s, err
}
