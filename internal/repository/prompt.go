package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const promptColumns = `id, title, content, category, tags, is_favorite, created_at, updated_at`

// ListPrompts returns prompts newest first. An empty category lists all of them.
func (r *Repository) ListPrompts(ctx context.Context, category string) ([]*model.Prompt, error) {
	if category != "" {
		return queryPrompts(ctx, r.pool,
			`SELECT `+promptColumns+` FROM prompts WHERE category = $1 ORDER BY created_at DESC, id DESC`,
			category)
	}
	return queryPrompts(ctx, r.pool,
		`SELECT `+promptColumns+` FROM prompts ORDER BY created_at DESC, id DESC`)
}

func queryPrompts(ctx context.Context, q querier, query string, args ...any) ([]*model.Prompt, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	prompts := make([]*model.Prompt, 0)
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prompts: %w", err)
	}

	return prompts, nil
}

// GetPrompt retrieves a prompt by ID.
func (r *Repository) GetPrompt(ctx context.Context, id int64) (*model.Prompt, error) {
	prompt, err := scanPrompt(r.pool.QueryRow(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return prompt, nil
}

// CreatePrompt inserts a prompt and fills its generated fields.
func (r *Repository) CreatePrompt(ctx context.Context, p *model.Prompt) error {
	p.Normalize()
	query := `
		INSERT INTO prompts (title, content, category, tags, is_favorite)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.Title, p.Content, p.Category, p.Tags, p.IsFavorite,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", classify(err))
	}
	return nil
}

// UpdatePrompt writes every mutable field of a prompt.
func (r *Repository) UpdatePrompt(ctx context.Context, p *model.Prompt) error {
	p.Normalize()
	query := `
		UPDATE prompts
		SET title = $2, content = $3, category = $4, tags = $5, is_favorite = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Content, p.Category, p.Tags, p.IsFavorite,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update prompt: %w", classify(err))
	}
	return nil
}

// DeletePrompt removes a prompt.
func (r *Repository) DeletePrompt(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertPromptRow(ctx context.Context, q querier, p *model.Prompt) error {
	p.Normalize()
	query := `
		INSERT INTO prompts (id, title, content, category, tags, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), COALESCE($8, NOW()))
	`

	_, err := q.Exec(ctx, query,
		p.ID, p.Title, p.Content, p.Category, p.Tags, p.IsFavorite,
		nullTime(p.CreatedAt), nullTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt %d: %w", p.ID, err)
	}
	return nil
}

func scanPrompt(row pgx.Row) (*model.Prompt, error) {
	var p model.Prompt
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Category,
		&p.Tags,
		&p.IsFavorite,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return &p, err
}
