package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const aiPhotoColumns = `id, title, prompt, image_url, storage_key, model, width, height, tags,
	created_at, updated_at`

// ListAiPhotos returns every AI photo, newest first.
func (r *Repository) ListAiPhotos(ctx context.Context) ([]*model.AiPhoto, error) {
	return listAiPhotos(ctx, r.pool)
}

func listAiPhotos(ctx context.Context, q querier) ([]*model.AiPhoto, error) {
	rows, err := q.Query(ctx, `SELECT `+aiPhotoColumns+` FROM ai_photos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai photos: %w", err)
	}
	defer rows.Close()

	photos := make([]*model.AiPhoto, 0)
	for rows.Next() {
		photo, err := scanAiPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ai photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ai photos: %w", err)
	}

	return photos, nil
}

// GetAiPhoto retrieves an AI photo by ID.
func (r *Repository) GetAiPhoto(ctx context.Context, id int64) (*model.AiPhoto, error) {
	photo, err := scanAiPhoto(r.pool.QueryRow(ctx,
		`SELECT `+aiPhotoColumns+` FROM ai_photos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ai photo: %w", err)
	}
	return photo, nil
}

// CreateAiPhoto inserts an AI photo and fills its generated fields.
func (r *Repository) CreateAiPhoto(ctx context.Context, p *model.AiPhoto) error {
	return createAiPhoto(ctx, r.pool, p)
}

// CreateAiPhotos inserts a batch of AI photos in one transaction.
func (r *Repository) CreateAiPhotos(ctx context.Context, photos []*model.AiPhoto) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, p := range photos {
			if err := createAiPhoto(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func createAiPhoto(ctx context.Context, q querier, p *model.AiPhoto) error {
	p.Normalize()
	query := `
		INSERT INTO ai_photos (title, prompt, image_url, storage_key, model, width, height, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.Title, p.Prompt, p.ImageURL, p.StorageKey, p.Model, p.Width, p.Height, p.Tags,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ai photo: %w", classify(err))
	}
	return nil
}

// UpdateAiPhoto writes every mutable field of an AI photo.
func (r *Repository) UpdateAiPhoto(ctx context.Context, p *model.AiPhoto) error {
	p.Normalize()
	query := `
		UPDATE ai_photos
		SET title = $2, prompt = $3, image_url = $4, storage_key = $5, model = $6,
		    width = $7, height = $8, tags = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.Title, p.Prompt, p.ImageURL, p.StorageKey, p.Model, p.Width, p.Height, p.Tags,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update ai photo: %w", classify(err))
	}
	return nil
}

// DeleteAiPhoto removes an AI photo.
func (r *Repository) DeleteAiPhoto(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM ai_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ai photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertAiPhotoRow(ctx context.Context, q querier, p *model.AiPhoto) error {
	p.Normalize()
	query := `
		INSERT INTO ai_photos (id, title, prompt, image_url, storage_key, model, width, height, tags,
		                       created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
	`

	_, err := q.Exec(ctx, query,
		p.ID, p.Title, p.Prompt, p.ImageURL, p.StorageKey, p.Model, p.Width, p.Height, p.Tags,
		nullTime(p.CreatedAt), nullTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ai photo %d: %w", p.ID, err)
	}
	return nil
}

func scanAiPhoto(row pgx.Row) (*model.AiPhoto, error) {
	var p model.AiPhoto
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Prompt,
		&p.ImageURL,
		&p.StorageKey,
		&p.Model,
		&p.Width,
		&p.Height,
		&p.Tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return &p, err
}
