package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const eventColumns = `id, title, description, start_date, end_date, all_day, color, location,
	client_id, created_at, updated_at`

// ListEvents returns events newest first, optionally restricted to those overlapping a window.
func (r *Repository) ListEvents(ctx context.Context, window model.EventWindow) ([]*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1 = 1`
	args := []any{}
	argIndex := 1

	if !window.To.IsZero() {
		query += fmt.Sprintf(" AND start_date <= $%d", argIndex)
		args = append(args, window.To)
		argIndex++
	}
	if !window.From.IsZero() {
		query += fmt.Sprintf(" AND COALESCE(end_date, start_date) >= $%d", argIndex)
		args = append(args, window.From)
	}
	query += " ORDER BY created_at DESC, id DESC"

	return queryEvents(ctx, r.pool, query, args...)
}

func queryEvents(ctx context.Context, q querier, query string, args ...any) ([]*model.Event, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// GetEvent retrieves an event by ID.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// CreateEvent inserts an event and fills its generated fields.
func (r *Repository) CreateEvent(ctx context.Context, e *model.Event) error {
	query := `
		INSERT INTO events (title, description, start_date, end_date, all_day, color, location, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		e.Title, e.Description, e.StartDate, e.EndDate, e.AllDay, e.Color, e.Location, e.ClientID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", classify(err))
	}
	return nil
}

// UpdateEvent writes every mutable field of an event.
func (r *Repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, start_date = $4, end_date = $5, all_day = $6,
		    color = $7, location = $8, client_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		e.ID, e.Title, e.Description, e.StartDate, e.EndDate, e.AllDay, e.Color, e.Location, e.ClientID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update event: %w", classify(err))
	}
	return nil
}

// DeleteEvent removes an event.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertEventRow(ctx context.Context, q querier, e *model.Event) error {
	query := `
		INSERT INTO events (id, title, description, start_date, end_date, all_day, color, location,
		                    client_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
	`

	_, err := q.Exec(ctx, query,
		e.ID, e.Title, e.Description, e.StartDate, e.EndDate, e.AllDay, e.Color, e.Location, e.ClientID,
		nullTime(e.CreatedAt), nullTime(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event %d: %w", e.ID, err)
	}
	return nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.StartDate,
		&e.EndDate,
		&e.AllDay,
		&e.Color,
		&e.Location,
		&e.ClientID,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return &e, err
}
