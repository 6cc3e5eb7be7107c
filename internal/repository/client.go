package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const clientColumns = `id, name, email, phone, company, address, website, notes, status, created_at, updated_at`

// ListClients returns every client, newest first.
func (r *Repository) ListClients(ctx context.Context) ([]*model.Client, error) {
	return listClients(ctx, r.pool)
}

func listClients(ctx context.Context, q querier) ([]*model.Client, error) {
	rows, err := q.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*model.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// GetClient retrieves a client by ID.
func (r *Repository) GetClient(ctx context.Context, id int64) (*model.Client, error) {
	client, err := scanClient(r.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// CreateClient inserts a client and fills its generated fields.
func (r *Repository) CreateClient(ctx context.Context, c *model.Client) error {
	query := `
		INSERT INTO clients (name, email, phone, company, address, website, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.Address, c.Website, c.Notes, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", classify(err))
	}
	return nil
}

// UpdateClient writes every mutable field of a client.
func (r *Repository) UpdateClient(ctx context.Context, c *model.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, company = $5, address = $6,
		    website = $7, notes = $8, status = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.Website, c.Notes, c.Status,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update client: %w", classify(err))
	}
	return nil
}

// DeleteClient removes a client. Its subscriptions cascade.
func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// insertClientRow inserts a client keeping its ID and timestamps.
func insertClientRow(ctx context.Context, q querier, c *model.Client) error {
	c.Normalize()
	query := `
		INSERT INTO clients (id, name, email, phone, company, address, website, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()), COALESCE($11, NOW()))
	`

	_, err := q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.Website, c.Notes, c.Status,
		nullTime(c.CreatedAt), nullTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert client %d: %w", c.ID, err)
	}
	return nil
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Company,
		&c.Address,
		&c.Website,
		&c.Notes,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return &c, err
}
