package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/internal/model"
)

const subscriptionColumns = `id, client_id, name, description, amount, currency, billing_cycle,
	start_date, next_payment_date, status, created_at, updated_at`

// ListSubscriptions returns subscriptions newest first. A clientID of 0 lists all of them.
func (r *Repository) ListSubscriptions(ctx context.Context, clientID int64) ([]*model.Subscription, error) {
	if clientID > 0 {
		return querySubscriptions(ctx, r.pool,
			`SELECT `+subscriptionColumns+` FROM subscriptions WHERE client_id = $1 ORDER BY created_at DESC, id DESC`,
			clientID)
	}
	return querySubscriptions(ctx, r.pool,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC, id DESC`)
}

func querySubscriptions(ctx context.Context, q querier, query string, args ...any) ([]*model.Subscription, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*model.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// GetSubscription retrieves a subscription by ID.
func (r *Repository) GetSubscription(ctx context.Context, id int64) (*model.Subscription, error) {
	sub, err := scanSubscription(r.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// CreateSubscription inserts a subscription and fills its generated fields.
// Returns ErrForeignKey when the client does not exist.
func (r *Repository) CreateSubscription(ctx context.Context, s *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (client_id, name, description, amount, currency, billing_cycle,
		                           start_date, next_payment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		s.ClientID, s.Name, s.Description, s.Amount, s.Currency, s.BillingCycle,
		s.StartDate.Time, s.NextPaymentDate.Ptr(), s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", classify(err))
	}
	return nil
}

// UpdateSubscription writes every mutable field of a subscription.
func (r *Repository) UpdateSubscription(ctx context.Context, s *model.Subscription) error {
	query := `
		UPDATE subscriptions
		SET client_id = $2, name = $3, description = $4, amount = $5, currency = $6,
		    billing_cycle = $7, start_date = $8, next_payment_date = $9, status = $10,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		s.ID, s.ClientID, s.Name, s.Description, s.Amount, s.Currency, s.BillingCycle,
		s.StartDate.Time, s.NextPaymentDate.Ptr(), s.Status,
	).Scan(&s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update subscription: %w", classify(err))
	}
	return nil
}

// DeleteSubscription removes a subscription.
func (r *Repository) DeleteSubscription(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func insertSubscriptionRow(ctx context.Context, q querier, s *model.Subscription) error {
	s.Normalize()
	query := `
		INSERT INTO subscriptions (id, client_id, name, description, amount, currency, billing_cycle,
		                           start_date, next_payment_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, NOW()), COALESCE($12, NOW()))
	`

	_, err := q.Exec(ctx, query,
		s.ID, s.ClientID, s.Name, s.Description, s.Amount, s.Currency, s.BillingCycle,
		s.StartDate.Time, s.NextPaymentDate.Ptr(), s.Status,
		nullTime(s.CreatedAt), nullTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription %d: %w", s.ID, err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var (
		s           model.Subscription
		startDate   time.Time
		nextPayment *time.Time
	)
	err := row.Scan(
		&s.ID,
		&s.ClientID,
		&s.Name,
		&s.Description,
		&s.Amount,
		&s.Currency,
		&s.BillingCycle,
		&startDate,
		&nextPayment,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.StartDate = model.NewDate(startDate)
	s.NextPaymentDate = model.DateFromPtr(nextPayment)
	return &s, nil
}
