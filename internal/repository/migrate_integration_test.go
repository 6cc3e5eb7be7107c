//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/testutil"
)

func TestIntegrationMigration_AllTablesExist(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)

	for _, table := range model.Tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_Idempotent(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)
	repo := &Repository{pool: pool}

	for i := 0; i < 2; i++ {
		applied, err := repo.Migrate(ctx)
		if err != nil {
			t.Fatalf("Migrate run %d failed: %v", i+1, err)
		}
		if applied == 0 {
			t.Fatal("expected at least one migration")
		}
	}
}

func TestIntegrationMigration_Constraints(t *testing.T) {
	ctx, pool := testutil.NewTestPool(t)

	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"client_status", `INSERT INTO clients (name, status) VALUES ('A', 'vip')`, ErrCheckViolation},
		{"negative_amount", `INSERT INTO subscriptions (client_id, name, amount, start_date) VALUES (1, 'S', -1, '2024-01-01')`, ErrCheckViolation},
		{"orphan_subscription", `INSERT INTO subscriptions (client_id, name, start_date) VALUES (999, 'S', '2024-01-01')`, ErrForeignKey},
		{"event_end_before_start", `INSERT INTO events (title, start_date, end_date) VALUES ('E', '2024-01-02', '2024-01-01')`, ErrCheckViolation},
		{"amount_out_of_range", `INSERT INTO subscriptions (client_id, name, amount, start_date) VALUES (1, 'S', 1e11, '2024-01-01')`, ErrCheckViolation},
		{"storage_key_too_long", `INSERT INTO ai_photos (storage_key) VALUES (repeat('k', 513))`, ErrCheckViolation},
		{"duplicate_setting", `INSERT INTO settings (key) VALUES ('theme'), ('theme')`, ErrDuplicateKey},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := pool.Exec(ctx, test.query)
			if err == nil {
				t.Fatal("expected constraint violation")
			}
			if got := classify(err); !errors.Is(got, test.want) {
				t.Fatalf("expected %v, got %v", test.want, got)
			}
		})
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}
