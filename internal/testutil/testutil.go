// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 7_310_042

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table and recreates the schema from the embedded migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	down, err := migrations.Down()
	if err != nil {
		return err
	}
	for _, script := range down {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply down migration: %w", err)
		}
	}

	up, err := migrations.Up()
	if err != nil {
		return err
	}
	for _, script := range up {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("apply up migration: %w", err)
		}
	}

	return nil
}

// NewTestPool connects to DATABASE_URL, takes the test lock and resets the
// schema. The lock and pool are released on cleanup.
func NewTestPool(t testing.TB) (context.Context, *pgxpool.Pool) {
	t.Helper()
	databaseURL := RequireEnv(t, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("failed to lock database: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Errorf("failed to unlock database: %v", err)
		}
	})

	if err := ResetSchema(ctx, pool); err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}

	return ctx, pool
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestClient creates a client with sensible defaults.
func NewTestClient(name string) *model.Client {
	return &model.Client{
		Name:    name,
		Email:   "contact@example.fr",
		Company: name + " SARL",
		Status:  model.ClientStatusActive,
	}
}

// NewTestSubscription creates a monthly subscription for clientID.
func NewTestSubscription(clientID int64, name string) *model.Subscription {
	return &model.Subscription{
		ClientID:     clientID,
		Name:         name,
		Amount:       49.90,
		Currency:     "EUR",
		BillingCycle: model.BillingMonthly,
		StartDate:    model.NewDate(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		Status:       model.SubscriptionActive,
	}
}

// NewTestEvent creates a one hour event starting at start.
func NewTestEvent(title string, start time.Time, clientID *int64) *model.Event {
	end := start.Add(time.Hour)
	return &model.Event{
		Title:     title,
		StartDate: start,
		EndDate:   &end,
		Color:     "#3b82f6",
		ClientID:  clientID,
	}
}

// NewTestPrompt creates a prompt tagged with tags.
func NewTestPrompt(title string, tags ...string) *model.Prompt {
	if tags == nil {
		tags = []string{}
	}
	return &model.Prompt{
		Title:    title,
		Content:  "Rédige une relance pour {{client.name}}",
		Category: "email",
		Tags:     tags,
	}
}

// NewTestAiPhoto creates an AI photo record without a stored object.
func NewTestAiPhoto(title string) *model.AiPhoto {
	return &model.AiPhoto{
		Title:    title,
		Prompt:   "a lighthouse at dawn",
		ImageURL: "https://cdn.example.fr/" + title + ".webp",
		Model:    "sdxl",
		Width:    1024,
		Height:   1024,
		Tags:     []string{"test"},
	}
}
