package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirotrak/mirotrak/migrations"
)

// migrateLockID serializes concurrent Migrate calls across processes.
const migrateLockID int64 = 7_310_002

// Migrate applies every embedded up migration in a single transaction.
// The scripts are idempotent, so running it against an up-to-date schema is a no-op.
func (r *Repository) Migrate(ctx context.Context) (int, error) {
	scripts, err := migrations.Up()
	if err != nil {
		return 0, err
	}

	err = r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrateLockID); err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		for i, script := range scripts {
			if _, err := tx.Exec(ctx, script); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(scripts), nil
}
