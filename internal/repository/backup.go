package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/mirotrak/mirotrak/internal/model"
)

// importLockID is the advisory lock key held by an import transaction.
const importLockID int64 = 7310001

// ErrUnknownTable is returned for table names outside model.Tables.
var ErrUnknownTable = errors.New("unknown table")

// wipeOrder lists the tables emptied on import. Dependents of clients come first.
var wipeOrder = []string{
	model.TableSubscriptions,
	model.TableEvents,
	model.TableAiPhotos,
	model.TablePrompts,
	model.TableClients,
}

// ExportSnapshot reads every row of every table from one consistent snapshot.
func (r *Repository) ExportSnapshot(ctx context.Context) (*model.SnapshotData, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	data := &model.SnapshotData{}

	if data.Clients, err = listClients(ctx, tx); err != nil {
		return nil, err
	}
	if data.AiPhotos, err = listAiPhotos(ctx, tx); err != nil {
		return nil, err
	}
	if data.Subscriptions, err = querySubscriptions(ctx, tx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	if data.Settings, err = querySettings(ctx, tx,
		`SELECT `+settingColumns+` FROM settings ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	if data.Events, err = queryEvents(ctx, tx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}
	if data.Prompts, err = queryPrompts(ctx, tx,
		`SELECT `+promptColumns+` FROM prompts ORDER BY created_at DESC, id DESC`); err != nil {
		return nil, err
	}

	return data, nil
}

// ImportSnapshot replaces the database content with data inside one transaction.
//
// Clients, subscriptions, events, prompts and AI photos are always wiped, even
// when their array is absent from data. Settings are upserted by key in merge
// mode and wiped first in replace mode. Id sequences of all tables are reset to
// the highest imported id. Any failure rolls everything back.
func (r *Repository) ImportSnapshot(ctx context.Context, data *model.SnapshotData, mode model.SettingsMode) (*model.ImportResult, error) {
	result := &model.ImportResult{}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, importLockID); err != nil {
			return fmt.Errorf("failed to acquire import lock: %w", err)
		}

		for _, table := range wipeOrder {
			if _, err := tx.Exec(ctx, `DELETE FROM `+pq.QuoteIdentifier(table)); err != nil {
				return fmt.Errorf("failed to wipe %s: %w", table, err)
			}
		}

		for _, c := range data.Clients {
			if err := insertClientRow(ctx, tx, c); err != nil {
				return err
			}
		}
		result.Clients = len(data.Clients)

		for _, p := range data.AiPhotos {
			if err := insertAiPhotoRow(ctx, tx, p); err != nil {
				return err
			}
		}
		result.AiPhotos = len(data.AiPhotos)

		for _, s := range data.Subscriptions {
			if err := insertSubscriptionRow(ctx, tx, s); err != nil {
				return err
			}
		}
		result.Subscriptions = len(data.Subscriptions)

		for _, e := range data.Events {
			if err := insertEventRow(ctx, tx, e); err != nil {
				return err
			}
		}
		result.Events = len(data.Events)

		for _, p := range data.Prompts {
			if err := insertPromptRow(ctx, tx, p); err != nil {
				return err
			}
		}
		result.Prompts = len(data.Prompts)

		if err := importSettings(ctx, tx, data.Settings, mode); err != nil {
			return err
		}
		result.Settings = len(data.Settings)

		for _, table := range model.Tables {
			if err := resetSequence(ctx, tx, table); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import snapshot: %w", err)
	}

	return result, nil
}

func importSettings(ctx context.Context, tx pgx.Tx, settings []*model.Setting, mode model.SettingsMode) error {
	if mode == model.SettingsReplace {
		if _, err := tx.Exec(ctx, `DELETE FROM settings`); err != nil {
			return fmt.Errorf("failed to wipe settings: %w", err)
		}
	}

	// Rows keeping their id go first so keyed-only rows draw sequence
	// values past them.
	pending := settings
	if mode == model.SettingsReplace {
		pending = make([]*model.Setting, 0, len(settings))
		for _, s := range settings {
			if s.ID <= 0 {
				pending = append(pending, s)
				continue
			}
			if err := insertSettingRow(ctx, tx, s); err != nil {
				return err
			}
		}
		if err := resetSequence(ctx, tx, model.TableSettings); err != nil {
			return err
		}
	}

	for _, s := range pending {
		if _, err := upsertSetting(ctx, tx, s); err != nil {
			return err
		}
	}
	return nil
}

// resetSequence moves the id sequence of table past its highest id.
// An empty table restarts at 1.
func resetSequence(ctx context.Context, q querier, table string) error {
	query := `
		SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL)
		FROM ` + pq.QuoteIdentifier(table)

	if _, err := q.Exec(ctx, query, table); err != nil {
		return fmt.Errorf("failed to reset %s sequence: %w", table, err)
	}
	return nil
}

// TableStats returns the row count of every table.
func (r *Repository) TableStats(ctx context.Context) ([]model.TableStat, error) {
	stats := make([]model.TableStat, 0, len(model.Tables))
	for _, table := range model.Tables {
		var count int64
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+pq.QuoteIdentifier(table)).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats = append(stats, model.TableStat{Name: table, RowCount: count})
	}
	return stats, nil
}

// DumpTable reads the raw columns and rows of one table, ordered by id.
func (r *Repository) DumpTable(ctx context.Context, table string) (*model.TableDump, error) {
	if !model.IsTable(table) {
		return nil, ErrUnknownTable
	}

	rows, err := r.pool.Query(ctx, `SELECT * FROM `+pq.QuoteIdentifier(table)+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to dump %s: %w", table, err)
	}
	defer rows.Close()

	dump := &model.TableDump{Name: table}
	for _, fd := range rows.FieldDescriptions() {
		dump.Columns = append(dump.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", table, err)
		}
		dump.Rows = append(dump.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}

	return dump, nil
}
