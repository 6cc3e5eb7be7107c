package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
)

// Database service errors.
var (
	ErrImportDataMissing = errors.New("import document has no data")
	ErrUnknownTable      = errors.New("unknown table")
)

// DatabaseStore is the persistence needed for export and import.
type DatabaseStore interface {
	ExportSnapshot(ctx context.Context) (*model.SnapshotData, error)
	ImportSnapshot(ctx context.Context, data *model.SnapshotData, mode model.SettingsMode) (*model.ImportResult, error)
	TableStats(ctx context.Context) ([]model.TableStat, error)
	DumpTable(ctx context.Context, table string) (*model.TableDump, error)
}

// DatabaseService exports and restores the whole dataset.
type DatabaseService struct {
	store   DatabaseStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewDatabaseService creates a new DatabaseService.
func NewDatabaseService(store DatabaseStore, recorder metrics.Recorder) *DatabaseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &DatabaseService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// Export builds a versioned snapshot of every table.
func (s *DatabaseService) Export(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.store.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	s.metrics.IncExport("json")

	return &model.Snapshot{
		ExportDate: s.now().UTC(),
		Version:    model.SnapshotVersion,
		Data:       data,
	}, nil
}

// Import replaces the dataset with the content of snapshot.
func (s *DatabaseService) Import(ctx context.Context, snapshot *model.Snapshot, mode model.SettingsMode) (*model.ImportResult, error) {
	if snapshot == nil || snapshot.Data == nil {
		return nil, ErrImportDataMissing
	}
	if err := snapshot.Data.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	result, err := s.store.ImportSnapshot(ctx, snapshot.Data, mode)
	s.metrics.ObserveImportDuration(s.now().Sub(start))
	if err != nil {
		s.metrics.IncImport("failed")
		return nil, err
	}

	s.metrics.IncImport("success")
	return result, nil
}

// Tables lists every table with its row count.
func (s *DatabaseService) Tables(ctx context.Context) ([]model.TableStat, error) {
	return s.store.TableStats(ctx)
}

// DumpTable reads one table for CSV or XLSX export.
func (s *DatabaseService) DumpTable(ctx context.Context, table, format string) (*model.TableDump, error) {
	if !model.IsTable(table) {
		return nil, ErrUnknownTable
	}

	dump, err := s.store.DumpTable(ctx, table)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownTable) {
			return nil, ErrUnknownTable
		}
		return nil, fmt.Errorf("failed to dump %s: %w", table, err)
	}

	s.metrics.IncExport(format)
	return dump, nil
}
