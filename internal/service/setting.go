package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/repository"
)

// SettingStore is the persistence needed by SettingService.
type SettingStore interface {
	ListSettings(ctx context.Context) ([]*model.Setting, error)
	GetSetting(ctx context.Context, key string) (*model.Setting, error)
	CreateSetting(ctx context.Context, s *model.Setting) error
	UpsertSetting(ctx context.Context, s *model.Setting) (bool, error)
	DeleteSetting(ctx context.Context, key string) error
}

// SettingService manages key/value settings.
type SettingService struct {
	store   SettingStore
	metrics metrics.Recorder
}

// NewSettingService creates a new SettingService.
func NewSettingService(store SettingStore, recorder metrics.Recorder) *SettingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SettingService{store: store, metrics: recorder}
}

// List returns every setting ordered by key.
func (s *SettingService) List(ctx context.Context) ([]*model.Setting, error) {
	return s.store.ListSettings(ctx)
}

// Get returns the setting stored under key.
func (s *SettingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return nil, mapSettingError(err)
	}
	return setting, nil
}

// Create stores a new setting. An existing key yields ErrConflict.
func (s *SettingService) Create(ctx context.Context, setting *model.Setting) error {
	setting.Key = strings.TrimSpace(setting.Key)
	if err := setting.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateSetting(ctx, setting); err != nil {
		return mapSettingError(err)
	}
	s.metrics.IncRecordCreated(model.TableSettings)
	return nil
}

// Put sets the value for key, creating the setting when needed.
// It reports whether a new setting was created.
func (s *SettingService) Put(ctx context.Context, key string, value model.SettingValue) (*model.Setting, bool, error) {
	setting := &model.Setting{Key: strings.TrimSpace(key), Value: value}
	if err := setting.Validate(); err != nil {
		return nil, false, err
	}

	created, err := s.store.UpsertSetting(ctx, setting)
	if err != nil {
		return nil, false, mapSettingError(err)
	}

	if created {
		s.metrics.IncRecordCreated(model.TableSettings)
	} else {
		s.metrics.IncRecordUpdated(model.TableSettings)
	}
	return setting, created, nil
}

// Delete removes the setting stored under key.
func (s *SettingService) Delete(ctx context.Context, key string) error {
	if err := s.store.DeleteSetting(ctx, key); err != nil {
		return mapSettingError(err)
	}
	s.metrics.IncRecordDeleted(model.TableSettings)
	return nil
}

func mapSettingError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrConflict
	default:
		return fmt.Errorf("settings: %w", err)
	}
}
