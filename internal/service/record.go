// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mirotrak/mirotrak/internal/metrics"
	"github.com/mirotrak/mirotrak/internal/repository"
)

// Record service errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrConstraint       = errors.New("value rejected by the database")
)

// Record is an entity managed through the CRUD endpoints.
type Record interface {
	Normalize()
	Validate() error
	GetID() int64
	SetID(id int64)
}

// RecordStore binds a RecordService to the repository methods of one entity.
type RecordStore[T Record] struct {
	Get    func(ctx context.Context, id int64) (T, error)
	Create func(ctx context.Context, v T) error
	Update func(ctx context.Context, v T) error
	Delete func(ctx context.Context, id int64) error
}

// RecordService implements create, read, update and delete for one entity.
type RecordService[T Record] struct {
	entity  string
	store   RecordStore[T]
	metrics metrics.Recorder
}

// NewRecordService creates a RecordService. entity labels metrics and logs.
func NewRecordService[T Record](entity string, store RecordStore[T], recorder metrics.Recorder) *RecordService[T] {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecordService[T]{
		entity:  entity,
		store:   store,
		metrics: recorder,
	}
}

// Get returns one record.
func (s *RecordService[T]) Get(ctx context.Context, id int64) (T, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, s.mapError(err)
	}
	return v, nil
}

// Create validates and stores v. The database assigns the id.
func (s *RecordService[T]) Create(ctx context.Context, v T) error {
	v.SetID(0)
	v.Normalize()
	if err := v.Validate(); err != nil {
		return err
	}

	if err := s.store.Create(ctx, v); err != nil {
		return s.mapError(err)
	}

	s.metrics.IncRecordCreated(s.entity)
	return nil
}

// Update loads the record, applies patch to it and stores the result.
// Fields the patch leaves alone keep their stored values.
func (s *RecordService[T]) Update(ctx context.Context, id int64, patch func(T) error) (T, error) {
	var zero T

	v, err := s.store.Get(ctx, id)
	if err != nil {
		return zero, s.mapError(err)
	}

	if err := patch(v); err != nil {
		return zero, err
	}
	v.SetID(id)
	v.Normalize()
	if err := v.Validate(); err != nil {
		return zero, err
	}

	if err := s.store.Update(ctx, v); err != nil {
		return zero, s.mapError(err)
	}

	s.metrics.IncRecordUpdated(s.entity)
	return v, nil
}

// Delete removes one record.
func (s *RecordService[T]) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.mapError(err)
	}

	s.metrics.IncRecordDeleted(s.entity)
	return nil
}

func (s *RecordService[T]) mapError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrConflict
	case errors.Is(err, repository.ErrForeignKey):
		return ErrInvalidReference
	case errors.Is(err, repository.ErrCheckViolation):
		return ErrConstraint
	default:
		return fmt.Errorf("%s: %w", s.entity, err)
	}
}
