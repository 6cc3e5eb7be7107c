package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/service"
)

// ListFunc loads a collection for GET requests. Query parsing errors should
// be *model.ValidationError so they map to 400.
type ListFunc[T any] func(r *http.Request) ([]T, error)

// RecordHandler serves the CRUD routes of one entity.
type RecordHandler[T service.Record] struct {
	name      string
	svc       *service.RecordService[T]
	newRecord func() T
	list      ListFunc[T]
	logger    *slog.Logger
}

// NewRecordHandler creates a RecordHandler. name is the singular entity
// name used in log events, e.g. "client".
func NewRecordHandler[T service.Record](name string, svc *service.RecordService[T], newRecord func() T, list ListFunc[T], logger *slog.Logger) *RecordHandler[T] {
	return &RecordHandler[T]{
		name:      name,
		svc:       svc,
		newRecord: newRecord,
		list:      list,
		logger:    logger,
	}
}

// List handles GET /api/{resource}.
func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.list(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(items))
}

// Get handles GET /api/{resource}/{id}.
func (h *RecordHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Create handles POST /api/{resource}.
func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	v := h.newRecord()
	if err := decodeJSON(r, v); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.svc.Create(r.Context(), v); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.name+"_created", "id", v.GetID())
	writeJSON(w, http.StatusCreated, v)
}

// Update handles PUT /api/{resource}/{id}. Fields missing from the body
// keep their stored values.
func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidJSON)
		return
	}

	v, err := h.svc.Update(r.Context(), id, func(current T) error {
		return json.Unmarshal(body, current)
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.name+"_updated", "id", id)
	writeJSON(w, http.StatusOK, v)
}

// Delete handles DELETE /api/{resource}/{id}.
func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info(h.name+"_deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
