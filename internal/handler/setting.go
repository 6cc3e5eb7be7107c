package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/service"
)

// SettingHandler handles HTTP requests for settings.
type SettingHandler struct {
	svc    *service.SettingService
	logger *slog.Logger
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(svc *service.SettingService, logger *slog.Logger) *SettingHandler {
	return &SettingHandler{svc: svc, logger: logger}
}

// List handles GET /api/settings.
func (h *SettingHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(settings))
}

// Get handles GET /api/settings/{key}.
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.svc.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// Create handles POST /api/settings.
func (h *SettingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var setting model.Setting
	if err := decodeJSON(r, &setting); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.svc.Create(r.Context(), &setting); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("setting_created", "key", setting.Key)
	writeJSON(w, http.StatusCreated, setting)
}

// Put handles PUT /api/settings/{key}.
func (h *SettingHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req dto.SettingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	setting, created, err := h.svc.Put(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.logger.Info("setting_saved", "key", setting.Key, "created", created)
	writeJSON(w, status, setting)
}

// Delete handles DELETE /api/settings/{key}.
func (h *SettingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.svc.Delete(r.Context(), key); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("setting_deleted", "key", key)
	w.WriteHeader(http.StatusNoContent)
}
