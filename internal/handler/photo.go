package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/service"
)

// PhotoHandler serves the AI photo routes that go beyond plain CRUD.
type PhotoHandler struct {
	records   *service.RecordService[*model.AiPhoto]
	photos    *service.PhotoService
	maxUpload int64
	logger    *slog.Logger
}

// NewPhotoHandler creates a new PhotoHandler. maxUpload caps multipart uploads in bytes.
func NewPhotoHandler(records *service.RecordService[*model.AiPhoto], photos *service.PhotoService, maxUpload int64, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		records:   records,
		photos:    photos,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Bulk handles POST /api/ai-photos/bulk.
func (h *PhotoHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkPhotosRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	photos, err := h.photos.CreateBulk(r.Context(), req.Photos)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.Info("ai_photos_created", "count", len(photos))
	writeJSON(w, http.StatusCreated, dto.NewList(photos))
}

// Presign handles POST /api/ai-photos/presign.
func (h *PhotoHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var req dto.PresignRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.photos.Presign(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UploadImage handles POST /api/ai-photos/{id}/image with a multipart "image" file.
func (h *PhotoHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, r, h.logger, err)
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "Formulaire d'envoi invalide")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "IMAGE_MISSING", "Aucune image fournie")
		return
	}
	defer file.Close()

	photo, err := h.photos.UploadImage(r.Context(), service.UploadImageInput{
		PhotoID:     id,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.logger.Info("ai_photo_image_uploaded", "id", photo.ID, "storage_key", photo.StorageKey)
	writeJSON(w, http.StatusOK, photo)
}

// Delete handles DELETE /api/ai-photos/{id}. The stored file is removed
// best-effort once the row is gone.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	photo, err := h.records.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.records.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := h.photos.RemoveObject(r.Context(), photo); err != nil {
		h.logger.Warn("ai_photo_object_delete_failed",
			"id", id,
			"storage_key", photo.StorageKey,
			"error", err,
		)
	}

	h.logger.Info("ai_photo_deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *PhotoHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrStorageDisabled):
		writeError(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Le stockage des images n'est pas configuré")
	case errors.Is(err, service.ErrInvalidImageType):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE_TYPE", "Type d'image non supporté")
	case errors.Is(err, service.ErrBulkLimit):
		writeError(w, http.StatusBadRequest, "BULK_LIMIT",
			fmt.Sprintf("Le nombre de photos doit être compris entre 1 et %d", h.photos.BulkLimit()))
	default:
		respondError(w, r, h.logger, err)
	}
}
