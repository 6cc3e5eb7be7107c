package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/service"
)

// DocumentHandler renders PDF documents and email texts.
type DocumentHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(svc *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, logger: logger}
}

// Render handles POST /api/documents/render.
func (h *DocumentHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req dto.RenderDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	doc, err := h.svc.Render(r.Context(), service.RenderInput{
		Format:    req.Format,
		Title:     req.Title,
		Subject:   req.Subject,
		Body:      req.Body,
		ClientID:  req.ClientID,
		Variables: req.Variables,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentBodyMissing):
			writeError(w, http.StatusBadRequest, "DOCUMENT_BODY_MISSING", "Le contenu du document est requis")
		case errors.Is(err, service.ErrUnsupportedFormat):
			writeError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "Format de document non supporté")
		case errors.Is(err, service.ErrClientNotFound):
			writeError(w, http.StatusNotFound, "CLIENT_NOT_FOUND", "Client introuvable")
		default:
			respondError(w, r, h.logger, err)
		}
		return
	}

	h.logger.Info("document_rendered", "format", doc.Format, "client_id", req.ClientID)

	if doc.Email != nil {
		writeJSON(w, http.StatusOK, doc.Email)
		return
	}

	setAttachment(w, doc.Filename)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.PDF)
}
