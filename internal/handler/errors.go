package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/middleware"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/service"
)

// Error messages returned to API users.
const (
	msgInvalidJSON      = "Corps de requête invalide"
	msgInvalidID        = "Identifiant invalide"
	msgValidation       = "Données invalides"
	msgNotFound         = "Ressource introuvable"
	msgConflict         = "Cette ressource existe déjà"
	msgInvalidReference = "La ressource référencée n'existe pas"
	msgConstraint       = "Valeur refusée par la base de données"
	msgTooLarge         = "Requête trop volumineuse"
	msgInternal         = "Une erreur interne est survenue"
)

// errInvalidID is returned by parseID.
var errInvalidID = errors.New("invalid id")

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Message: message,
		Code:    code,
	})
}

// respondError maps errors shared by every resource to HTTP responses.
// Errors it does not know are logged and reported as 500.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *model.ValidationError
	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Message: msgValidation,
			Code:    "VALIDATION_ERROR",
			Field:   verr.Field,
		})
	case errors.As(err, &maxBytesErr):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", msgTooLarge)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.As(err, &timeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", msgInvalidJSON)
	case errors.Is(err, errInvalidID):
		writeError(w, http.StatusBadRequest, "INVALID_ID", msgInvalidID)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", msgNotFound)
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", msgConflict)
	case errors.Is(err, service.ErrInvalidReference):
		writeError(w, http.StatusBadRequest, "INVALID_REFERENCE", msgInvalidReference)
	case errors.Is(err, service.ErrConstraint):
		writeError(w, http.StatusBadRequest, "CONSTRAINT_VIOLATION", msgConstraint)
	default:
		logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
