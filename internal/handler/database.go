package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mirotrak/mirotrak/internal/export"
	"github.com/mirotrak/mirotrak/internal/handler/dto"
	"github.com/mirotrak/mirotrak/internal/model"
	"github.com/mirotrak/mirotrak/internal/service"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// multipartMemory is the part of an uploaded import file kept in memory.
	multipartMemory = 8 << 20
)

// DatabaseHandler serves export, import and table statistics.
type DatabaseHandler struct {
	svc    *service.DatabaseService
	logger *slog.Logger
	now    func() time.Time
}

// NewDatabaseHandler creates a new DatabaseHandler.
func NewDatabaseHandler(svc *service.DatabaseService, logger *slog.Logger) *DatabaseHandler {
	return &DatabaseHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// Tables handles GET /api/database/tables.
func (h *DatabaseHandler) Tables(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Tables(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(stats))
}

// ExportJSON handles GET /api/database/export/json.
func (h *DatabaseHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.Export(r.Context())
	if err != nil {
		h.logger.Error("database_export_failed",
			"error", err,
			"format", "json",
		)
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Erreur lors de l'export de la base de données")
		return
	}

	filename := fmt.Sprintf("mirotrak-export-%s.json", snapshot.ExportDate.Format("2006-01-02"))
	setAttachment(w, filename)

	h.logger.Info("database_exported", "format", "json")
	writeJSON(w, http.StatusOK, snapshot)
}

// ExportCSV handles GET /api/database/export/csv/{table}.
func (h *DatabaseHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.exportTable(w, r, "csv", contentTypeCSV, export.WriteCSV)
}

// ExportExcel handles GET /api/database/export/excel/{table}.
func (h *DatabaseHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	h.exportTable(w, r, "xlsx", contentTypeXLSX, export.WriteXLSX)
}

func (h *DatabaseHandler) exportTable(w http.ResponseWriter, r *http.Request, ext, contentType string,
	write func(io.Writer, *model.TableDump) error) {
	table := chi.URLParam(r, "table")

	dump, err := h.svc.DumpTable(r.Context(), table, ext)
	if err != nil {
		if errors.Is(err, service.ErrUnknownTable) {
			writeError(w, http.StatusBadRequest, "UNKNOWN_TABLE", "Table inconnue")
			return
		}
		h.logger.Error("database_export_failed", "error", err, "format", ext, "table", table)
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Erreur lors de l'export de la base de données")
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, dump); err != nil {
		h.logger.Error("database_export_failed", "error", err, "format", ext, "table", table)
		writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Erreur lors de l'export de la base de données")
		return
	}

	setAttachment(w, fmt.Sprintf("%s-%s.%s", table, h.now().Format("2006-01-02"), ext))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())

	h.logger.Info("database_exported", "format", ext, "table", table, "rows", len(dump.Rows))
}

// ImportJSON handles POST /api/database/import/json. The snapshot is the
// request body, or the "file" field of a multipart form.
func (h *DatabaseHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	mode, err := model.ParseSettingsMode(r.URL.Query().Get("settings"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	snapshot, err := h.readSnapshot(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.svc.Import(r.Context(), snapshot, mode)
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.Is(err, service.ErrImportDataMissing):
			writeError(w, http.StatusBadRequest, "IMPORT_DATA_MISSING", "Données d'import manquantes")
		case errors.As(err, &verr):
			respondError(w, r, h.logger, err)
		default:
			h.logger.Error("database_import_failed", "error", err, "settings_mode", mode)
			writeError(w, http.StatusInternalServerError, "IMPORT_FAILED", "Erreur lors de l'import de la base de données")
		}
		return
	}

	h.logger.Info("database_imported",
		"settings_mode", mode,
		"clients", result.Clients,
		"subscriptions", result.Subscriptions,
		"events", result.Events,
		"prompts", result.Prompts,
		"ai_photos", result.AiPhotos,
		"settings", result.Settings,
	)

	writeJSON(w, http.StatusOK, dto.ImportResponse{
		Message:      "Base de données importée avec succès",
		Imported:     result,
		SettingsMode: mode,
	})
}

func (h *DatabaseHandler) readSnapshot(r *http.Request) (*model.Snapshot, error) {
	var body io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, &model.ValidationError{Field: "file", Message: "invalid multipart form"}
		}
		defer r.MultipartForm.RemoveAll()
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, &model.ValidationError{Field: "file", Message: "is required"}
		}
		defer file.Close()
		body = file
	}

	var snapshot model.Snapshot
	if err := json.NewDecoder(body).Decode(&snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
