package handler

import (
	"fmt"
	"net/http"

	"github.com/mirotrak/mirotrak/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounters(w, "mirotrak_records_created_total", "entity", snap.RecordsCreated)
	writeCounters(w, "mirotrak_records_updated_total", "entity", snap.RecordsUpdated)
	writeCounters(w, "mirotrak_records_deleted_total", "entity", snap.RecordsDeleted)

	writeCounters(w, "mirotrak_exports_total", "format", snap.Exports)
	writeCounters(w, "mirotrak_imports_total", "status", snap.Imports)
	writeMetric(w, "mirotrak_import_duration_seconds_count %d\n", snap.ImportDurationCount)
	writeMetric(w, "mirotrak_import_duration_seconds_sum %.6f\n", float64(snap.ImportDurationTotalNs)/1e9)

	writeMetric(w, "mirotrak_photos_uploaded_total %d\n", snap.PhotosUploaded)
	writeCounters(w, "mirotrak_documents_rendered_total", "format", snap.DocumentsRendered)
}

func writeCounters(w http.ResponseWriter, name, label string, counters []metrics.Counter) {
	for _, c := range counters {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, c.Label, c.Value)
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
