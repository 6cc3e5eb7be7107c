// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Record management metrics, labelled by table name.
	IncRecordCreated(entity string)
	IncRecordUpdated(entity string)
	IncRecordDeleted(entity string)

	// Backup metrics
	IncExport(format string) // format: "json", "csv", "excel"
	IncImport(status string) // status: "success" or "failed"
	ObserveImportDuration(duration time.Duration)

	// Assets and documents
	IncPhotoUploaded()
	IncDocumentRendered(format string) // format: "pdf" or "email"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
