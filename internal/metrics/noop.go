package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRecordCreated is a no-op.
func (n *NoopRecorder) IncRecordCreated(entity string) {}

// IncRecordUpdated is a no-op.
func (n *NoopRecorder) IncRecordUpdated(entity string) {}

// IncRecordDeleted is a no-op.
func (n *NoopRecorder) IncRecordDeleted(entity string) {}

// IncExport is a no-op.
func (n *NoopRecorder) IncExport(format string) {}

// IncImport is a no-op.
func (n *NoopRecorder) IncImport(status string) {}

// ObserveImportDuration is a no-op.
func (n *NoopRecorder) ObserveImportDuration(duration time.Duration) {}

// IncPhotoUploaded is a no-op.
func (n *NoopRecorder) IncPhotoUploaded() {}

// IncDocumentRendered is a no-op.
func (n *NoopRecorder) IncDocumentRendered(format string) {}
