package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter is a single labelled counter value.
type Counter struct {
	Label string
	Value uint64
}

// Snapshot captures current in-memory counters. Labelled counters are
// sorted by label.
type Snapshot struct {
	RecordsCreated        []Counter
	RecordsUpdated        []Counter
	RecordsDeleted        []Counter
	Exports               []Counter
	Imports               []Counter
	ImportDurationCount   uint64
	ImportDurationTotalNs int64
	PhotosUploaded        uint64
	DocumentsRendered     []Counter
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	mu       sync.Mutex
	counters map[string]map[string]uint64

	importDurationCount   uint64
	importDurationTotalNs int64
	photosUploaded        uint64
}

const (
	familyCreated  = "created"
	familyUpdated  = "updated"
	familyDeleted  = "deleted"
	familyExport   = "export"
	familyImport   = "import"
	familyDocument = "document"
)

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{counters: make(map[string]map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		RecordsCreated:        m.family(familyCreated),
		RecordsUpdated:        m.family(familyUpdated),
		RecordsDeleted:        m.family(familyDeleted),
		Exports:               m.family(familyExport),
		Imports:               m.family(familyImport),
		ImportDurationCount:   atomic.LoadUint64(&m.importDurationCount),
		ImportDurationTotalNs: atomic.LoadInt64(&m.importDurationTotalNs),
		PhotosUploaded:        atomic.LoadUint64(&m.photosUploaded),
		DocumentsRendered:     m.family(familyDocument),
	}
}

// Value returns one labelled counter. Intended for tests.
func (m *InMemoryRecorder) Value(family, label string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[family][label]
}

func (m *InMemoryRecorder) family(name string) []Counter {
	values := m.counters[name]
	out := make([]Counter, 0, len(values))
	for label, v := range values {
		out = append(out, Counter{Label: label, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (m *InMemoryRecorder) inc(family, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.counters[family]
	if !ok {
		values = make(map[string]uint64)
		m.counters[family] = values
	}
	values[label]++
}

// IncRecordCreated increments the created counter for entity.
func (m *InMemoryRecorder) IncRecordCreated(entity string) {
	m.inc(familyCreated, entity)
}

// IncRecordUpdated increments the updated counter for entity.
func (m *InMemoryRecorder) IncRecordUpdated(entity string) {
	m.inc(familyUpdated, entity)
}

// IncRecordDeleted increments the deleted counter for entity.
func (m *InMemoryRecorder) IncRecordDeleted(entity string) {
	m.inc(familyDeleted, entity)
}

// IncExport increments the export counter for format.
func (m *InMemoryRecorder) IncExport(format string) {
	m.inc(familyExport, format)
}

// IncImport increments the import counter for status.
func (m *InMemoryRecorder) IncImport(status string) {
	m.inc(familyImport, status)
}

// ObserveImportDuration records import duration.
func (m *InMemoryRecorder) ObserveImportDuration(duration time.Duration) {
	atomic.AddUint64(&m.importDurationCount, 1)
	atomic.AddInt64(&m.importDurationTotalNs, duration.Nanoseconds())
}

// IncPhotoUploaded increments the uploaded photo counter.
func (m *InMemoryRecorder) IncPhotoUploaded() {
	atomic.AddUint64(&m.photosUploaded, 1)
}

// IncDocumentRendered increments the rendered document counter for format.
func (m *InMemoryRecorder) IncDocumentRendered(format string) {
	m.inc(familyDocument, format)
}
