package storage

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jittakal/xesgen/pkg/event"
)

// mockMetricsCollector implements MetricsCollector for testing
type mockMetricsCollector struct {
	mu                 sync.Mutex
	filesWritten       int
	fileSizes          []float64
	storageDurations   []float64
	storageErrors      int
	lastFileStatus     string
	lastBackend        string
	lastFormat         string
	lastErrorBackend   string
	lastErrorOperation string
}

func (m *mockMetricsCollector) IncFilesWritten(backend string, format string, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filesWritten++
	m.lastBackend = backend
	m.lastFormat = format
	m.lastFileStatus = status
}

func (m *mockMetricsCollector) ObserveFileSize(format string, size float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileSizes = append(m.fileSizes, size)
}

func (m *mockMetricsCollector) ObserveStorageWriteDuration(backend string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storageDurations = append(m.storageDurations, duration)
}

func (m *mockMetricsCollector) IncStorageErrors(backend string, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storageErrors++
	m.lastErrorBackend = backend
	m.lastErrorOperation = operation
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTime = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

// testLog returns a one-trace log with two events.
func testLog() *event.Log {
	first := event.NewAttributes(2)
	first.Put(event.Attribute{Key: "concept:name", Value: event.Literal("main")})
	first.Put(event.Attribute{Key: "amount", Value: event.Continuous(12.5)})

	second := event.NewAttributes(1)
	second.Put(event.Attribute{Key: "concept:name", Value: event.Literal("exit")})

	return &event.Log{
		Attributes: event.NewAttributes(0),
		Traces: []event.Trace{
			{Events: []event.Event{event.NewEvent(first), event.NewEvent(second)}},
		},
	}
}
