// Package storage implements storage writers for encoded event logs.
package storage

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jittakal/xesgen/internal/encoder"
	pkgencoder "github.com/jittakal/xesgen/pkg/encoder"
	"github.com/jittakal/xesgen/pkg/event"
)

// DefaultLogName names generated files when no log name is configured.
const DefaultLogName = "eventlog"

// MetricsCollector defines metrics operations for storage.
type MetricsCollector interface {
	IncFilesWritten(backend string, format string, status string)
	ObserveFileSize(format string, size float64)
	ObserveStorageWriteDuration(backend string, duration float64)
	IncStorageErrors(backend string, operation string)
}

// fileNamer generates <logname>_YYYYMMDD_HHMMSS_NNN<ext> names. NNN counts
// files created within the same second.
type fileNamer struct {
	logName       string
	now           func() time.Time
	mu            sync.Mutex
	fileSequence  int
	lastTimestamp string
}

func newFileNamer(logName string) *fileNamer {
	if logName == "" {
		logName = DefaultLogName
	}
	return &fileNamer{logName: logName, now: time.Now}
}

func (n *fileNamer) next(ext string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	timestamp := n.now().UTC().Format("20060102_150405")
	if timestamp == n.lastTimestamp {
		n.fileSequence++
	} else {
		n.fileSequence = 1
		n.lastTimestamp = timestamp
	}

	return fmt.Sprintf("%s_%s_%03d%s", n.logName, timestamp, n.fileSequence, ext)
}

// resolve returns the object name for path. A path that is empty or ends
// in "/" gets a generated file name appended.
func (n *fileNamer) resolve(path, ext string) string {
	if path == "" || strings.HasSuffix(path, "/") {
		return path + n.next(ext)
	}
	return path
}

// objectKey strips a scheme://bucket/ prefix from path, leaving the key
// inside the bucket.
func objectKey(path, scheme string) string {
	prefix := scheme + "://"
	if !strings.HasPrefix(path, prefix) {
		return strings.TrimPrefix(path, "/")
	}

	parts := strings.SplitN(strings.TrimPrefix(path, prefix), "/", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return ""
}

// encodeToBuffer encodes log in memory. Logs are built whole so the
// encoded file is held in memory before upload.
func encodeToBuffer(enc pkgencoder.Encoder, log *event.Log) (*bytes.Buffer, *event.FileStats, error) {
	var buf bytes.Buffer
	stats, err := enc.Encode(&buf, log)
	if err != nil {
		return nil, nil, err
	}
	return &buf, stats, nil
}

// newEncoderFactory creates a factory and checks that it can build an encoder.
func newEncoderFactory(format event.FileFormat, compression string) (*encoder.Factory, error) {
	factory := encoder.NewFactory(format, compression)
	if _, err := factory.CreateEncoder(); err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	return factory, nil
}

func recordSuccess(m MetricsCollector, backend string, format event.FileFormat, size int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.IncFilesWritten(backend, string(format), "success")
	m.ObserveFileSize(string(format), float64(size))
	m.ObserveStorageWriteDuration(backend, duration.Seconds())
}

func recordFailure(m MetricsCollector, backend string, format event.FileFormat, operation string) {
	if m == nil {
		return
	}
	m.IncStorageErrors(backend, operation)
	m.IncFilesWritten(backend, string(format), "error")
}
