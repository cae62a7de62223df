// Package storage defines interfaces for writing encoded event logs.
//
// Implementations live in internal/storage and cover the local filesystem,
// S3, Google Cloud Storage and Azure Blob Storage.
package storage

import (
	"context"
	"time"

	"github.com/jittakal/xesgen/pkg/event"
)

// Writer encodes an event log and stores it.
type Writer interface {
	// Write encodes log and stores it at path. A path ending in "/" names a
	// directory and the writer generates the file name.
	// Returns the number of bytes written.
	Write(ctx context.Context, log *event.Log, path string) (int64, error)

	// Close closes the writer and releases resources.
	Close() error
}

// Router determines the storage directory for a log.
type Router interface {
	// Route returns the directory path for logName built at t.
	// The returned path ends in "/".
	Route(logName string, t time.Time) string
}
