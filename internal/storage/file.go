package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/event"
	"github.com/jittakal/xesgen/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*FileWriter)(nil)

// FileConfig contains local filesystem configuration.
type FileConfig struct {
	// BasePath prefixes relative paths. Empty means the working directory.
	BasePath string
	LogName  string
}

// FileWriter implements storage.Writer for local filesystem storage.
type FileWriter struct {
	basePath       string
	encoderFactory *encoder.Factory
	namer          *fileNamer
	logger         *slog.Logger
	metrics        MetricsCollector
	mu             sync.Mutex
	closed         bool
}

// NewFileWriter creates a new filesystem storage writer.
func NewFileWriter(
	config FileConfig,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*FileWriter, error) {
	if config.BasePath != "" {
		if err := os.MkdirAll(config.BasePath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create base path: %w", err)
		}
	}

	encoderFactory, err := newEncoderFactory(format, compression)
	if err != nil {
		return nil, err
	}

	logger.Info("filesystem writer created",
		"base_path", config.BasePath,
		"format", format,
		"compression", compression,
	)

	return &FileWriter{
		basePath:       config.BasePath,
		encoderFactory: encoderFactory,
		namer:          newFileNamer(config.LogName),
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// Write encodes log into a file at path. Relative paths are placed under
// the base path and a "file://" prefix is ignored.
func (w *FileWriter) Write(ctx context.Context, log *event.Log, path string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, errors.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	startTime := time.Now()
	format := w.encoderFactory.Format()

	fileEncoder, err := w.encoderFactory.CreateEncoder()
	if err != nil {
		recordFailure(w.metrics, "file", format, "encoder_create")
		return 0, fmt.Errorf("failed to create encoder: %w", err)
	}

	cleanPath := w.namer.resolve(strings.TrimPrefix(path, "file://"), fileEncoder.FileExtension())
	fullPath := cleanPath
	if !filepath.IsAbs(cleanPath) {
		fullPath = filepath.Join(w.basePath, cleanPath)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		recordFailure(w.metrics, "file", format, "mkdir")
		return 0, &errors.StorageError{Operation: "create", Path: fullPath, Err: err}
	}

	stats, err := encoder.EncodeFile(fileEncoder, fullPath, log)
	if err != nil {
		recordFailure(w.metrics, "file", format, "encode")
		return 0, &errors.StorageError{Operation: "encode", Path: fullPath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote log to file",
		"path", fullPath,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	recordSuccess(w.metrics, "file", format, stats.SizeBytes, duration)

	return stats.SizeBytes, nil
}

// Close closes the writer. Later writes fail with ErrWriterClosed.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.logger.Info("closing filesystem writer")
	return nil
}
