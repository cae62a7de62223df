package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/event"
	pkgstorage "github.com/jittakal/xesgen/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ pkgstorage.Writer = (*GCSWriter)(nil)

// GCSConfig contains Google Cloud Storage configuration.
type GCSConfig struct {
	Bucket               string
	ProjectID            string
	CredentialsFile      string
	CredentialsJSON      string
	Endpoint             string
	UseDefaultCredential bool
	LogName              string
}

func validateGCSConfig(cfg GCSConfig) error {
	if cfg.Bucket == "" {
		return stderrors.New("gcs bucket is required")
	}
	return nil
}

// gcsClientOptions selects the authentication method.
func gcsClientOptions(cfg GCSConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	switch {
	case cfg.UseDefaultCredential:
		// Application default credentials
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return opts
}

// objectWriterFunc opens a writer for a new object. Closing the writer
// finalizes the upload.
type objectWriterFunc func(ctx context.Context, object, contentType string) io.WriteCloser

// GCSWriter implements storage.Writer for Google Cloud Storage.
type GCSWriter struct {
	client         *storage.Client
	openObject     objectWriterFunc
	bucket         string
	encoderFactory *encoder.Factory
	namer          *fileNamer
	logger         *slog.Logger
	metrics        MetricsCollector
	mu             sync.Mutex
	closed         bool
}

// NewGCSWriter creates a new Google Cloud Storage writer.
func NewGCSWriter(
	cfg GCSConfig,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*GCSWriter, error) {
	if err := validateGCSConfig(cfg); err != nil {
		return nil, err
	}

	client, err := storage.NewClient(context.Background(), gcsClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	bucket := client.Bucket(cfg.Bucket)
	open := func(ctx context.Context, object, contentType string) io.WriteCloser {
		w := bucket.Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}

	w, err := newGCSWriter(cfg, open, format, compression, logger, metrics)
	if err != nil {
		client.Close()
		return nil, err
	}
	w.client = client
	return w, nil
}

func newGCSWriter(
	cfg GCSConfig,
	open objectWriterFunc,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*GCSWriter, error) {
	encoderFactory, err := newEncoderFactory(format, compression)
	if err != nil {
		return nil, err
	}

	logger.Info("GCS writer created",
		"bucket", cfg.Bucket,
		"project_id", cfg.ProjectID,
		"format", format,
		"compression", compression,
	)

	return &GCSWriter{
		openObject:     open,
		bucket:         cfg.Bucket,
		encoderFactory: encoderFactory,
		namer:          newFileNamer(cfg.LogName),
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// Write encodes log and uploads it. path is either an object name or a
// gs://bucket/object URI.
func (w *GCSWriter) Write(ctx context.Context, log *event.Log, path string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, errors.ErrWriterClosed
	}

	startTime := time.Now()
	format := w.encoderFactory.Format()

	enc, err := w.encoderFactory.CreateEncoder()
	if err != nil {
		recordFailure(w.metrics, "gcs", format, "encoder_create")
		return 0, fmt.Errorf("failed to create encoder: %w", err)
	}

	objectPath := w.namer.resolve(objectKey(path, "gs"), enc.FileExtension())

	body, stats, err := encodeToBuffer(enc, log)
	if err != nil {
		recordFailure(w.metrics, "gcs", format, "encode")
		return 0, fmt.Errorf("failed to encode log: %w", err)
	}

	gcsWriter := w.openObject(ctx, objectPath, enc.ContentType())
	location := "gs://" + w.bucket + "/" + objectPath

	bytesWritten, err := io.Copy(gcsWriter, bytes.NewReader(body.Bytes()))
	if err != nil {
		recordFailure(w.metrics, "gcs", format, "upload")
		gcsWriter.Close()
		return 0, &errors.StorageError{Operation: "upload", Path: location, Err: err}
	}

	if err := gcsWriter.Close(); err != nil {
		recordFailure(w.metrics, "gcs", format, "close")
		return 0, &errors.StorageError{Operation: "write", Path: location, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote log to GCS",
		"bucket", w.bucket,
		"object", objectPath,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"bytes_written", bytesWritten,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	recordSuccess(w.metrics, "gcs", format, stats.SizeBytes, duration)

	return stats.SizeBytes, nil
}

// Close closes the GCS writer and its client.
func (w *GCSWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.logger.Info("closing GCS writer")
	if w.client != nil {
		return w.client.Close()
	}
	return nil
}
