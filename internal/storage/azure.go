package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/event"
	"github.com/jittakal/xesgen/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*AzureWriter)(nil)

// AzureConfig contains Azure Blob Storage configuration.
type AzureConfig struct {
	AccountName   string
	AccountKey    string
	ContainerName string
	Endpoint      string
	LogName       string
}

func validateAzureConfig(cfg AzureConfig) error {
	if cfg.AccountName == "" {
		return stderrors.New("azure account name is required")
	}
	if cfg.AccountKey == "" {
		return stderrors.New("azure account key is required")
	}
	if cfg.ContainerName == "" {
		return stderrors.New("azure container name is required")
	}
	return nil
}

// azureConnectionString builds a shared-key connection string.
func azureConnectionString(cfg AzureConfig) string {
	if cfg.Endpoint != "" {
		return fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;BlobEndpoint=%s",
			cfg.AccountName, cfg.AccountKey, cfg.Endpoint)
	}
	return fmt.Sprintf("DefaultEndpointsProtocol=https;AccountName=%s;AccountKey=%s;EndpointSuffix=core.windows.net",
		cfg.AccountName, cfg.AccountKey)
}

// blobUploader is the subset of azblob.Client used by AzureWriter.
type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// AzureWriter implements storage.Writer for Azure Blob Storage.
type AzureWriter struct {
	client         blobUploader
	containerName  string
	encoderFactory *encoder.Factory
	namer          *fileNamer
	logger         *slog.Logger
	metrics        MetricsCollector
	mu             sync.Mutex
	closed         bool
}

// NewAzureWriter creates a new Azure Blob storage writer.
func NewAzureWriter(
	cfg AzureConfig,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*AzureWriter, error) {
	if err := validateAzureConfig(cfg); err != nil {
		return nil, err
	}

	client, err := azblob.NewClientFromConnectionString(azureConnectionString(cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}

	return newAzureWriter(cfg, client, format, compression, logger, metrics)
}

func newAzureWriter(
	cfg AzureConfig,
	client blobUploader,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*AzureWriter, error) {
	encoderFactory, err := newEncoderFactory(format, compression)
	if err != nil {
		return nil, err
	}

	logger.Info("Azure writer created",
		"container", cfg.ContainerName,
		"account", cfg.AccountName,
		"format", format,
		"compression", compression,
	)

	return &AzureWriter{
		client:         client,
		containerName:  cfg.ContainerName,
		encoderFactory: encoderFactory,
		namer:          newFileNamer(cfg.LogName),
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// Write encodes log and uploads it as a block blob. path is either a blob
// name or a wasbs://container/blob URI.
func (w *AzureWriter) Write(ctx context.Context, log *event.Log, path string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, errors.ErrWriterClosed
	}

	startTime := time.Now()
	format := w.encoderFactory.Format()

	enc, err := w.encoderFactory.CreateEncoder()
	if err != nil {
		recordFailure(w.metrics, "azure", format, "encoder_create")
		return 0, fmt.Errorf("failed to create encoder: %w", err)
	}

	blobPath := w.namer.resolve(objectKey(path, "wasbs"), enc.FileExtension())

	body, stats, err := encodeToBuffer(enc, log)
	if err != nil {
		recordFailure(w.metrics, "azure", format, "encode")
		return 0, fmt.Errorf("failed to encode log: %w", err)
	}

	contentType := enc.ContentType()
	_, err = w.client.UploadBuffer(ctx, w.containerName, blobPath, body.Bytes(), &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		recordFailure(w.metrics, "azure", format, "upload")
		return 0, &errors.StorageError{Operation: "upload", Path: w.containerName + "/" + blobPath, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote log to Azure Blob",
		"container", w.containerName,
		"blob", blobPath,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"total_duration_ms", duration.Milliseconds(),
	)

	recordSuccess(w.metrics, "azure", format, stats.SizeBytes, duration)

	return stats.SizeBytes, nil
}

// Close closes the Azure writer.
func (w *AzureWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.logger.Info("Azure writer closed")
	return nil
}
