package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/event"
	"github.com/jittakal/xesgen/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Writer = (*S3Writer)(nil)

// S3Config contains AWS S3 configuration.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	SSEEnabled   bool
	SSEKMSKeyID  string
	LogName      string
}

func validateS3Config(cfg S3Config) error {
	if cfg.Bucket == "" {
		return stderrors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		return stderrors.New("s3 region is required")
	}
	return nil
}

// s3Uploader is the subset of manager.Uploader used by S3Writer.
type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Writer implements storage.Writer for AWS S3 storage.
// It uses the multipart uploader and optional server-side encryption (SSE).
type S3Writer struct {
	uploader       s3Uploader
	bucket         string
	sseEnabled     bool
	sseKMSKeyID    string
	encoderFactory *encoder.Factory
	namer          *fileNamer
	logger         *slog.Logger
	metrics        MetricsCollector
	mu             sync.Mutex
	closed         bool
}

// NewS3Writer creates a new S3 storage writer.
func NewS3Writer(
	cfg S3Config,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*S3Writer, error) {
	if err := validateS3Config(cfg); err != nil {
		return nil, err
	}

	ctx := context.Background()
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		u.PartSize = 10 * 1024 * 1024 // 10MB parts
		u.Concurrency = 5
	})

	return newS3Writer(cfg, uploader, format, compression, logger, metrics)
}

func newS3Writer(
	cfg S3Config,
	uploader s3Uploader,
	format event.FileFormat,
	compression string,
	logger *slog.Logger,
	metrics MetricsCollector,
) (*S3Writer, error) {
	encoderFactory, err := newEncoderFactory(format, compression)
	if err != nil {
		return nil, err
	}

	logger.Info("S3 writer created",
		"bucket", cfg.Bucket,
		"region", cfg.Region,
		"format", format,
		"compression", compression,
		"sse_enabled", cfg.SSEEnabled,
	)

	return &S3Writer{
		uploader:       uploader,
		bucket:         cfg.Bucket,
		sseEnabled:     cfg.SSEEnabled,
		sseKMSKeyID:    cfg.SSEKMSKeyID,
		encoderFactory: encoderFactory,
		namer:          newFileNamer(cfg.LogName),
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// Write encodes log and uploads it. path is either a key or an
// s3://bucket/key URI; the bucket in the URI is ignored in favor of the
// configured one.
func (w *S3Writer) Write(ctx context.Context, log *event.Log, path string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, errors.ErrWriterClosed
	}

	startTime := time.Now()
	format := w.encoderFactory.Format()

	fileEncoder, err := w.encoderFactory.CreateEncoder()
	if err != nil {
		recordFailure(w.metrics, "s3", format, "encoder_create")
		return 0, fmt.Errorf("failed to create encoder: %w", err)
	}

	s3Key := w.namer.resolve(objectKey(path, "s3"), fileEncoder.FileExtension())

	body, stats, err := encodeToBuffer(fileEncoder, log)
	if err != nil {
		recordFailure(w.metrics, "s3", format, "encode")
		return 0, fmt.Errorf("failed to encode log: %w", err)
	}

	uploadInput := &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(s3Key),
		Body:        body,
		ContentType: aws.String(fileEncoder.ContentType()),
	}

	if w.sseEnabled {
		if w.sseKMSKeyID != "" {
			uploadInput.ServerSideEncryption = types.ServerSideEncryptionAwsKms
			uploadInput.SSEKMSKeyId = aws.String(w.sseKMSKeyID)
		} else {
			uploadInput.ServerSideEncryption = types.ServerSideEncryptionAes256
		}
	}

	result, err := w.uploader.Upload(ctx, uploadInput)
	if err != nil {
		recordFailure(w.metrics, "s3", format, "upload")
		return 0, &errors.StorageError{Operation: "upload", Path: "s3://" + w.bucket + "/" + s3Key, Err: err}
	}

	duration := time.Since(startTime)

	w.logger.Info("wrote log to S3",
		"bucket", w.bucket,
		"key", s3Key,
		"record_count", stats.RecordCount,
		"file_size", stats.SizeBytes,
		"format", format,
		"location", result.Location,
		"total_duration_ms", duration.Milliseconds(),
	)

	recordSuccess(w.metrics, "s3", format, stats.SizeBytes, duration)

	return stats.SizeBytes, nil
}

// Close closes the S3 writer.
func (w *S3Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	w.logger.Info("closing S3 writer")
	return nil
}
