package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jittakal/xesgen/internal/config"
	"github.com/jittakal/xesgen/internal/config/dto"
	"github.com/jittakal/xesgen/internal/encoder"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/internal/kafka"
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/internal/observability"
	"github.com/jittakal/xesgen/internal/pipeline"
	"github.com/jittakal/xesgen/internal/server"
	"github.com/jittakal/xesgen/internal/source"
	"github.com/jittakal/xesgen/internal/storage"
	"github.com/jittakal/xesgen/pkg/event"
	pkgstorage "github.com/jittakal/xesgen/pkg/storage"
)

// Ensure the shared collaborators satisfy the interfaces they are wired to.
var (
	_ server.Converter          = (*pipeline.Converter)(nil)
	_ server.Publisher          = (*kafka.Publisher)(nil)
	_ server.MetricsCollector   = (*observability.Metrics)(nil)
	_ pipeline.MetricsCollector = (*observability.Metrics)(nil)
	_ storage.MetricsCollector  = (*observability.Metrics)(nil)
	_ kafka.MetricsCollector    = (*observability.Metrics)(nil)
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", "", "path to configuration file")
	inputPath := flag.String("input", "", "delimited input file")
	outputPath := flag.String("output", "", "exact output path (default: routed by log name and date)")
	serve := flag.Bool("serve", false, "run the HTTP conversion service")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [input [output]]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Positional arguments follow the legacy "input output" form
	args := flag.Args()
	if *inputPath == "" && len(args) > 0 {
		*inputPath = args[0]
	}
	if *outputPath == "" && len(args) > 1 {
		*outputPath = args[1]
	}

	// Load configuration
	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/application.yaml"
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize observability
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:   cfg.Observability.Logging.Level,
		Format:  cfg.Observability.Logging.Format,
		Output:  cfg.Observability.Logging.Output,
		Service: cfg.Application.Name,
	})
	logger.Info("starting xesgen",
		"version", cfg.Application.Version,
		"environment", cfg.Application.Environment,
		"config", cfgPath,
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Track cleanup functions, run in reverse order
	var cleanupFuncs []func() error
	addCleanup := func(name string, fn func() error) {
		cleanupFuncs = append(cleanupFuncs, func() error {
			if err := fn(); err != nil {
				logger.Warn("cleanup failed", "component", name, "error", err)
				return err
			}
			return nil
		})
		logger.Debug("registered cleanup", "component", name)
	}
	defer func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			_ = cleanupFuncs[i]()
		}
	}()

	// Resolve mapping and log metadata
	lookup, err := loader.Mapping(cfg)
	if err != nil {
		return fmt.Errorf("failed to load mapping: %w", err)
	}
	table := mapping.Resolve(lookup)
	meta, err := config.Metadata(cfg, lookup)
	if err != nil {
		return fmt.Errorf("failed to resolve log metadata: %w", err)
	}
	logger.Info("mapping resolved", "entries", table.Len(), "mapping_file", cfg.MappingFile)

	reader := &source.Reader{
		Comma:       cfg.Input.Comma(),
		StripQuotes: cfg.Input.StripQuotes,
		TrimSpace:   cfg.Input.TrimSpace,
	}
	converter := pipeline.NewConverter(reader, table, meta, logger, metrics)

	format, err := encoder.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	// Kafka publishing is optional
	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = newPublisher(cfg, logger, metrics)
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		addCleanup("kafka-publisher", publisher.Close)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		return serveHTTP(ctx, cfg, converter, publisher, format, registry, logger, metrics)
	}

	if *inputPath == "" {
		flag.Usage()
		return fmt.Errorf("an input file is required (use -input or a positional argument)")
	}

	writer, err := newWriter(cfg, format, logger, metrics)
	if err != nil {
		return err
	}
	addCleanup("storage-writer", writer.Close)

	return convert(ctx, cfg, converter, writer, publisher, *inputPath, *outputPath, logger)
}

// convert builds one log from inputPath and stores it, then publishes it
// when a publisher is configured.
func convert(
	ctx context.Context,
	cfg *dto.ApplicationConfig,
	converter *pipeline.Converter,
	writer pkgstorage.Writer,
	publisher *kafka.Publisher,
	inputPath string,
	outputPath string,
	logger *slog.Logger,
) error {
	eventLog, err := converter.ConvertFile(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", inputPath, err)
	}

	path := outputPath
	if path == "" {
		router := storage.NewRouter(storage.Protocol(cfg.Storage.Backend), storageBucket(cfg), storageBasePath(cfg))
		path = router.Route(cfg.Application.LogName, time.Now())
	}

	size, err := writer.Write(ctx, eventLog, path)
	if err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	logger.Info("log written",
		"input", inputPath,
		"path", path,
		"events", eventLog.EventCount(),
		"bytes", size,
	)

	if publisher != nil {
		n, err := publisher.Publish(ctx, eventLog)
		if err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}
		logger.Info("events published", "topic", cfg.Kafka.Topic, "count", n)
	}

	return nil
}

func serveHTTP(
	ctx context.Context,
	cfg *dto.ApplicationConfig,
	converter *pipeline.Converter,
	publisher *kafka.Publisher,
	format event.FileFormat,
	registry *prometheus.Registry,
	logger *slog.Logger,
	metrics *observability.Metrics,
) error {
	health := server.NewHealth()
	health.SetCheck("format", string(format))

	deps := server.Dependencies{
		Converter: converter,
		Health:    health,
		Metrics:   metrics,
		Logger:    logger,
	}
	if cfg.Observability.Metrics.Enabled {
		deps.Registry = registry
	}
	if publisher != nil {
		deps.Publisher = publisher
		health.SetCheck("kafka", cfg.Kafka.Topic)
	}

	httpServer := server.NewServer(server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MetricsPath:  cfg.Observability.Metrics.Path,
		LogName:      cfg.Application.LogName,
		Format:       format,
		Compression:  cfg.Output.Compression,
	}, deps)

	errCh := httpServer.Start()
	health.SetReady(true)
	logger.Info("application started successfully", "addr", httpServer.Addr())

	select {
	case <-ctx.Done():
		logger.Info("received termination signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	// Graceful shutdown
	logger.Info("initiating graceful shutdown")
	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	logger.Info("application stopped successfully")
	return nil
}

func newPublisher(cfg *dto.ApplicationConfig, logger *slog.Logger, metrics *observability.Metrics) (*kafka.Publisher, error) {
	return kafka.NewPublisher(kafka.PublisherConfig{
		BootstrapServers: cfg.Kafka.BootstrapServers,
		Topic:            cfg.Kafka.Topic,
		EventType:        cfg.Kafka.EventType,
		Source:           cfg.Application.LogName,
		Compression:      cfg.Kafka.Compression,
		Security: kafka.SecurityConfig{
			Protocol:  cfg.Kafka.SecurityProtocol,
			Mechanism: cfg.Kafka.SASLMechanism,
			Username:  cfg.Kafka.SASLUsername,
			Password:  cfg.Kafka.SASLPassword,
			Region:    cfg.Kafka.Region,
			TLS: kafka.TLSConfig{
				CACertFile:         cfg.Kafka.TLS.CACertFile,
				ClientCertFile:     cfg.Kafka.TLS.ClientCertFile,
				ClientKeyFile:      cfg.Kafka.TLS.ClientKeyFile,
				InsecureSkipVerify: cfg.Kafka.TLS.InsecureSkipVerify,
			},
		},
	}, logger, metrics)
}

// newWriter creates the storage writer for the configured backend.
func newWriter(
	cfg *dto.ApplicationConfig,
	format event.FileFormat,
	logger *slog.Logger,
	metrics *observability.Metrics,
) (pkgstorage.Writer, error) {
	compression := cfg.Output.Compression
	logName := cfg.Application.LogName

	switch cfg.Storage.Backend {
	case "file":
		writer, err := storage.NewFileWriter(storage.FileConfig{
			BasePath: cfg.Storage.File.BasePath,
			LogName:  logName,
		}, format, compression, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create filesystem writer: %w", err)
		}
		return writer, nil
	case "s3":
		writer, err := storage.NewS3Writer(storage.S3Config{
			Bucket:       cfg.Storage.S3.Bucket,
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
			SSEEnabled:   cfg.Storage.S3.SSEEnabled,
			SSEKMSKeyID:  cfg.Storage.S3.SSEKMSKeyID,
			LogName:      logName,
		}, format, compression, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 writer: %w", err)
		}
		return writer, nil
	case "azure":
		writer, err := storage.NewAzureWriter(storage.AzureConfig{
			AccountName:   cfg.Storage.Azure.AccountName,
			AccountKey:    cfg.Storage.Azure.AccountKey,
			ContainerName: cfg.Storage.Azure.Container,
			Endpoint:      cfg.Storage.Azure.Endpoint,
			LogName:       logName,
		}, format, compression, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Blob writer: %w", err)
		}
		return writer, nil
	case "gcs":
		writer, err := storage.NewGCSWriter(storage.GCSConfig{
			Bucket:               cfg.Storage.GCS.Bucket,
			ProjectID:            cfg.Storage.GCS.ProjectID,
			CredentialsFile:      cfg.Storage.GCS.CredentialsFile,
			CredentialsJSON:      cfg.Storage.GCS.CredentialsJSON,
			Endpoint:             cfg.Storage.GCS.Endpoint,
			UseDefaultCredential: cfg.Storage.GCS.UseDefaultCredential,
			LogName:              logName,
		}, format, compression, logger, metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS writer: %w", err)
		}
		return writer, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: file, s3, azure, gcs)", errors.ErrUnsupportedBackend, cfg.Storage.Backend)
	}
}

func storageBucket(cfg *dto.ApplicationConfig) string {
	switch cfg.Storage.Backend {
	case "s3":
		return cfg.Storage.S3.Bucket
	case "azure":
		return cfg.Storage.Azure.Container
	case "gcs":
		return cfg.Storage.GCS.Bucket
	default:
		return "" // File backend uses basePath only, no bucket
	}
}

func storageBasePath(cfg *dto.ApplicationConfig) string {
	switch cfg.Storage.Backend {
	case "s3":
		return cfg.Storage.S3.BasePath
	case "gcs":
		return cfg.Storage.GCS.BasePath
	case "azure":
		return cfg.Storage.Azure.BasePath
	default:
		return "" // basePath is handled by FileWriter
	}
}
