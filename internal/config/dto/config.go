package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Author        AuthorConfig        `mapstructure:"author"`
	Log           LogConfig           `mapstructure:"log"`
	MappingFile   string              `mapstructure:"mapping_file"`
	Input         InputConfig         `mapstructure:"input"`
	Output        OutputConfig        `mapstructure:"output"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Server        ServerConfig        `mapstructure:"server"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// LogName names generated output files and routed directories.
	LogName string `mapstructure:"log_name"`
}

// AuthorConfig holds the author details written into every log.
type AuthorConfig struct {
	Name        string `mapstructure:"name"`
	Affiliation string `mapstructure:"affiliation"`
	Contact     string `mapstructure:"contact"`
}

// LogConfig holds the log level flags.
type LogConfig struct {
	HasData      bool `mapstructure:"has_data"`
	HasException bool `mapstructure:"has_exception"`
}

// InputConfig controls how delimited input is read
type InputConfig struct {
	Delimiter   string `mapstructure:"delimiter"`
	StripQuotes bool   `mapstructure:"strip_quotes"`
	TrimSpace   bool   `mapstructure:"trim_space"`
}

// Comma returns the delimiter rune. An empty delimiter means ','.
func (c InputConfig) Comma() rune {
	if c.Delimiter == "" {
		return ','
	}
	if c.Delimiter == `\t` {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate validates input configuration.
func (c *InputConfig) Validate() error {
	if c.Delimiter == "" || c.Delimiter == `\t` {
		return nil
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if size != len(c.Delimiter) {
		return fmt.Errorf("input delimiter must be a single character, got %q", c.Delimiter)
	}
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("invalid input delimiter %q", c.Delimiter)
	}
	return nil
}

// OutputConfig selects the serialization of built logs
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	Compression string `mapstructure:"compression"`
}

// StorageConfig contains storage backend configuration
type StorageConfig struct {
	Backend string      `mapstructure:"backend"`
	S3      S3Config    `mapstructure:"s3"`
	Azure   AzureConfig `mapstructure:"azure"`
	GCS     GCSConfig   `mapstructure:"gcs"`
	File    FileConfig  `mapstructure:"file"`
}

// S3Config contains AWS S3 configuration
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	BasePath     string `mapstructure:"base_path"`
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	SSEEnabled   bool   `mapstructure:"sse_enabled"`
	SSEKMSKeyID  string `mapstructure:"sse_kms_key_id"`
}

// AzureConfig contains Azure Blob Storage configuration
type AzureConfig struct {
	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
	Container   string `mapstructure:"container"`
	BasePath    string `mapstructure:"base_path"`
	Endpoint    string `mapstructure:"endpoint"`
}

// GCSConfig contains Google Cloud Storage configuration
type GCSConfig struct {
	Bucket               string `mapstructure:"bucket"`
	ProjectID            string `mapstructure:"project_id"`
	BasePath             string `mapstructure:"base_path"`
	Endpoint             string `mapstructure:"endpoint"`
	CredentialsFile      string `mapstructure:"credentials_file"`
	CredentialsJSON      string `mapstructure:"credentials_json"`
	UseDefaultCredential bool   `mapstructure:"use_default_credential"`
}

// FileConfig contains local filesystem configuration
type FileConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// KafkaConfig contains Kafka publisher configuration
type KafkaConfig struct {
	Enabled          bool      `mapstructure:"enabled"`
	BootstrapServers []string  `mapstructure:"bootstrap_servers"`
	Topic            string    `mapstructure:"topic"`
	EventType        string    `mapstructure:"event_type"`
	Compression      string    `mapstructure:"compression"`
	SecurityProtocol string    `mapstructure:"security_protocol"`
	SASLMechanism    string    `mapstructure:"sasl_mechanism"`
	SASLUsername     string    `mapstructure:"sasl_username"`
	SASLPassword     string    `mapstructure:"sasl_password"`
	Region           string    `mapstructure:"region"`
	TLS              TLSConfig `mapstructure:"tls"`
}

// TLSConfig contains client TLS settings
type TLSConfig struct {
	CACertFile         string `mapstructure:"ca_cert_file"`
	ClientCertFile     string `mapstructure:"client_cert_file"`
	ClientKeyFile      string `mapstructure:"client_key_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// ServerConfig contains HTTP service settings
type ServerConfig struct {
	Port                   int   `mapstructure:"port"`
	ReadTimeoutSeconds     int   `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int   `mapstructure:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int   `mapstructure:"shutdown_timeout_seconds"`
	MaxBodyBytes           int64 `mapstructure:"max_body_bytes"`
}

// ObservabilityConfig contains observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Application.Name == "" {
		return fmt.Errorf("application name is required")
	}
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if c.Storage.Backend == "" {
		return fmt.Errorf("storage backend is required")
	}
	if c.Kafka.Enabled {
		if err := c.Kafka.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates Kafka configuration.
func (c *KafkaConfig) Validate() error {
	if len(c.BootstrapServers) == 0 {
		return fmt.Errorf("kafka bootstrap servers are required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka topic is required")
	}
	switch strings.ToUpper(c.SecurityProtocol) {
	case "SASL_PLAINTEXT", "SASL_SSL":
		if strings.EqualFold(c.SASLMechanism, "AWS_MSK_IAM") {
			if c.Region == "" {
				return fmt.Errorf("kafka region is required for AWS_MSK_IAM")
			}
			return nil
		}
		if c.SASLUsername == "" || c.SASLPassword == "" {
			return fmt.Errorf("kafka sasl username and password are required")
		}
	}
	return nil
}

// Validate validates S3 configuration.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("s3 region is required")
	}
	return nil
}

// Validate validates Azure configuration.
func (c *AzureConfig) Validate() error {
	if c.AccountName == "" {
		return fmt.Errorf("azure account name is required")
	}
	if c.Container == "" {
		return fmt.Errorf("azure container is required")
	}
	return nil
}

// Validate validates GCS configuration.
func (c *GCSConfig) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("gcs bucket is required")
	}
	return nil
}
