package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jittakal/xesgen/internal/builder"
	"github.com/jittakal/xesgen/internal/config/dto"
	"github.com/jittakal/xesgen/internal/encoder"
	xerrors "github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/internal/mapping"
)

// EnvPrefix prefixes every environment override, e.g. XESGEN_OUTPUT_FORMAT.
const EnvPrefix = "XESGEN"

// legacyKeys maps keys of the old properties layout onto their current names.
// Viper lowercases keys on read.
var legacyKeys = map[string]string{
	"log.hasdata":      "log.has_data",
	"log.hasexception": "log.has_exception",
}

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// configType picks the viper codec for path. Java style .properties files
// are read with the dotenv codec, which accepts the same key=value lines.
func configType(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "properties", "env":
		return "dotenv"
	case "json", "toml", "yaml", "yml":
		return ext
	default:
		return "yaml"
	}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	// Set defaults
	l.setDefaults()

	// Load from file if provided
	if path != "" {
		l.v.SetConfigFile(path)
		l.v.SetConfigType(configType(path))
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for legacy, current := range legacyKeys {
		if l.v.InConfig(legacy) && !l.v.InConfig(current) {
			l.v.Set(current, l.v.GetString(legacy))
		}
	}

	// Expand environment variables in config values
	// Only expand if the value contains ${...} pattern
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	// Unmarshal configuration
	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "xesgen")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")
	l.v.SetDefault("application.log_name", "eventlog")

	// Input and output defaults
	l.v.SetDefault("input.delimiter", ",")
	l.v.SetDefault("input.strip_quotes", false)
	l.v.SetDefault("input.trim_space", false)
	l.v.SetDefault("output.format", "xes")
	l.v.SetDefault("output.compression", "")

	// Storage defaults
	l.v.SetDefault("storage.backend", "file")
	l.v.SetDefault("storage.file.base_path", "")
	l.v.SetDefault("storage.s3.use_path_style", false)
	l.v.SetDefault("storage.s3.sse_enabled", true)

	// Kafka defaults
	l.v.SetDefault("kafka.enabled", false)
	l.v.SetDefault("kafka.security_protocol", "PLAINTEXT")
	l.v.SetDefault("kafka.sasl_mechanism", "PLAIN")
	l.v.SetDefault("kafka.compression", "snappy")

	// Server defaults
	l.v.SetDefault("server.port", 8080)
	l.v.SetDefault("server.read_timeout_seconds", 30)
	l.v.SetDefault("server.write_timeout_seconds", 60)
	l.v.SetDefault("server.shutdown_timeout_seconds", 15)
	l.v.SetDefault("server.max_body_bytes", 32<<20)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "json")
	l.v.SetDefault("observability.logging.output", "stdout")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.path", "/metrics")
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// Storage validation
	switch config.Storage.Backend {
	case "s3":
		if err := config.Storage.S3.Validate(); err != nil {
			return err
		}
	case "azure":
		if err := config.Storage.Azure.Validate(); err != nil {
			return err
		}
		if config.Storage.Azure.AccountKey == "" {
			return errors.New("storage.azure.account_key is required for Azure backend")
		}
	case "gcs":
		if err := config.Storage.GCS.Validate(); err != nil {
			return err
		}
	case "file":
	default:
		return fmt.Errorf("%w: %s", xerrors.ErrUnsupportedBackend, config.Storage.Backend)
	}

	// Format validation
	format, err := encoder.ParseFormat(config.Output.Format)
	if err != nil {
		return err
	}
	if _, err := encoder.NewFactory(format, config.Output.Compression).CreateEncoder(); err != nil {
		return fmt.Errorf("invalid output compression %q: %w", config.Output.Compression, err)
	}

	// Port validation
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	return nil
}

// Mapping returns the semantic key lookup. A mapping_file takes precedence
// over the inline mapping section.
func (l *Loader) Mapping(config *dto.ApplicationConfig) (mapping.Lookup, error) {
	if config.MappingFile != "" {
		return LoadProperties(config.MappingFile)
	}
	return Properties{v: l.v.Sub("mapping")}, nil
}

// Properties adapts a viper instance to mapping.Lookup. Keys are case
// insensitive and an empty value counts as absent.
type Properties struct {
	v *viper.Viper
}

// LoadProperties reads a key/value file. The codec follows the extension.
func LoadProperties(path string) (Properties, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))
	if err := v.ReadInConfig(); err != nil {
		return Properties{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Properties{v: v}, nil
}

// Get implements mapping.Lookup.
func (p Properties) Get(key string) (string, bool) {
	if p.v == nil || !p.v.IsSet(key) {
		return "", false
	}
	s := strings.TrimSpace(p.v.GetString(key))
	return s, s != ""
}

// Metadata resolves the log metadata. Author details come from the author
// section. Log flags set in m win over the log section.
func Metadata(config *dto.ApplicationConfig, m mapping.Lookup) (builder.Metadata, error) {
	app := mapping.MapLookup{
		builder.KeyAuthorName:        config.Author.Name,
		builder.KeyAuthorAffiliation: config.Author.Affiliation,
		builder.KeyAuthorContact:     config.Author.Contact,
	}
	flags := mapping.Chain{m, mapping.MapLookup{
		builder.KeyLogHasData:      strconv.FormatBool(config.Log.HasData),
		builder.KeyLogHasException: strconv.FormatBool(config.Log.HasException),
	}}
	return builder.MetadataFrom(app, flags)
}
