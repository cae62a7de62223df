package encoder

import (
	"fmt"
	"os"
	"strings"

	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/encoder"
	"github.com/jittakal/xesgen/pkg/event"
)

// Factory creates encoders based on format and configuration.
type Factory struct {
	format      event.FileFormat
	compression string
}

// NewFactory creates a new encoder factory. An empty compression selects
// DefaultCompression for the format.
func NewFactory(format event.FileFormat, compression string) *Factory {
	if compression == "" {
		compression = DefaultCompression(format)
	}
	return &Factory{
		format:      format,
		compression: compression,
	}
}

// Format returns the configured format.
func (f *Factory) Format() event.FileFormat {
	return f.format
}

// CreateEncoder creates an encoder based on the configured format.
func (f *Factory) CreateEncoder() (encoder.Encoder, error) {
	switch f.format {
	case event.FormatXES:
		if err := validateCompression(f.compression); err != nil {
			return nil, err
		}
		return NewXESEncoder(f.compression), nil
	case event.FormatJSON:
		if err := validateCompression(f.compression); err != nil {
			return nil, err
		}
		return NewJSONEncoder(f.compression), nil
	case event.FormatParquet:
		if err := validateCodec(f.format, f.compression); err != nil {
			return nil, err
		}
		return NewParquetEncoder(f.compression), nil
	case event.FormatAvro:
		return NewAvroEncoder(f.compression)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, f.format)
	}
}

// ParseFormat maps a format name to a FileFormat.
func ParseFormat(name string) (event.FileFormat, error) {
	format := event.FileFormat(strings.ToLower(strings.TrimSpace(name)))
	if format == "" {
		return event.FormatXES, nil
	}
	for _, f := range SupportedFormats() {
		if f == format {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", errors.ErrUnsupportedFormat, name)
}

// SupportedFormats returns a list of supported file formats.
func SupportedFormats() []event.FileFormat {
	return []event.FileFormat{
		event.FormatXES,
		event.FormatJSON,
		event.FormatAvro,
		event.FormatParquet,
	}
}

// SupportedCompressions returns supported compression codecs for a given format.
func SupportedCompressions(format event.FileFormat) []string {
	switch format {
	case event.FormatXES, event.FormatJSON:
		return []string{"none", "gzip", "zstd"}
	case event.FormatParquet:
		return []string{"uncompressed", "snappy", "gzip", "lz4", "zstd"}
	case event.FormatAvro:
		return []string{"null", "deflate", "snappy", "gzip", "zstd"}
	default:
		return []string{}
	}
}

// validateCodec reports an error unless compression is one of
// SupportedCompressions(format). "none" is accepted for every format.
func validateCodec(format event.FileFormat, compression string) error {
	name := strings.ToLower(compression)
	if name == CompressionNone {
		return nil
	}
	for _, c := range SupportedCompressions(format) {
		if c == name {
			return nil
		}
	}
	return fmt.Errorf("unsupported compression for %s: %s", format, compression)
}

// DefaultCompression returns the default compression for a format.
func DefaultCompression(format event.FileFormat) string {
	switch format {
	case event.FormatParquet:
		return "snappy"
	case event.FormatAvro:
		return "deflate"
	default:
		return "none"
	}
}

// EncodeFile encodes log into a new file at path.
func EncodeFile(enc encoder.Encoder, path string, log *event.Log) (*event.FileStats, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	stats, err := enc.Encode(file, log)
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to encode log: %w", err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return stats, nil
}
