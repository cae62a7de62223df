package encoder

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Stream compression names.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// normalizeCompression maps aliases to the canonical stream compression name.
func normalizeCompression(compression string) string {
	switch strings.ToLower(compression) {
	case "", "none", "uncompressed":
		return CompressionNone
	case "gzip", "gz":
		return CompressionGzip
	case "zstd", "zst":
		return CompressionZstd
	default:
		return strings.ToLower(compression)
	}
}

// compressionSuffix returns the file name suffix for a stream compression.
func compressionSuffix(compression string) string {
	switch normalizeCompression(compression) {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// compressionContentType returns the media type of compressed output, or
// fallback when the stream is not compressed.
func compressionContentType(compression, fallback string) string {
	switch normalizeCompression(compression) {
	case CompressionGzip:
		return "application/gzip"
	case CompressionZstd:
		return "application/zstd"
	default:
		return fallback
	}
}

// validateCompression reports an error for unknown stream compression names.
func validateCompression(compression string) error {
	switch normalizeCompression(compression) {
	case CompressionNone, CompressionGzip, CompressionZstd:
		return nil
	default:
		return fmt.Errorf("unsupported compression: %s", compression)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compressWriter wraps w with the named stream compression. Closing the
// returned writer flushes the compressed stream but never closes w.
func compressWriter(w io.Writer, compression string) (io.WriteCloser, error) {
	switch normalizeCompression(compression) {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", compression)
	}
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
