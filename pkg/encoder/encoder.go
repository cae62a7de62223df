// Package encoder defines interfaces for encoding event logs to various file formats.
package encoder

import (
	"io"

	"github.com/jittakal/xesgen/pkg/event"
)

// Encoder encodes an event log to a specific file format.
type Encoder interface {
	// Encode writes log to w and returns statistics about the written bytes.
	Encode(w io.Writer, log *event.Log) (*event.FileStats, error)

	// Format returns the file format this encoder produces.
	Format() event.FileFormat

	// FileExtension returns the file extension (e.g., ".xes", ".parquet").
	FileExtension() string

	// ContentType returns the media type of the encoded output.
	ContentType() string
}
