package encoder

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/encoder"
	"github.com/jittakal/xesgen/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ encoder.Encoder = (*XESEncoder)(nil)

const (
	xesNamespace = "http://www.xes-standard.org/"
	xesVersion   = "1.0"
)

// XESEncoder implements encoder.Encoder for the IEEE XES XML format.
// Output may be gzip or zstd compressed.
type XESEncoder struct {
	compression string
	indent      string
}

// NewXESEncoder creates a new XES encoder with specified compression.
func NewXESEncoder(compression string) *XESEncoder {
	return &XESEncoder{
		compression: normalizeCompression(compression),
		indent:      "\t",
	}
}

// Encode writes log as an XES document.
func (e *XESEncoder) Encode(w io.Writer, log *event.Log) (*event.FileStats, error) {
	if log == nil {
		return nil, errors.ErrNoRecordsToEncode
	}

	counter := &countingWriter{w: w}
	cw, err := compressWriter(counter, e.compression)
	if err != nil {
		return nil, err
	}

	if _, err := io.WriteString(cw, xml.Header); err != nil {
		cw.Close()
		return nil, fmt.Errorf("failed to write xml header: %w", err)
	}

	enc := xml.NewEncoder(cw)
	enc.Indent("", e.indent)

	if err := e.encodeLog(enc, log); err != nil {
		cw.Close()
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		cw.Close()
		return nil, fmt.Errorf("failed to flush xml: %w", err)
	}
	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressed stream: %w", err)
	}

	return &event.FileStats{
		RecordCount: log.EventCount(),
		SizeBytes:   counter.n,
	}, nil
}

func (e *XESEncoder) encodeLog(enc *xml.Encoder, log *event.Log) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "log"},
		Attr: []xml.Attr{
			attr("xes.version", xesVersion),
			attr("xes.features", ""),
			attr("xmlns", xesNamespace),
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("failed to write log element: %w", err)
	}

	for _, ext := range log.Extensions {
		if err := emptyElement(enc, "extension",
			attr("name", ext.Name),
			attr("prefix", ext.Prefix),
			attr("uri", ext.URI),
		); err != nil {
			return err
		}
	}

	for _, c := range log.Classifiers {
		if err := emptyElement(enc, "classifier",
			attr("name", c.Name),
			attr("keys", classifierKeys(c.Keys)),
		); err != nil {
			return err
		}
	}

	for _, a := range log.Attributes.List() {
		if err := encodeAttribute(enc, a); err != nil {
			return err
		}
	}

	for _, trace := range log.Traces {
		if err := encodeTrace(enc, trace); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func encodeTrace(enc *xml.Encoder, trace event.Trace) error {
	start := xml.StartElement{Name: xml.Name{Local: "trace"}}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}

	for _, e := range trace.Events {
		ev := xml.StartElement{Name: xml.Name{Local: "event"}}
		if err := enc.EncodeToken(ev); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
		for _, a := range e.Attributes() {
			if err := encodeAttribute(enc, a); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(ev.End()); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}

	return enc.EncodeToken(start.End())
}

// encodeAttribute writes <kind key=".." value=".."/>, where kind is the XES
// element name of the value's variant.
func encodeAttribute(enc *xml.Encoder, a event.Attribute) error {
	return emptyElement(enc, a.Value.Kind().String(),
		attr("key", a.Key),
		attr("value", a.Value.String()),
	)
}

func emptyElement(enc *xml.Encoder, name string, attrs ...xml.Attr) error {
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// classifierKeys joins keys with spaces, quoting keys that contain one.
func classifierKeys(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		if strings.ContainsAny(k, " \t") {
			k = "'" + k + "'"
		}
		parts[i] = k
	}
	return strings.Join(parts, " ")
}

// Format returns the file format.
func (e *XESEncoder) Format() event.FileFormat {
	return event.FormatXES
}

// FileExtension returns the file extension.
func (e *XESEncoder) FileExtension() string {
	return ".xes" + compressionSuffix(e.compression)
}

// ContentType returns the media type.
func (e *XESEncoder) ContentType() string {
	return compressionContentType(e.compression, "application/xml")
}
