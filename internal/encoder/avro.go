package encoder

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/encoder"
	"github.com/jittakal/xesgen/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ encoder.Encoder = (*AvroEncoder)(nil)

// avroLogMetadataKey holds the log header JSON in the OCF file metadata.
const avroLogMetadataKey = "xes.log"

// AvroEncoder implements encoder.Encoder for Apache Avro binary format.
// Each event becomes one record. Produces OCF (Object Container File) output;
// "deflate" and "snappy" select the OCF block codec while "gzip" and "zstd"
// compress the whole stream.
type AvroEncoder struct {
	codec       *goavro.Codec
	compression string
}

// NewAvroEncoder creates a new Avro encoder with specified compression.
func NewAvroEncoder(compression string) (*AvroEncoder, error) {
	codec, err := goavro.NewCodec(avroSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}

	c := strings.ToLower(compression)
	switch c {
	case goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
	case goavro.CompressionNullLabel:
		c = CompressionNone
	default:
		c = normalizeCompression(c)
		if err := validateCompression(c); err != nil {
			return nil, err
		}
	}

	return &AvroEncoder{
		codec:       codec,
		compression: c,
	}, nil
}

// avroSchema returns the Avro schema for event records.
func avroSchema() string {
	return `{
		"type": "record",
		"name": "Event",
		"namespace": "org.xesstandard.xesgen",
		"fields": [
			{"name": "trace_index", "type": "int"},
			{"name": "event_index", "type": "int"},
			{"name": "attributes", "type": {
				"type": "array",
				"items": {
					"type": "record",
					"name": "Attribute",
					"fields": [
						{"name": "key", "type": "string"},
						{"name": "value", "type": ["string", "long", "double", "boolean"]}
					]
				}
			}}
		]
	}`
}

func (e *AvroEncoder) blockCodec() string {
	switch e.compression {
	case goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
		return e.compression
	default:
		return goavro.CompressionNullLabel
	}
}

func (e *AvroEncoder) streamCompression() string {
	switch e.compression {
	case goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
		return CompressionNone
	default:
		return e.compression
	}
}

// Encode writes one Avro record per event to w.
func (e *AvroEncoder) Encode(w io.Writer, log *event.Log) (*event.FileStats, error) {
	if log == nil {
		return nil, errors.ErrNoRecordsToEncode
	}

	counter := &countingWriter{w: w}
	cw, err := compressWriter(counter, e.streamCompression())
	if err != nil {
		return nil, err
	}

	// Create OCF writer (Object Container File)
	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               cw,
		Codec:           e.codec,
		CompressionName: e.blockCodec(),
		MetaData: map[string][]byte{
			avroLogMetadataKey: headerJSON(log),
		},
	})
	if err != nil {
		cw.Close()
		return nil, fmt.Errorf("failed to create OCF writer: %w", err)
	}

	records := 0
	for ti, trace := range log.Traces {
		batch := make([]interface{}, 0, len(trace.Events))
		for ei, ev := range trace.Events {
			batch = append(batch, avroRecord(ti, ei, ev))
		}
		if len(batch) == 0 {
			continue
		}
		if err := ocfWriter.Append(batch); err != nil {
			cw.Close()
			return nil, fmt.Errorf("failed to write records: %w", err)
		}
		records += len(batch)
	}

	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressed stream: %w", err)
	}

	return &event.FileStats{
		RecordCount: records,
		SizeBytes:   counter.n,
	}, nil
}

// avroRecord converts an event to its Avro map representation.
func avroRecord(traceIndex, eventIndex int, ev event.Event) map[string]interface{} {
	attrs := ev.Attributes()
	items := make([]interface{}, len(attrs))
	for i, a := range attrs {
		items[i] = map[string]interface{}{
			"key":   a.Key,
			"value": avroUnion(a.Value),
		}
	}

	return map[string]interface{}{
		"trace_index": int32(traceIndex),
		"event_index": int32(eventIndex),
		"attributes":  items,
	}
}

func avroUnion(v event.Value) interface{} {
	switch v.Kind() {
	case event.KindDiscrete:
		i, _ := v.AsDiscrete()
		return goavro.Union("long", i)
	case event.KindContinuous:
		f, _ := v.AsContinuous()
		return goavro.Union("double", f)
	case event.KindBoolean:
		b, _ := v.AsBoolean()
		return goavro.Union("boolean", b)
	default:
		s, _ := v.AsLiteral()
		return goavro.Union("string", s)
	}
}

// EncodeToBytes encodes log to bytes (useful for testing).
func (e *AvroEncoder) EncodeToBytes(log *event.Log) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := e.Encode(&buf, log); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Format returns the file format.
func (e *AvroEncoder) Format() event.FileFormat {
	return event.FormatAvro
}

// FileExtension returns the file extension.
func (e *AvroEncoder) FileExtension() string {
	return ".avro" + compressionSuffix(e.streamCompression())
}

// ContentType returns the media type.
func (e *AvroEncoder) ContentType() string {
	return compressionContentType(e.streamCompression(), "application/avro")
}
