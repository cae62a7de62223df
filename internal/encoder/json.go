package encoder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/valyala/fastjson"

	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/pkg/encoder"
	"github.com/jittakal/xesgen/pkg/event"
)

// Ensure implementation satisfies interface at compile time.
var _ encoder.Encoder = (*JSONEncoder)(nil)

// JSONEncoder implements encoder.Encoder for a JSON rendering of the log.
// Attribute order is preserved. Literals become strings, Discrete and
// Continuous values become numbers and Booleans become true or false.
type JSONEncoder struct {
	compression string
}

// NewJSONEncoder creates a new JSON encoder with specified compression.
func NewJSONEncoder(compression string) *JSONEncoder {
	return &JSONEncoder{compression: normalizeCompression(compression)}
}

// Encode writes log as a single JSON document.
func (e *JSONEncoder) Encode(w io.Writer, log *event.Log) (*event.FileStats, error) {
	if log == nil {
		return nil, errors.ErrNoRecordsToEncode
	}

	var a fastjson.Arena
	doc := logValue(&a, log, true)
	buf := doc.MarshalTo(nil)
	buf = append(buf, '\n')

	counter := &countingWriter{w: w}
	cw, err := compressWriter(counter, e.compression)
	if err != nil {
		return nil, err
	}
	if _, err := cw.Write(buf); err != nil {
		cw.Close()
		return nil, fmt.Errorf("failed to write json: %w", err)
	}
	if err := cw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressed stream: %w", err)
	}

	return &event.FileStats{
		RecordCount: log.EventCount(),
		SizeBytes:   counter.n,
	}, nil
}

// headerJSON renders the log without its traces. Avro and Parquet files
// carry it as file metadata.
func headerJSON(log *event.Log) []byte {
	var a fastjson.Arena
	return logValue(&a, log, false).MarshalTo(nil)
}

func logValue(a *fastjson.Arena, log *event.Log, withTraces bool) *fastjson.Value {
	root := a.NewObject()

	exts := a.NewArray()
	for i, ext := range log.Extensions {
		o := a.NewObject()
		o.Set("name", a.NewString(ext.Name))
		o.Set("prefix", a.NewString(ext.Prefix))
		o.Set("uri", a.NewString(ext.URI))
		exts.SetArrayItem(i, o)
	}
	root.Set("extensions", exts)

	classifiers := a.NewArray()
	for i, c := range log.Classifiers {
		keys := a.NewArray()
		for j, k := range c.Keys {
			keys.SetArrayItem(j, a.NewString(k))
		}
		o := a.NewObject()
		o.Set("name", a.NewString(c.Name))
		o.Set("keys", keys)
		classifiers.SetArrayItem(i, o)
	}
	root.Set("classifiers", classifiers)

	root.Set("attributes", attributesValue(a, log.Attributes.List()))
	if !withTraces {
		return root
	}

	traces := a.NewArray()
	for i, t := range log.Traces {
		events := a.NewArray()
		for j, e := range t.Events {
			events.SetArrayItem(j, attributesValue(a, e.Attributes()))
		}
		o := a.NewObject()
		o.Set("events", events)
		traces.SetArrayItem(i, o)
	}
	root.Set("traces", traces)

	return root
}

func attributesValue(a *fastjson.Arena, attrs []event.Attribute) *fastjson.Value {
	o := a.NewObject()
	for _, attr := range attrs {
		o.Set(attr.Key, scalarValue(a, attr.Value))
	}
	return o
}

func scalarValue(a *fastjson.Arena, v event.Value) *fastjson.Value {
	switch v.Kind() {
	case event.KindDiscrete:
		i, _ := v.AsDiscrete()
		return a.NewNumberString(strconv.FormatInt(i, 10))
	case event.KindContinuous:
		f, _ := v.AsContinuous()
		return a.NewNumberFloat64(f)
	case event.KindBoolean:
		if b, _ := v.AsBoolean(); b {
			return a.NewTrue()
		}
		return a.NewFalse()
	default:
		s, _ := v.AsLiteral()
		return a.NewString(s)
	}
}

// Format returns the file format.
func (e *JSONEncoder) Format() event.FileFormat {
	return event.FormatJSON
}

// FileExtension returns the file extension.
func (e *JSONEncoder) FileExtension() string {
	return ".json" + compressionSuffix(e.compression)
}

// ContentType returns the media type.
func (e *JSONEncoder) ContentType() string {
	return compressionContentType(e.compression, "application/json")
}
