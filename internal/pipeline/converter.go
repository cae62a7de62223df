// Package pipeline turns tabular input into event logs.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jittakal/xesgen/internal/builder"
	"github.com/jittakal/xesgen/internal/infer"
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/internal/source"
	"github.com/jittakal/xesgen/pkg/event"
)

// Conversion outcomes reported to MetricsCollector.IncConversions.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MetricsCollector defines the interface for conversion metrics.
type MetricsCollector interface {
	AddRowsRead(n int)
	AddEventsAssembled(n int)
	AddAttributesInferred(kind event.Kind, n int)
	AddUnresolvedMappings(n int)
	ObserveBuildDuration(duration float64)
	IncConversions(status string)
}

// InputFormat selects how a request body is read.
type InputFormat string

const (
	InputCSV  InputFormat = "csv"
	InputJSON InputFormat = "json"
)

// Converter builds logs with a fixed mapping and metadata. It is safe for
// concurrent use.
type Converter struct {
	reader  *source.Reader
	table   *mapping.Table
	meta    builder.Metadata
	logger  *slog.Logger
	metrics MetricsCollector
}

// NewConverter creates a converter. A nil reader reads plain CSV.
func NewConverter(
	reader *source.Reader,
	table *mapping.Table,
	meta builder.Metadata,
	logger *slog.Logger,
	metrics MetricsCollector,
) *Converter {
	if reader == nil {
		reader = &source.Reader{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{
		reader:  reader,
		table:   table,
		meta:    meta,
		logger:  logger,
		metrics: metrics,
	}
}

// ConvertFile reads the delimited file at path and builds its log.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*event.Log, error) {
	t, err := c.reader.ReadFile(path)
	if err != nil {
		c.finish(StatusError)
		return nil, err
	}
	return c.Build(ctx, t)
}

// Convert reads in as the given format and builds its log.
func (c *Converter) Convert(ctx context.Context, in io.Reader, format InputFormat) (*event.Log, error) {
	var (
		t   *source.Table
		err error
	)
	if format == InputJSON {
		t, err = source.ReadJSON(in)
	} else {
		t, err = c.reader.Read(in)
	}
	if err != nil {
		c.finish(StatusError)
		return nil, err
	}
	return c.Build(ctx, t)
}

// Build assembles t into a log with a single trace.
func (c *Converter) Build(ctx context.Context, t *source.Table) (*event.Log, error) {
	if err := ctx.Err(); err != nil {
		c.finish(StatusError)
		return nil, err
	}

	start := time.Now()

	b, err := builder.New(t.Header, c.table, c.meta)
	if err != nil {
		c.finish(StatusError)
		return nil, err
	}

	unresolved := b.Unresolved()
	for _, e := range unresolved {
		c.logger.Warn("mapping target not found in header",
			"key", e.Key,
			"column", e.Column,
		)
	}

	log, err := b.Build(t.Rows)
	if err != nil {
		c.finish(StatusError)
		return nil, err
	}

	duration := time.Since(start)
	stats := attributeStats(log)

	if c.metrics != nil {
		c.metrics.AddRowsRead(len(t.Rows))
		c.metrics.AddEventsAssembled(log.EventCount())
		c.metrics.AddUnresolvedMappings(len(unresolved))
		for _, k := range []event.Kind{event.KindLiteral, event.KindDiscrete, event.KindContinuous, event.KindBoolean} {
			if n := stats.Count(k); n > 0 {
				c.metrics.AddAttributesInferred(k, n)
			}
		}
		c.metrics.ObserveBuildDuration(duration.Seconds())
	}
	c.finish(StatusSuccess)

	c.logger.Debug("log built",
		"rows", len(t.Rows),
		"events", log.EventCount(),
		"attributes", stats.Total(),
		"unresolved_mappings", len(unresolved),
		"duration_ms", duration.Milliseconds(),
	)

	return log, nil
}

func (c *Converter) finish(status string) {
	if c.metrics != nil {
		c.metrics.IncConversions(status)
	}
}

func attributeStats(log *event.Log) *infer.Stats {
	stats := &infer.Stats{}
	for _, trace := range log.Traces {
		for _, e := range trace.Events {
			for _, attr := range e.Attributes() {
				stats.Observe(attr.Value)
			}
		}
	}
	return stats
}
