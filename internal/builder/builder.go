// Package builder assembles a complete event log from a header, data rows,
// a mapping table and run metadata.
package builder

import (
	"strings"

	"github.com/jittakal/xesgen/internal/assembler"
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/pkg/event"
)

// Metadata keys read from the configuration lookup.
const (
	KeyAuthorName        = "author.name"
	KeyAuthorAffiliation = "author.affiliation"
	KeyAuthorContact     = "author.contact"
	KeyLogHasData        = "log.hasData"
	KeyLogHasException   = "log.hasException"
)

// Log level attribute keys.
const (
	AttrAuthor      = "Author"
	AttrAffiliation = "Affiliation"
	AttrContact     = "Contact"
)

// Extensions declared by every built log.
var Extensions = []event.Extension{
	{Name: "Concept", Prefix: "concept", URI: "http://www.xes-standard.org/concept.xesext"},
	{Name: "Lifecycle", Prefix: "lifecycle", URI: "http://www.xes-standard.org/lifecycle.xesext"},
	{Name: "Organizational", Prefix: "org", URI: "http://www.xes-standard.org/org.xesext"},
	{Name: "Software Event", Prefix: "swevent", URI: "http://www.xes-standard.org/swevent.xesext"},
	{Name: "Time", Prefix: "time", URI: "http://www.xes-standard.org/time.xesext"},
}

// Classifiers declared by every built log.
var Classifiers = []event.Classifier{
	{Name: "Event Name", Keys: []string{mapping.KeyConceptName}},
	{Name: "(Event Name AND Lifecycle transition)", Keys: []string{mapping.KeyConceptName, mapping.KeyLifecycleTransition}},
	{Name: "Callee Name", Keys: []string{mapping.KeyConceptName}},
	{Name: "Callee Joinpoint", Keys: []string{mapping.KeyConceptName, mapping.KeyCalleeLineNr}},
	{Name: "(Callee Joinpoint AND Software Event Type)", Keys: []string{mapping.KeyType, mapping.KeyConceptName, mapping.KeyCalleeLineNr}},
}

// Metadata holds the run level attributes of a log.
type Metadata struct {
	Author       string
	Affiliation  string
	Contact      string
	HasData      bool
	HasException bool
}

// MetadataFrom reads author details from app and the log flags from flags.
// A missing author detail is a ConfigError. A flag is true only when its
// value is "true" in any case.
func MetadataFrom(app, flags mapping.Lookup) (Metadata, error) {
	var m Metadata

	required := []struct {
		key string
		dst *string
	}{
		{KeyAuthorName, &m.Author},
		{KeyAuthorAffiliation, &m.Affiliation},
		{KeyAuthorContact, &m.Contact},
	}
	for _, r := range required {
		v, ok := lookup(app, r.key)
		if !ok {
			return Metadata{}, &errors.ConfigError{Key: r.key, Reason: "required key is missing"}
		}
		*r.dst = v
	}

	m.HasData = parseFlag(flags, KeyLogHasData)
	m.HasException = parseFlag(flags, KeyLogHasException)

	return m, nil
}

func lookup(l mapping.Lookup, key string) (string, bool) {
	if l == nil {
		return "", false
	}
	v, ok := l.Get(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseFlag(l mapping.Lookup, key string) bool {
	v, _ := lookup(l, key)
	return strings.EqualFold(v, "true")
}

// Attributes returns the log level attributes.
func (m Metadata) Attributes() *event.Attributes {
	attrs := event.NewAttributes(5)
	attrs.Put(event.Attribute{Key: AttrAuthor, Value: event.Literal(m.Author)})
	attrs.Put(event.Attribute{Key: AttrAffiliation, Value: event.Literal(m.Affiliation)})
	attrs.Put(event.Attribute{Key: AttrContact, Value: event.Literal(m.Contact)})
	attrs.Put(event.Attribute{Key: mapping.KeyHasData, Value: event.Boolean(m.HasData)})
	attrs.Put(event.Attribute{Key: mapping.KeyHasException, Value: event.Boolean(m.HasException)})
	return attrs
}

// Builder builds logs for one header.
type Builder struct {
	assembler *assembler.Assembler
	meta      Metadata
}

// New classifies header against table and returns a Builder.
func New(header []string, table *mapping.Table, meta Metadata) (*Builder, error) {
	a, err := assembler.New(header, table)
	if err != nil {
		return nil, err
	}
	return &Builder{assembler: a, meta: meta}, nil
}

// Unresolved returns the mapping entries whose column is not in the header.
func (b *Builder) Unresolved() []mapping.Entry {
	return b.assembler.Classification().Unresolved()
}

// Build assembles one trace holding an event per row, in row order.
// Any failing row aborts the build. Rows are numbered from 1.
func (b *Builder) Build(rows [][]string) (*event.Log, error) {
	trace := event.Trace{Events: make([]event.Event, 0, len(rows))}

	for i, row := range rows {
		e, err := b.assembler.Event(i+1, row)
		if err != nil {
			return nil, &errors.RowError{Row: i + 1, Err: err}
		}
		trace.Events = append(trace.Events, e)
	}

	return &event.Log{
		Extensions:  append([]event.Extension(nil), Extensions...),
		Classifiers: cloneClassifiers(),
		Attributes:  b.meta.Attributes(),
		Traces:      []event.Trace{trace},
	}, nil
}

func cloneClassifiers() []event.Classifier {
	out := make([]event.Classifier, len(Classifiers))
	for i, c := range Classifiers {
		out[i] = event.Classifier{Name: c.Name, Keys: append([]string(nil), c.Keys...)}
	}
	return out
}

// BuildLog builds a log with exactly one trace from header and rows.
func BuildLog(header []string, rows [][]string, table *mapping.Table, meta Metadata) (*event.Log, error) {
	b, err := New(header, table, meta)
	if err != nil {
		return nil, err
	}
	return b.Build(rows)
}
