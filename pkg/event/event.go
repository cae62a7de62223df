// Package event defines the typed event log model.
//
// This package contains the public API for working with logs, traces,
// events and typed attributes. It follows the XES event log structure.
package event

import (
	"strconv"
	"strings"
)

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindDiscrete
	KindContinuous
	KindBoolean
)

// String returns the XES element name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "string"
	case KindDiscrete:
		return "int"
	case KindContinuous:
		return "float"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a typed attribute value. Exactly one variant is active.
// The zero Value is an empty Literal.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// Literal returns a string value.
func Literal(s string) Value { return Value{kind: KindLiteral, s: s} }

// Discrete returns a signed integer value.
func Discrete(i int64) Value { return Value{kind: KindDiscrete, i: i} }

// Continuous returns a floating-point value.
func Continuous(f float64) Value { return Value{kind: KindContinuous, f: f} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// AsLiteral returns the string held by a Literal value.
func (v Value) AsLiteral() (string, bool) { return v.s, v.kind == KindLiteral }

// AsDiscrete returns the integer held by a Discrete value.
func (v Value) AsDiscrete() (int64, bool) { return v.i, v.kind == KindDiscrete }

// AsContinuous returns the float held by a Continuous value.
func (v Value) AsContinuous() (float64, bool) { return v.f, v.kind == KindContinuous }

// AsBoolean returns the bool held by a Boolean value.
func (v Value) AsBoolean() (bool, bool) { return v.b, v.kind == KindBoolean }

// String renders the value the way serializers print it.
func (v Value) String() string {
	switch v.kind {
	case KindDiscrete:
		return strconv.FormatInt(v.i, 10)
	case KindContinuous:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Interface returns the underlying Go value (string, int64, float64 or bool).
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindDiscrete:
		return v.i
	case KindContinuous:
		return v.f
	case KindBoolean:
		return v.b
	default:
		return v.s
	}
}

// Attribute is a named typed value.
type Attribute struct {
	Key   string
	Value Value
}

// Attributes is an ordered collection of attributes with unique keys.
// Putting an existing key replaces the earlier attribute and keeps its position.
type Attributes struct {
	list  []Attribute
	index map[string]int
}

// NewAttributes creates an empty collection with room for n attributes.
func NewAttributes(n int) *Attributes {
	return &Attributes{
		list:  make([]Attribute, 0, n),
		index: make(map[string]int, n),
	}
}

// Put inserts or replaces the attribute stored under attr.Key.
func (a *Attributes) Put(attr Attribute) {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	if i, ok := a.index[attr.Key]; ok {
		a.list[i] = attr
		return
	}
	a.index[attr.Key] = len(a.list)
	a.list = append(a.list, attr)
}

// PutAll puts every attribute of other in order.
func (a *Attributes) PutAll(other *Attributes) {
	if other == nil {
		return
	}
	for _, attr := range other.list {
		a.Put(attr)
	}
}

// Get returns the attribute stored under key.
func (a *Attributes) Get(key string) (Attribute, bool) {
	if a == nil {
		return Attribute{}, false
	}
	i, ok := a.index[key]
	if !ok {
		return Attribute{}, false
	}
	return a.list[i], true
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.list)
}

// Keys returns the keys in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, len(a.list))
	for i, attr := range a.list {
		keys[i] = attr.Key
	}
	return keys
}

// List returns a copy of the attributes in insertion order.
func (a *Attributes) List() []Attribute {
	if a == nil {
		return nil
	}
	out := make([]Attribute, len(a.list))
	copy(out, a.list)
	return out
}

// Clone returns an independent copy of the collection.
func (a *Attributes) Clone() *Attributes {
	c := NewAttributes(a.Len())
	c.PutAll(a)
	return c
}

// Event is one observed occurrence. It is immutable once created.
type Event struct {
	attrs *Attributes
}

// NewEvent creates an event holding a copy of attrs.
func NewEvent(attrs *Attributes) Event {
	return Event{attrs: attrs.Clone()}
}

// Get returns the attribute stored under key.
func (e Event) Get(key string) (Attribute, bool) { return e.attrs.Get(key) }

// Keys returns the attribute keys in order.
func (e Event) Keys() []string { return e.attrs.Keys() }

// Len returns the number of attributes.
func (e Event) Len() int { return e.attrs.Len() }

// Attributes returns a copy of the event attributes.
func (e Event) Attributes() []Attribute { return e.attrs.List() }

// Trace is an ordered sequence of events of one execution instance.
type Trace struct {
	Events []Event
}

// Extension declares an attribute key namespace.
type Extension struct {
	Name   string
	Prefix string
	URI    string
}

// Classifier identifies event classes by the values of the named keys.
type Classifier struct {
	Name string
	Keys []string
}

// Identity concatenates the values at the classifier keys with "+".
// Keys the event does not carry are skipped.
func (c Classifier) Identity(e Event) string {
	parts := make([]string, 0, len(c.Keys))
	for _, key := range c.Keys {
		if attr, ok := e.Get(key); ok {
			parts = append(parts, attr.Value.String())
		}
	}
	return strings.Join(parts, "+")
}

// Log is a collection of traces plus run level metadata.
type Log struct {
	Extensions  []Extension
	Classifiers []Classifier
	Attributes  *Attributes
	Traces      []Trace
}

// EventCount returns the number of events across all traces.
func (l *Log) EventCount() int {
	n := 0
	for _, t := range l.Traces {
		n += len(t.Events)
	}
	return n
}

// FileStats contains statistics about an encoded log.
type FileStats struct {
	RecordCount int
	SizeBytes   int64
}

// FileFormat represents the serialization format.
type FileFormat string

const (
	FormatXES     FileFormat = "xes"
	FormatJSON    FileFormat = "json"
	FormatAvro    FileFormat = "avro"
	FormatParquet FileFormat = "parquet"
)
