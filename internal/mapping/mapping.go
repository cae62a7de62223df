// Package mapping resolves which input column feeds each semantic attribute key.
package mapping

import (
	"github.com/jittakal/xesgen/pkg/event"
)

// Lookup is a read-only key/value store. An empty value is treated as absent.
type Lookup interface {
	Get(key string) (string, bool)
}

// MapLookup adapts a plain map to Lookup.
type MapLookup map[string]string

// Get implements Lookup.
func (m MapLookup) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Chain consults each lookup in order and returns the first non-empty value.
type Chain []Lookup

// Get implements Lookup.
func (c Chain) Get(key string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Get(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// SemanticKey binds a configuration key to the attribute key it populates.
type SemanticKey struct {
	ConfigKey    string
	AttributeKey string
	// Kind is the type the owning extension declares for the attribute.
	Kind event.Kind
}

// Attribute keys of the concept, lifecycle and software event extensions.
const (
	KeyConceptName         = "concept:name"
	KeyLifecycleTransition = "lifecycle:transition"
	KeyType                = "swevent:type"
	KeyCalleePackage       = "swevent:callee-package"
	KeyCalleeClass         = "swevent:callee-class"
	KeyCalleeMethod        = "swevent:callee-method"
	KeyCalleeParamSig      = "swevent:callee-paramSig"
	KeyCalleeReturnSig     = "swevent:callee-returnSig"
	KeyCalleeIsConstructor = "swevent:callee-isConstructor"
	KeyCalleeInstanceID    = "swevent:callee-instanceId"
	KeyCalleeFilename      = "swevent:callee-filename"
	KeyCalleeLineNr        = "swevent:callee-lineNr"
	KeyReturnValue         = "swevent:returnValue"
	KeyParams              = "swevent:params"
	KeyAppName             = "swevent:appName"
	KeyAppTier             = "swevent:appTier"
	KeyAppNode             = "swevent:appNode"
	KeyAppSession          = "swevent:appSession"
	KeyThreadID            = "swevent:threadId"
	KeyNanotime            = "swevent:nanotime"
	KeyExThrown            = "swevent:exThrown"
	KeyExCaught            = "swevent:exCaught"
	KeyHasData             = "swevent:hasData"
	KeyHasException        = "swevent:hasException"
)

// SemanticKeys is the fixed, ordered set of keys the mapping understands.
var SemanticKeys = []SemanticKey{
	{"event.conceptName", KeyConceptName, event.KindLiteral},
	{"event.type", KeyType, event.KindLiteral},
	{"event.package", KeyCalleePackage, event.KindLiteral},
	{"event.class", KeyCalleeClass, event.KindLiteral},
	{"event.method", KeyCalleeMethod, event.KindLiteral},
	{"event.paramSig", KeyCalleeParamSig, event.KindLiteral},
	{"event.returnSig", KeyCalleeReturnSig, event.KindLiteral},
	{"event.isConstructor", KeyCalleeIsConstructor, event.KindBoolean},
	{"event.instanceId", KeyCalleeInstanceID, event.KindLiteral},
	{"event.filename", KeyCalleeFilename, event.KindLiteral},
	{"event.lineNr", KeyCalleeLineNr, event.KindDiscrete},
	{"event.returnValue", KeyReturnValue, event.KindLiteral},
	{"event.params", KeyParams, event.KindLiteral},
	{"event.appName", KeyAppName, event.KindLiteral},
	{"event.appTier", KeyAppTier, event.KindLiteral},
	{"event.appNode", KeyAppNode, event.KindLiteral},
	{"event.appSession", KeyAppSession, event.KindLiteral},
	{"event.threadId", KeyThreadID, event.KindLiteral},
	{"event.nanotime", KeyNanotime, event.KindDiscrete},
	{"event.exThrown", KeyExThrown, event.KindLiteral},
	{"event.exCaught", KeyExCaught, event.KindLiteral},
}

// Entry maps a semantic attribute key onto an input column.
type Entry struct {
	Key    string
	Column string
	Kind   event.Kind
}

// Table is an ordered semantic key to column mapping. Targets are never empty.
type Table struct {
	entries []Entry
	byKey   map[string]int
}

func newTable(n int) *Table {
	return &Table{
		entries: make([]Entry, 0, n),
		byKey:   make(map[string]int, n),
	}
}

func (t *Table) add(e Entry) {
	if i, ok := t.byKey[e.Key]; ok {
		t.entries[i] = e
		return
	}
	t.byKey[e.Key] = len(t.entries)
	t.entries = append(t.entries, e)
}

// Resolve builds the table from lookup. Keys with a missing or empty column
// name are omitted. Several keys may target the same column.
func Resolve(lookup Lookup) *Table {
	t := newTable(len(SemanticKeys))
	if lookup == nil {
		return t
	}
	for _, sk := range SemanticKeys {
		column, ok := lookup.Get(sk.ConfigKey)
		if !ok || column == "" {
			continue
		}
		t.add(Entry{Key: sk.AttributeKey, Column: column, Kind: sk.Kind})
	}
	return t
}

// Entries returns the entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Targets reports whether some semantic key maps onto column.
func (t *Table) Targets(column string) bool {
	if t == nil {
		return false
	}
	for _, e := range t.entries {
		if e.Column == column {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
