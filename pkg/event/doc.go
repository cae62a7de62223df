// Package event defines the typed event log model used by xesgen.
//
// A Log holds extension declarations, classifiers, log level attributes and
// traces. A Trace is an ordered sequence of events and every Event is an
// ordered, immutable collection of typed attributes.
//
// # Values
//
// Value is a tagged union with exactly one active variant:
//
//	event.Literal("main")      // string
//	event.Discrete(42)         // int64
//	event.Continuous(12.5)     // float64
//	event.Boolean(true)        // bool
//
// There is no implicit widening between Discrete and Continuous.
//
// # Attributes
//
// Attributes keeps insertion order and unique keys. A later Put with an
// existing key replaces the earlier attribute in place:
//
//	attrs := event.NewAttributes(2)
//	attrs.Put(event.Attribute{Key: "concept:name", Value: event.Literal("a")})
//	attrs.Put(event.Attribute{Key: "concept:name", Value: event.Literal("b")})
//	attrs.Len() // 1
//
// # Classifiers
//
// Classifier.Identity concatenates the values found at its keys with "+":
//
//	c := event.Classifier{Name: "Callee Joinpoint", Keys: []string{"concept:name", "swevent:callee-lineNr"}}
//	c.Identity(e) // "main+12"
//
// # File Formats
//
//	event.FormatXES      // XES XML
//	event.FormatJSON     // JSON document
//	event.FormatAvro     // one Avro record per event
//	event.FormatParquet  // one Parquet row per attribute
package event
