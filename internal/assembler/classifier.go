// Package assembler turns data rows into events.
//
// A header is classified once against the mapping table. Every row is then
// split into standard attributes, keyed by column name, and mapped
// attributes, keyed by semantic key. The two are merged so that a mapped
// attribute replaces a standard one with the same key.
package assembler

import (
	"github.com/jittakal/xesgen/internal/errors"
	"github.com/jittakal/xesgen/internal/infer"
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/internal/validator"
	"github.com/jittakal/xesgen/pkg/event"
)

// Column is a header column with its position.
type Column struct {
	Name  string
	Index int
}

// MappedColumn is a semantic key bound to a header position.
type MappedColumn struct {
	Key    string
	Column string
	Index  int
	Kind   event.Kind
}

// Classification partitions a header into standard and mapped columns.
type Classification struct {
	width      int
	standard   []Column
	mapped     []MappedColumn
	unresolved []mapping.Entry
}

// Classify validates header and partitions it against table.
func Classify(header []string, table *mapping.Table) (*Classification, error) {
	if err := validator.NewHeaderValidator().Validate(header); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	c := &Classification{width: len(header)}

	for i, name := range header {
		if !table.Targets(name) {
			c.standard = append(c.standard, Column{Name: name, Index: i})
		}
	}

	for _, e := range table.Entries() {
		i, ok := index[e.Column]
		if !ok {
			c.unresolved = append(c.unresolved, e)
			continue
		}
		c.mapped = append(c.mapped, MappedColumn{
			Key:    e.Key,
			Column: e.Column,
			Index:  i,
			Kind:   e.Kind,
		})
	}

	return c, nil
}

// Width returns the number of header columns.
func (c *Classification) Width() int { return c.width }

// Standard returns the pass-through columns in header order.
func (c *Classification) Standard() []Column {
	out := make([]Column, len(c.standard))
	copy(out, c.standard)
	return out
}

// Mapped returns the resolved mapping entries in table order.
func (c *Classification) Mapped() []MappedColumn {
	out := make([]MappedColumn, len(c.mapped))
	copy(out, c.mapped)
	return out
}

// Unresolved returns mapping entries whose column is not in the header.
func (c *Classification) Unresolved() []mapping.Entry {
	out := make([]mapping.Entry, len(c.unresolved))
	copy(out, c.unresolved)
	return out
}

// Split reduces row to its standard and mapped attributes. rowNumber is
// reported in errors only.
func (c *Classification) Split(rowNumber int, row []string) (standard, mapped *event.Attributes, err error) {
	if len(row) != c.width {
		return nil, nil, &errors.ArityError{
			Row:      rowNumber,
			Expected: c.width,
			Actual:   len(row),
		}
	}

	standard = event.NewAttributes(len(c.standard))
	for _, col := range c.standard {
		standard.Put(infer.Attribute(col.Name, row[col.Index]))
	}

	mapped = event.NewAttributes(len(c.mapped))
	for _, col := range c.mapped {
		mapped.Put(event.Attribute{Key: col.Key, Value: mappedValue(col.Kind, row[col.Index])})
	}

	return standard, mapped, nil
}

// mappedValue keeps cells of string-typed semantic keys as text.
func mappedValue(kind event.Kind, raw string) event.Value {
	if kind != event.KindLiteral {
		return infer.Infer(raw)
	}
	if raw == "" {
		raw = infer.Placeholder
	}
	return event.Literal(raw)
}
