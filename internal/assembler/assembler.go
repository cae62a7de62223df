package assembler

import (
	"github.com/jittakal/xesgen/internal/mapping"
	"github.com/jittakal/xesgen/pkg/event"
)

// Assemble merges standard then mapped attributes into one event.
// On a key collision the mapped attribute wins.
func Assemble(standard, mapped *event.Attributes) event.Event {
	attrs := event.NewAttributes(standard.Len() + mapped.Len())
	attrs.PutAll(standard)
	attrs.PutAll(mapped)
	return event.NewEvent(attrs)
}

// Assembler converts rows of one header into events.
type Assembler struct {
	classification *Classification
}

// New classifies header against table and returns an Assembler for its rows.
func New(header []string, table *mapping.Table) (*Assembler, error) {
	c, err := Classify(header, table)
	if err != nil {
		return nil, err
	}
	return &Assembler{classification: c}, nil
}

// Classification returns the header classification.
func (a *Assembler) Classification() *Classification {
	return a.classification
}

// Event assembles the event for one data row.
func (a *Assembler) Event(rowNumber int, row []string) (event.Event, error) {
	standard, mapped, err := a.classification.Split(rowNumber, row)
	if err != nil {
		return event.Event{}, err
	}
	return Assemble(standard, mapped), nil
}
