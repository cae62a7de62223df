// Package infer converts raw text cells into typed attribute values.
package infer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jittakal/xesgen/pkg/event"
)

// Placeholder replaces empty cells before classification.
const Placeholder = "novalue"

var (
	continuousPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	discretePattern   = regexp.MustCompile(`^[0-9]+$`)
)

// Infer returns the most specific value for raw. It never fails: anything
// that is not a plain decimal, a plain integer or a boolean is a Literal.
func Infer(raw string) event.Value {
	if raw == "" {
		raw = Placeholder
	}

	if continuousPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return event.Continuous(f)
		}
		return event.Literal(raw)
	}

	if discretePattern.MatchString(raw) {
		// digit strings beyond int64 stay text
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return event.Discrete(i)
		}
		return event.Literal(raw)
	}

	// ToLower leaves non-ASCII look-alikes such as the long s unchanged
	switch strings.ToLower(raw) {
	case "true":
		return event.Boolean(true)
	case "false":
		return event.Boolean(false)
	}

	return event.Literal(raw)
}

// Attribute infers the value of raw and binds it to key.
func Attribute(key, raw string) event.Attribute {
	return event.Attribute{Key: key, Value: Infer(raw)}
}

// Stats counts inferred values per kind.
type Stats struct {
	counts [4]int
}

// Observe records the kind of v.
func (s *Stats) Observe(v event.Value) {
	if k := v.Kind(); int(k) < len(s.counts) {
		s.counts[k]++
	}
}

// Count returns how many values of kind k were observed.
func (s *Stats) Count(k event.Kind) int {
	if int(k) >= len(s.counts) {
		return 0
	}
	return s.counts[k]
}

// Total returns the number of observed values.
func (s *Stats) Total() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}
