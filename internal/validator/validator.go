// Package validator provides header validation for tabular input.
package validator

import (
	"github.com/jittakal/xesgen/internal/errors"
)

// HeaderValidator checks that a header names every column exactly once.
// Names are compared exactly; an empty name is a legal column name.
type HeaderValidator struct{}

// NewHeaderValidator creates a new header validator.
func NewHeaderValidator() *HeaderValidator {
	return &HeaderValidator{}
}

// Validate validates a header.
func (v *HeaderValidator) Validate(header []string) error {
	if len(header) == 0 {
		return errors.ErrEmptyInput
	}

	seen := make(map[string]int, len(header))
	for i, name := range header {
		if first, ok := seen[name]; ok {
			return &errors.DuplicateColumnError{
				Column: name,
				First:  first,
				Second: i,
			}
		}
		seen[name] = i
	}

	return nil
}
