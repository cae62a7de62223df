// Package errors defines application-specific error types and sentinel errors.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrEmptyInput         = errors.New("input contains no header row")
	ErrMalformedInput     = errors.New("malformed input")
	ErrWriterClosed       = errors.New("storage writer is closed")
	ErrPublisherClosed    = errors.New("event publisher is closed")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrNoRecordsToEncode  = errors.New("no log to encode")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

// ConfigError reports a required configuration key that is absent or invalid.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s: %s", e.Key, e.Reason)
}

// ArityError reports a data row whose field count differs from the header.
type ArityError struct {
	Row      int
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("row/header arity mismatch: row=%d expected=%d actual=%d",
		e.Row, e.Expected, e.Actual)
}

// DuplicateColumnError reports a header name that occurs more than once.
type DuplicateColumnError struct {
	Column string
	First  int
	Second int
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name: %q at positions %d and %d",
		e.Column, e.First, e.Second)
}

// RowError wraps a failure while assembling one data row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	// an arity error already names its row
	var arity *ArityError
	if errors.As(e.Err, &arity) && arity.Row == e.Row {
		return e.Err.Error()
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// StorageError represents a storage operation failure.
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: operation=%s path=%s: %v",
		e.Operation, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err was caused by the tabular input itself
// rather than by configuration or infrastructure.
func IsInputError(err error) bool {
	if err == nil {
		return false
	}

	var arity *ArityError
	if errors.As(err, &arity) {
		return true
	}

	var dup *DuplicateColumnError
	if errors.As(err, &dup) {
		return true
	}

	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrMalformedInput)
}
