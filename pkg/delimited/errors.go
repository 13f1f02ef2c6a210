package delimited

import (
	"errors"
	"fmt"
)

var (
	// ErrUnterminatedQuote is reported for a record whose quoted span never closes.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	// ErrLineTooLong is reported for a physical line over Options.MaxLineBytes.
	ErrLineTooLong = errors.New("line exceeds the maximum length")
	// ErrFieldCount is matched by every *FieldCountError.
	ErrFieldCount = errors.New("wrong number of fields")
)

// RowError describes one discarded record.
type RowError struct {
	Line   int    `json:"line"`
	Record string `json:"record"`
	Err    error  `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reason is the underlying message, used in JSON diagnostics.
func (e *RowError) Reason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// FieldCountError reports a record with too few or too many fields.
type FieldCountError struct {
	Min, Max int
	Got      int
}

func (e *FieldCountError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("expected %d fields, got %d", e.Min, e.Got)
	}
	if e.Max < e.Min {
		return fmt.Sprintf("expected at least %d fields, got %d", e.Min, e.Got)
	}
	return fmt.Sprintf("expected %d to %d fields, got %d", e.Min, e.Max, e.Got)
}

func (e *FieldCountError) Is(target error) bool { return target == ErrFieldCount }

// CheckFieldCount returns a *FieldCountError unless min <= len(fields) <= max.
// A max below min means no upper bound.
func CheckFieldCount(fields []string, min, max int) error {
	n := len(fields)
	if n < min || (max >= min && n > max) {
		return &FieldCountError{Min: min, Max: max, Got: n}
	}
	return nil
}
