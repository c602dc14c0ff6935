package errors

import (
	stdErrors "errors"
	"fmt"
)

// ParseError represents a malformed row or field in a tabular source.
type ParseError struct {
	Source string
	Line   int // 1-based line in the source file, 0 when unknown
	Field  string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	msg := e.Source
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: field %q", msg, e.Field)
		if e.Value != "" {
			msg = fmt.Sprintf("%s value %q", msg, e.Value)
		}
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

// NewParseError creates a ParseError for a single field.
func NewParseError(source string, line int, field, value, reason string) *ParseError {
	return &ParseError{
		Source: source,
		Line:   line,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// IsParseError reports whether err is a ParseError (even when wrapped).
func IsParseError(err error) bool {
	var parseErr *ParseError
	return stdErrors.As(err, &parseErr)
}
