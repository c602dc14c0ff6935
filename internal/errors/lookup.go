package errors

import (
	stdErrors "errors"
	"fmt"
)

// LookupFailure represents a metadata lookup that could not produce a result,
// either because the source was unreachable or because nothing matched.
type LookupFailure struct {
	Source  string
	Title   string
	NoMatch bool
	Err     error
}

func (e *LookupFailure) Error() string {
	if e.NoMatch {
		return fmt.Sprintf("%s: no match for %q", e.Source, e.Title)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s lookup failed for %q: %v", e.Source, e.Title, e.Err)
	}
	return fmt.Sprintf("%s lookup failed for %q", e.Source, e.Title)
}

func (e *LookupFailure) Unwrap() error {
	return e.Err
}

// NewLookupFailure creates a LookupFailure caused by err.
func NewLookupFailure(source, title string, err error) *LookupFailure {
	return &LookupFailure{Source: source, Title: title, Err: err}
}

// NewNoMatchFailure creates a LookupFailure for a lookup that returned no results.
func NewNoMatchFailure(source, title string) *LookupFailure {
	return &LookupFailure{Source: source, Title: title, NoMatch: true}
}

// IsLookupFailure reports whether err is a LookupFailure (even when wrapped).
func IsLookupFailure(err error) bool {
	var lookupErr *LookupFailure
	return stdErrors.As(err, &lookupErr)
}
