package paging

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned before any network activity when a
// required argument is missing.
var ErrInvalidArgument = errors.New("invalid argument")

// ParseError reports malformed JSON content.
type ParseError struct {
	// Op names the conversion that failed (e.g. "rows", "page records").
	Op  string
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("parse %s from %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
