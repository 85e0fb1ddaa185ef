package album

import (
	"errors"
	"fmt"
)

// ErrMapping is matched (via errors.Is) by every ParseError and MappingError
var ErrMapping = errors.New("release mapping failed")

// ParseError reports a tracklist position that cannot be resolved
// to a disc/track pair.
type ParseError struct {
	Position string
	Title    string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("invalid track position %q", e.Position)
	if e.Title != "" {
		msg += fmt.Sprintf(" (%s)", e.Title)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrMapping }

// MappingError reports a required album-level field that is missing or malformed
type MappingError struct {
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("release field %s: %s", e.Field, e.Reason)
}

func (e *MappingError) Is(target error) bool { return target == ErrMapping }
