package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors surfaced verbatim through the service layer so handlers can
// map them to HTTP statuses.
var (
	// ErrNotFound is returned when a requested event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrForbidden is returned when a non-creator attempts a creator-only mutation.
	ErrForbidden = errors.New("no permission to modify this event")

	// ErrEventFull is returned when joining would exceed capacity.
	ErrEventFull = errors.New("the event is already at full capacity")

	// ErrAlreadyJoined is returned when the user is already a participant.
	ErrAlreadyJoined = errors.New("you have already joined this event")

	// ErrNotJoined is returned when leaving an event the user never joined.
	ErrNotJoined = errors.New("you are not a participant of this event")
)

// ValidationError carries field-level detail for create/update failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid event data"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
