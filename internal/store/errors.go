package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup by id matches no row. Ids are
	// internally generated, so a miss means the caller's state is stale.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClockedIn guards the single-open-session invariant: at most
	// one time stamp system-wide may be open.
	ErrAlreadyClockedIn = errors.New("already clocked in")

	// ErrNoOpenSession is returned by ClockOut when no session is running.
	ErrNoOpenSession = errors.New("no open session")
)

// ValidationError reports a rejected input value. It is recoverable: the
// caller re-prompts rather than failing.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
