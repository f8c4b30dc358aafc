package domain

import (
	"errors"
	"fmt"
)

// ErrIdentityConflict is returned when a create targets an identity that is
// already present in the collection.
type ErrIdentityConflict struct {
	Entity EntityKind
	ID     string
}

func (e ErrIdentityConflict) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.ID)
}

// ErrNotFound is returned when an update or delete targets a missing identity.
type ErrNotFound struct {
	Entity EntityKind
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ErrIdentityExhausted is returned when a random identity policy could not
// find a free identity within its attempt budget.
type ErrIdentityExhausted struct {
	Entity   EntityKind
	Attempts int
}

func (e ErrIdentityExhausted) Error() string {
	return fmt.Sprintf("%s identity space exhausted after %d attempts", e.Entity, e.Attempts)
}

// ValidationError reports a record or query that fails a declared rule.
// Field is empty when the failure is not attributable to a single field.
type ValidationError struct {
	Entity EntityKind
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.Field, e.Reason)
}

// ExportError wraps a serialization or delivery failure.
type ExportError struct {
	Resource string
	Stage    string // "serialize" or "deliver"
	Err      error
}

func (e ExportError) Error() string {
	return fmt.Sprintf("export %s failed during %s: %v", e.Resource, e.Stage, e.Err)
}

func (e ExportError) Unwrap() error { return e.Err }

// ErrIdentityRequired signals that a policy cannot generate identities and the
// caller must supply one (e.g. e-mail keyed users).
var ErrIdentityRequired = errors.New("identity must be supplied by the caller")

// IsConflict reports whether err carries an ErrIdentityConflict.
func IsConflict(err error) bool {
	var target ErrIdentityConflict
	return errors.As(err, &target)
}

// IsNotFound reports whether err carries an ErrNotFound.
func IsNotFound(err error) bool {
	var target ErrNotFound
	return errors.As(err, &target)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
