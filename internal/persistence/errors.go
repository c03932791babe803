package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is matched by every *ConstraintError.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrUnavailable marks transport or backend failures that may succeed on retry.
	ErrUnavailable = errors.New("persistence: storage unavailable")
)

// ConstraintKind identifies which integrity rule rejected a write.
type ConstraintKind string

const (
	// ConstraintForeignKeyCourse indicates the referenced course does not exist.
	ConstraintForeignKeyCourse ConstraintKind = "foreign_key_course"
	// ConstraintForeignKeyActor indicates the referenced faculty member does not exist.
	ConstraintForeignKeyActor ConstraintKind = "foreign_key_actor"
	// ConstraintForeignKey is a foreign key failure whose reference could not be identified.
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
)

// ConstraintError reports a write rejected by an integrity constraint.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	if e == nil {
		return ErrConstraintViolation.Error()
	}
	msg := fmt.Sprintf("persistence: %s constraint violation", e.Kind)
	if e.Constraint != "" {
		msg += " (" + e.Constraint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Unwrap returns the driver error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err so that it matches ErrUnavailable.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
