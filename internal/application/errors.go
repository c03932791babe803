package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/timeofday"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique key is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrMalformedTime is matched by every time value the normalizer rejects.
	ErrMalformedTime = timeofday.ErrMalformedTimeValue
	// ErrClashDetected is matched by *ClashError.
	ErrClashDetected = errors.New("application: exam clash detected")
	// ErrUnauthorizedActor is returned when the scheduling or assigning
	// faculty member does not exist.
	ErrUnauthorizedActor = errors.New("application: unknown faculty member")
	// ErrInvalidCourse is returned when the referenced course does not exist.
	ErrInvalidCourse = errors.New("application: invalid course")
	// ErrConstraintViolation is matched by *ConstraintError.
	ErrConstraintViolation = errors.New("application: constraint violation")
	// ErrStorageUnavailable is returned when the storage backend cannot be reached.
	ErrStorageUnavailable = errors.New("application: storage unavailable")
	// ErrCorruptRecord is returned when a stored record cannot be interpreted.
	ErrCorruptRecord = errors.New("application: stored record is corrupt")
	// ErrAttendanceWindow is matched by *AttendanceWindowError.
	ErrAttendanceWindow = errors.New("application: attendance already marked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// ClashError reports that a candidate exam overlaps an existing booking in
// the same scope on the same date.
type ClashError struct {
	Scope ClashScope
	Key   string
	Date  string
	Start timeofday.TimeOfDay
	End   timeofday.TimeOfDay
}

// Error implements the error interface.
func (e *ClashError) Error() string {
	return fmt.Sprintf("exam clash: %s %s already has an exam overlapping %s-%s on %s",
		e.Scope, e.Key, e.Start, e.End, e.Date)
}

// Is matches ErrClashDetected.
func (e *ClashError) Is(target error) bool {
	return target == ErrClashDetected
}

// ConstraintError reports a write rejected by a storage constraint that does
// not map to a more specific error.
type ConstraintError struct {
	Constraint string
	Err        error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return "constraint violation"
	}
	return "constraint violation: " + e.Constraint
}

// Is matches ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Unwrap returns the storage error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// AttendanceWindowError reports that a student marked attendance too recently.
type AttendanceWindowError struct {
	LastMarked       time.Time
	NextAllowed      time.Time
	MinutesRemaining int
}

// Error implements the error interface.
func (e *AttendanceWindowError) Error() string {
	return fmt.Sprintf("attendance already marked, can mark again in %d minutes", e.MinutesRemaining)
}

// Is matches ErrAttendanceWindow.
func (e *AttendanceWindowError) Is(target error) bool {
	return target == ErrAttendanceWindow
}

// mapRepoError translates persistence errors into application errors.
func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	var constraintErr *persistence.ConstraintError
	if errors.As(err, &constraintErr) {
		switch constraintErr.Kind {
		case persistence.ConstraintForeignKeyActor:
			return fmt.Errorf("%w: %s", ErrUnauthorizedActor, constraintErr.Constraint)
		case persistence.ConstraintForeignKeyCourse:
			return fmt.Errorf("%w: %s", ErrInvalidCourse, constraintErr.Constraint)
		case persistence.ConstraintUnique:
			return fmt.Errorf("%w: %s", ErrAlreadyExists, constraintErr.Constraint)
		default:
			return &ConstraintError{Constraint: constraintErr.Constraint, Err: err}
		}
	}
	return err
}
