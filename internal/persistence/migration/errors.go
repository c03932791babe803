package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigrationFile is returned for files that are empty or misnamed.
	ErrInvalidMigrationFile = errors.New("migration: invalid migration file")
	// ErrInvalidVersion is returned when a file name does not start with a number.
	ErrInvalidVersion = errors.New("migration: invalid version")
	// ErrDuplicateVersion is returned when two files share a version.
	ErrDuplicateVersion = errors.New("migration: duplicate version")
	// ErrChecksumMismatch is returned when an applied file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration: checksum mismatch")
)

// MigrationError reports a problem with a migration file itself.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	subject := "migration"
	if e.Version != "" {
		subject += " " + e.Version
	}
	return fmt.Sprintf("%s (%s): %s: %v", subject, e.FilePath, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// DatabaseError reports a statement that the backend rejected while
// migrating. Dialect names the backend so that logs from the sqlite and
// postgres stores can be told apart.
type DatabaseError struct {
	Dialect   string
	Version   string
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	prefix := e.Dialect
	if prefix == "" {
		prefix = "database"
	}
	if e.Version != "" {
		return fmt.Sprintf("%s: migration %s: %s: %v", prefix, e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", prefix, e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func newMigrationError(version, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

func (e *Executor) dbError(version, operation string, err error) *DatabaseError {
	return &DatabaseError{Dialect: e.dialect.Name, Version: version, Operation: operation, Err: err}
}
