package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes used for classification.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// foreignKeys maps named foreign key constraints to the reference they guard.
var foreignKeys = map[string]persistence.ConstraintKind{
	"exams_course_code_fkey":              persistence.ConstraintForeignKeyCourse,
	"exams_scheduled_by_fkey":             persistence.ConstraintForeignKeyActor,
	"assignments_course_code_fkey":        persistence.ConstraintForeignKeyCourse,
	"assignments_assigned_by_fkey":        persistence.ConstraintForeignKeyActor,
	"attendance_records_course_code_fkey": persistence.ConstraintForeignKeyCourse,
}

// mapError translates driver errors into persistence errors using the
// structured SQLSTATE code and constraint name of *pgconn.PgError.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeForeignKeyViolation:
			kind, ok := foreignKeys[pgErr.ConstraintName]
			if !ok {
				kind = persistence.ConstraintForeignKey
			}
			return &persistence.ConstraintError{Kind: kind, Constraint: pgErr.ConstraintName, Err: err}
		case pgErr.Code == codeUniqueViolation:
			return &persistence.ConstraintError{Kind: persistence.ConstraintUnique, Constraint: pgErr.ConstraintName, Err: err}
		case pgErr.Code == codeCheckViolation, pgErr.Code == codeNotNullViolation:
			return &persistence.ConstraintError{Kind: persistence.ConstraintCheck, Constraint: pgErr.ConstraintName, Err: err}
		case isUnavailableCode(pgErr.Code):
			return persistence.Unavailable(err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) || errors.Is(err, driver.ErrBadConn) {
		return persistence.Unavailable(err)
	}
	return err
}

// isUnavailableCode reports connection exceptions (class 08), operator
// intervention shutdowns (57P01..57P03) and insufficient resources (class 53).
func isUnavailableCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
		return true
	case code == "57P01", code == "57P02", code == "57P03":
		return true
	}
	return false
}
