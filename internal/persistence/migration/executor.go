package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const versionTable = "schema_migrations"

// Executor applies migrations and tracks them in the schema_migrations table.
type Executor struct {
	db      *sql.DB
	dialect Dialect
}

// NewExecutor creates an executor bound to db using the given dialect.
func NewExecutor(db *sql.DB, dialect Dialect) *Executor {
	return &Executor{db: db, dialect: dialect}
}

// InitializeVersionTable creates the schema_migrations table if it doesn't exist
func (e *Executor) InitializeVersionTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + versionTable + ` (
		version TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL,
		checksum TEXT NOT NULL DEFAULT '',
		execution_time_ms BIGINT NOT NULL DEFAULT 0
	)`
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return e.dbError("", "create "+versionTable+" table", err)
	}
	return nil
}

// ExecuteMigration runs a single migration and records it within one transaction.
func (e *Executor) ExecuteMigration(ctx context.Context, migration Migration) (time.Duration, error) {
	started := time.Now()

	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return 0, newMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, e.dbError(migration.Version, "begin transaction", err)
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return 0, e.dbError(migration.Version, fmt.Sprintf("execute statement %d", i+1), err)
		}
	}

	elapsed := time.Since(started)
	record := fmt.Sprintf(
		"INSERT INTO %s (version, applied_at, checksum, execution_time_ms) VALUES (%s, %s, %s, %s)",
		versionTable, e.dialect.Placeholder(1), e.dialect.Placeholder(2), e.dialect.Placeholder(3), e.dialect.Placeholder(4),
	)
	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, record, migration.Version, appliedAt, migration.Checksum, elapsed.Milliseconds()); err != nil {
		_ = tx.Rollback()
		return 0, e.dbError(migration.Version, "record migration", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, e.dbError(migration.Version, "commit transaction", err)
	}
	return elapsed, nil
}

// IsVersionApplied checks if a specific migration version has been applied
func (e *Executor) IsVersionApplied(ctx context.Context, version string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE version = %s", versionTable, e.dialect.Placeholder(1))

	var exists int
	err := e.db.QueryRowContext(ctx, query, version).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, e.dbError(version, "check version applied", err)
	}
	return true, nil
}

// AppliedVersions returns all applied migrations ordered by version.
func (e *Executor) AppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	query := "SELECT version, applied_at, execution_time_ms, checksum FROM " + versionTable + " ORDER BY version ASC"

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, e.dbError("", "list applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version, appliedAt, checksum string
			executionMs                  int64
		)
		if err := rows.Scan(&version, &appliedAt, &executionMs, &checksum); err != nil {
			return nil, e.dbError("", "scan applied migration", err)
		}
		at, err := time.Parse(time.RFC3339, appliedAt)
		if err != nil {
			return nil, e.dbError(version, "parse applied_at", err)
		}
		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     at,
			ExecutionTime: time.Duration(executionMs) * time.Millisecond,
			Checksum:      checksum,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, e.dbError("", "iterate applied migrations", err)
	}
	return applied, nil
}
