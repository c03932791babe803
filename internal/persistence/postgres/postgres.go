// Package postgres implements persistence.Storage on PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/persistence/migration"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage implements persistence.Storage on PostgreSQL.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ persistence.Storage = (*Storage)(nil)

// Option customises a Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// Open connects to the database at url. The connection is established lazily.
func Open(url string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("postgres: database url is required")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Storage{
		db:     db,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connections.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return persistence.Unavailable(err)
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(s.db, migration.Postgres, migrationFiles, "migrations", s.logger)
	return manager.Run(ctx)
}

func (s *Storage) timestamp() time.Time {
	return s.now().UTC()
}

// builder accumulates numbered bind parameters.
type builder struct {
	conditions []string
	args       []any
}

func (b *builder) next(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) add(format string, value any) {
	b.conditions = append(b.conditions, fmt.Sprintf(format, b.next(value)))
}

func (b *builder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// nullString maps nil and empty strings to NULL.
func nullString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
