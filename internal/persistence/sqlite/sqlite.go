package sqlite

import (
	"context"
	"embed"
	"log/slog"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/persistence/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage implements persistence.Storage on top of SQLite. Dates are stored as
// YYYY-MM-DD text and times of day as HH:MM:SS text.
type Storage struct {
	pool   *ConnectionPool
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

// Open returns a Storage backed by the database at dsn.
func Open(dsn string, opts ...Option) (*Storage, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		pool:   pool,
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
	return s.pool.Close()
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(s.pool.DB(), migration.SQLite, migrationFiles, "migrations", s.logger)
	return manager.Run(ctx)
}

func (s *Storage) timestamp() time.Time {
	return s.now().UTC()
}
