package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/config"
	httptransport "github.com/example/campus-scheduler/internal/http"
	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/persistence/postgres"
	"github.com/example/campus-scheduler/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("scheduler exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(cfg, storage, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr, "storage_driver", cfg.StorageDriver, "clash_scope", cfg.ClashScope)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// openStorage connects to the configured backend and applies its migrations.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Storage, error) {
	var (
		storage persistence.Storage
		err     error
	)
	switch cfg.StorageDriver {
	case config.DriverSQLite, "":
		storage, err = sqlite.Open(cfg.SQLiteDSN, sqlite.WithLogger(logger))
	case config.DriverPostgres:
		storage, err = postgres.Open(cfg.DatabaseURL, postgres.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}

	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storage, nil
}

func newHandler(cfg config.Config, storage persistence.Storage, logger *slog.Logger) http.Handler {
	retry := application.DefaultRetryPolicy()
	retry.MaxRetries = cfg.StorageRetries

	examService := application.NewExamService(storage, application.ExamServiceConfig{
		Scope: application.ClashScope(cfg.ClashScope),
		Retry: retry,
	}, nil, logger)
	assignmentService := application.NewAssignmentService(storage, retry, nil, logger)
	attendanceService := application.NewAttendanceService(storage, cfg.AttendanceWindow, retry, nil, time.Now, logger)
	catalogService := application.NewCatalogService(storage, retry, nil, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Exams:       httptransport.NewExamHandler(examService, logger),
		Assignments: httptransport.NewAssignmentHandler(assignmentService, logger),
		Attendance:  httptransport.NewAttendanceHandler(attendanceService, logger),
		Catalog:     httptransport.NewCatalogHandler(catalogService, logger),
		Health:      httptransport.NewHealthHandler(storage, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})
}
