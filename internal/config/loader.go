package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/logging"
	"github.com/joho/godotenv"
)

// Storage drivers understood by the service.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort         int
	StorageDriver    string
	SQLiteDSN        string
	DatabaseURL      string
	ClashScope       string
	AttendanceWindow time.Duration
	StorageRetries   int
	LogLevel         slog.Level
}

// Load parses configuration values from the current process environment.
//
// A dotenv file named by SCHEDULER_ENV_FILE (default ".env") is read first
// when present. Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:         8080,
		StorageDriver:    DriverSQLite,
		SQLiteDSN:        "file:scheduler.db",
		ClashScope:       "course",
		AttendanceWindow: 2 * time.Hour,
		StorageRetries:   3,
		LogLevel:         slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := lookup("SCHEDULER_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driver := strings.ToLower(lookup("SCHEDULER_STORAGE_DRIVER")); driver != "" {
		switch driver {
		case DriverSQLite, DriverPostgres:
			cfg.StorageDriver = driver
		default:
			invalid = append(invalid, "SCHEDULER_STORAGE_DRIVER")
		}
	}

	if dsn := lookup("SCHEDULER_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	cfg.DatabaseURL = lookup("SCHEDULER_DATABASE_URL")
	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "SCHEDULER_DATABASE_URL")
	}

	if scope := strings.ToLower(lookup("SCHEDULER_CLASH_SCOPE")); scope != "" {
		if scope != "course" && scope != "group" {
			invalid = append(invalid, "SCHEDULER_CLASH_SCOPE")
		} else {
			cfg.ClashScope = scope
		}
	}

	if windowValue := lookup("SCHEDULER_ATTENDANCE_WINDOW"); windowValue != "" {
		window, err := time.ParseDuration(windowValue)
		if err != nil || window <= 0 {
			invalid = append(invalid, "SCHEDULER_ATTENDANCE_WINDOW")
		} else {
			cfg.AttendanceWindow = window
		}
	}

	if retriesValue := lookup("SCHEDULER_STORAGE_RETRIES"); retriesValue != "" {
		retries, err := strconv.Atoi(retriesValue)
		if err != nil || retries < 0 {
			invalid = append(invalid, "SCHEDULER_STORAGE_RETRIES")
		} else {
			cfg.StorageRetries = retries
		}
	}

	if levelValue := lookup("SCHEDULER_LOG_LEVEL"); levelValue != "" {
		level, err := logging.ParseLevel(levelValue)
		if err != nil {
			invalid = append(invalid, "SCHEDULER_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// loadEnvFile applies the dotenv file without overriding the environment. A
// missing default file is ignored; a missing explicit file is an error.
func loadEnvFile() error {
	path := lookup("SCHEDULER_ENV_FILE")
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
