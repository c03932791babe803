package http

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/campus-scheduler/internal/application"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger prefers the request logger from ctx and tags it with the
// handler, the operation and the path resource id when one was resolved.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := []any{"handler", handlerName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if id, ok := ResourceIDFromContext(ctx); ok && id != "" {
		pairs = append(pairs, "resource_id", id)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

// logServiceError records a failed service call. Outcomes the caller can fix
// are logged at warn so that error level stays reserved for the server side.
func logServiceError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	level := slog.LevelError
	if clientFault(err) {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, msg, "error", err, "error_kind", application.ErrorKind(err))
}

func clientFault(err error) bool {
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, application.ErrClashDetected),
		errors.Is(err, application.ErrMalformedTime),
		errors.Is(err, application.ErrNotFound),
		errors.Is(err, application.ErrAlreadyExists),
		errors.Is(err, application.ErrUnauthorizedActor),
		errors.Is(err, application.ErrInvalidCourse),
		errors.Is(err, application.ErrConstraintViolation),
		errors.Is(err, application.ErrAttendanceWindow):
		return true
	}
	return false
}
