package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/campus-scheduler/internal/application"
)

var (
	errBadRequestBody = errors.New("request body must be valid JSON")
	errMissingID      = errors.New("resource id is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, fields map[string]string) {
	r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
		ErrorCode: "VALIDATION_FAILED",
		Message:   "request validation failed",
		Errors:    fields,
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var (
		vErr      *application.ValidationError
		windowErr *application.AttendanceWindowError
	)

	switch {
	case errors.Is(err, application.ErrClashDetected):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "EXAM_CLASH", Message: err.Error()})
	case errors.Is(err, application.ErrMalformedTime):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "MALFORMED_TIME", Message: err.Error()})
	case errors.As(err, &vErr):
		r.writeValidation(ctx, w, vErr.FieldErrors)
	case errors.Is(err, application.ErrUnauthorizedActor):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{ErrorCode: "UNKNOWN_FACULTY", Message: "faculty member does not exist"})
	case errors.Is(err, application.ErrInvalidCourse):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "INVALID_COURSE", Message: "course does not exist"})
	case errors.Is(err, application.ErrConstraintViolation):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "CONSTRAINT_VIOLATION", Message: err.Error()})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_EXISTS", Message: "resource already exists"})
	case errors.As(err, &windowErr):
		w.Header().Set("Retry-After", strconv.Itoa(windowErr.MinutesRemaining*60))
		r.writeJSON(ctx, w, http.StatusTooManyRequests, errorResponse{ErrorCode: "ATTENDANCE_WINDOW", Message: err.Error()})
	case errors.Is(err, application.ErrStorageUnavailable):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{ErrorCode: "STORAGE_UNAVAILABLE", Message: "storage is temporarily unavailable"})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
