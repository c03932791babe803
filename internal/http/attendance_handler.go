package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type attendanceService interface {
	CanMarkAttendance(ctx context.Context, regNumber string) (application.Eligibility, error)
	MarkAttendance(ctx context.Context, params application.MarkAttendanceParams) (application.AttendanceRecord, error)
	AttendanceStats(ctx context.Context, regNumber string, days int) (application.AttendanceStats, error)
}

type AttendanceHandler struct {
	service   attendanceService
	responder responder
	validator *requestValidator
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), validator: newRequestValidator(), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req markAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Mark", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode attendance request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "Mark", "reg_number", req.RegNumber)

	record, err := h.service.MarkAttendance(r.Context(), application.MarkAttendanceParams{
		RegNumber:  req.RegNumber,
		CourseCode: req.CourseCode,
		Status:     req.Status,
	})
	if err != nil {
		logServiceError(r.Context(), logger, "attendance marking failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("attendance_id", record.ID).InfoContext(r.Context(), "attendance marked")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, attendanceResponse{
		Message: "attendance marked successfully",
		Record:  toAttendanceDTO(record),
	})
}

func (h *AttendanceHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	regNumber, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(regNumber) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	eligibility, err := h.service.CanMarkAttendance(r.Context(), regNumber)
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "Eligibility", "reg_number", regNumber), "eligibility check failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEligibilityDTO(eligibility))
}

func (h *AttendanceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	regNumber, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(regNumber) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("days must be an integer"))
			return
		}
		days = parsed
	}

	stats, err := h.service.AttendanceStats(r.Context(), regNumber, days)
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "Stats", "reg_number", regNumber), "attendance stats failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toStatsDTO(stats))
}

type markAttendanceRequest struct {
	RegNumber  string `json:"reg_number" validate:"required"`
	CourseCode string `json:"course_code"`
	Status     string `json:"status" validate:"omitempty,oneof=present late absent"`
}

type attendanceResponse struct {
	Message string        `json:"message"`
	Record  attendanceDTO `json:"attendance"`
}

type attendanceDTO struct {
	ID         string  `json:"attendance_id"`
	RegNumber  string  `json:"reg_number"`
	CourseCode *string `json:"course_code,omitempty"`
	Status     string  `json:"status"`
	Timestamp  string  `json:"timestamp"`
}

func toAttendanceDTO(record application.AttendanceRecord) attendanceDTO {
	return attendanceDTO{
		ID:         record.ID,
		RegNumber:  record.RegNumber,
		CourseCode: record.CourseCode,
		Status:     record.Status,
		Timestamp:  record.Timestamp,
	}
}

type eligibilityDTO struct {
	CanMark          bool    `json:"can_mark"`
	Message          string  `json:"message"`
	LastMarked       *string `json:"last_marked,omitempty"`
	NextAllowed      *string `json:"next_allowed,omitempty"`
	MinutesRemaining int     `json:"minutes_remaining,omitempty"`
}

func toEligibilityDTO(e application.Eligibility) eligibilityDTO {
	dto := eligibilityDTO{CanMark: e.Allowed, Message: e.Message, MinutesRemaining: e.MinutesRemaining}
	if e.LastMarked != nil {
		formatted := e.LastMarked.UTC().Format(time.RFC3339)
		dto.LastMarked = &formatted
	}
	if e.NextAllowed != nil {
		formatted := e.NextAllowed.UTC().Format(time.RFC3339)
		dto.NextAllowed = &formatted
	}
	return dto
}

type statsDTO struct {
	RegNumber      string                     `json:"reg_number"`
	From           string                     `json:"from"`
	To             string                     `json:"to"`
	TotalRecords   int                        `json:"total_records"`
	Present        int                        `json:"present"`
	Late           int                        `json:"late"`
	Absent         int                        `json:"absent"`
	AttendanceRate float64                    `json:"attendance_rate"`
	ByDate         map[string][]attendanceDTO `json:"attendance_by_date"`
}

func toStatsDTO(stats application.AttendanceStats) statsDTO {
	byDate := make(map[string][]attendanceDTO, len(stats.ByDate))
	for day, records := range stats.ByDate {
		converted := make([]attendanceDTO, 0, len(records))
		for _, record := range records {
			converted = append(converted, toAttendanceDTO(record))
		}
		byDate[day] = converted
	}
	return statsDTO{
		RegNumber:      stats.RegNumber,
		From:           stats.From.Format(time.DateOnly),
		To:             stats.To.Format(time.DateOnly),
		TotalRecords:   stats.Total,
		Present:        stats.Present,
		Late:           stats.Late,
		Absent:         stats.Absent,
		AttendanceRate: stats.AttendanceRate,
		ByDate:         byDate,
	}
}
