package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type examService interface {
	ScheduleExam(ctx context.Context, params application.ScheduleExamParams) (application.Exam, error)
	GetExam(ctx context.Context, id string) (application.Exam, error)
	ListExams(ctx context.Context, params application.ListExamsParams) ([]application.Exam, error)
	UpdateExam(ctx context.Context, params application.UpdateExamParams) (application.Exam, error)
	DeleteExam(ctx context.Context, id string) error
}

// ExamHandler serves exam scheduling endpoints.
type ExamHandler struct {
	service   examService
	responder responder
	validator *requestValidator
	logger    *slog.Logger
}

func NewExamHandler(service examService, logger *slog.Logger) *ExamHandler {
	base := defaultLogger(logger)
	return &ExamHandler{service: service, responder: newResponder(base), validator: newRequestValidator(), logger: base}
}

func (h *ExamHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ExamHandler", operation, attrs...)
}

// Schedule books an exam after checking it against the existing timetable.
func (h *ExamHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Schedule", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode exam request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "Schedule", "course_code", req.CourseCode, "exam_date", req.ExamDate)

	exam, err := h.service.ScheduleExam(r.Context(), req.toParams())
	if err != nil {
		logServiceError(r.Context(), logger, "exam scheduling failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("exam_id", exam.ID).InfoContext(r.Context(), "exam scheduled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleExamResponse{
		Message: "exam scheduled successfully",
		Exam:    toExamDTO(exam),
	})
}

// List returns exams filtered by the date, course_code and group_id query parameters.
func (h *ExamHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.ListExamsParams{
		Date:       strings.TrimSpace(query.Get("date")),
		CourseCode: strings.TrimSpace(query.Get("course_code")),
		GroupID:    strings.TrimSpace(query.Get("group_id")),
	}
	logger := h.log(r.Context(), "List", "date", params.Date, "course_code", params.CourseCode)

	exams, err := h.service.ListExams(r.Context(), params)
	if err != nil {
		logServiceError(r.Context(), logger, "exam list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(exams)).InfoContext(r.Context(), "exams listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listExamsResponse{Exams: toExamDTOs(exams)})
}

func (h *ExamHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	examID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(examID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	exam, err := h.service.GetExam(r.Context(), examID)
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "Get", "exam_id", examID), "exam lookup failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, examResponse{Exam: toExamDTO(exam)})
}

func (h *ExamHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	examID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(examID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing exam id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	var req updateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "exam_id", examID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode exam update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "Update", "exam_id", examID)

	exam, err := h.service.UpdateExam(r.Context(), req.toParams(examID))
	if err != nil {
		logServiceError(r.Context(), logger, "exam update failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "exam updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, examResponse{Exam: toExamDTO(exam)})
}

func (h *ExamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	examID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(examID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing exam id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	logger := h.log(r.Context(), "Delete", "exam_id", examID)
	if err := h.service.DeleteExam(r.Context(), examID); err != nil {
		logServiceError(r.Context(), logger, "exam delete failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "exam deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Times are passed through as text so the service can report malformed
// values with their own error code.
type scheduleExamRequest struct {
	CourseCode  string `json:"course_code" validate:"required"`
	GroupID     string `json:"group_id" validate:"omitempty,uuid"`
	ExamDate    string `json:"exam_date" validate:"required"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	ScheduledBy string `json:"scheduled_by" validate:"omitempty,uuid"`
}

func (r scheduleExamRequest) toParams() application.ScheduleExamParams {
	return application.ScheduleExamParams{
		CourseCode:  strings.TrimSpace(r.CourseCode),
		GroupID:     strings.TrimSpace(r.GroupID),
		ExamDate:    strings.TrimSpace(r.ExamDate),
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		ScheduledBy: strings.TrimSpace(r.ScheduledBy),
	}
}

type updateExamRequest struct {
	CourseCode  *string `json:"course_code"`
	GroupID     *string `json:"group_id" validate:"omitempty,uuid"`
	ExamDate    *string `json:"exam_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	ScheduledBy *string `json:"scheduled_by" validate:"omitempty,uuid"`
}

func (r updateExamRequest) toParams(examID string) application.UpdateExamParams {
	return application.UpdateExamParams{
		ExamID:      examID,
		CourseCode:  r.CourseCode,
		GroupID:     r.GroupID,
		ExamDate:    r.ExamDate,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		ScheduledBy: r.ScheduledBy,
	}
}

type scheduleExamResponse struct {
	Message string  `json:"message"`
	Exam    examDTO `json:"exam"`
}

type examResponse struct {
	Exam examDTO `json:"exam"`
}

type listExamsResponse struct {
	Exams []examDTO `json:"exams"`
}

type examDTO struct {
	ID          string  `json:"exam_id"`
	CourseCode  string  `json:"course_code"`
	GroupID     *string `json:"group_id,omitempty"`
	ExamDate    string  `json:"exam_date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	ScheduledBy *string `json:"scheduled_by,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toExamDTO(exam application.Exam) examDTO {
	return examDTO{
		ID:          exam.ID,
		CourseCode:  exam.CourseCode,
		GroupID:     exam.GroupID,
		ExamDate:    exam.ExamDate.Format(time.DateOnly),
		StartTime:   exam.Start.String(),
		EndTime:     exam.End.String(),
		ScheduledBy: exam.ScheduledBy,
		CreatedAt:   exam.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   exam.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toExamDTOs(exams []application.Exam) []examDTO {
	out := make([]examDTO, 0, len(exams))
	for _, exam := range exams {
		out = append(out, toExamDTO(exam))
	}
	return out
}
