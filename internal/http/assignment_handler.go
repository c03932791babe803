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

type assignmentService interface {
	CreateAssignment(ctx context.Context, params application.CreateAssignmentParams) (application.Assignment, error)
	GetAssignment(ctx context.Context, id string) (application.Assignment, error)
	ListAssignments(ctx context.Context, courseCode string) ([]application.Assignment, error)
	UpdateAssignment(ctx context.Context, params application.UpdateAssignmentParams) (application.Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

type AssignmentHandler struct {
	service   assignmentService
	responder responder
	validator *requestValidator
	logger    *slog.Logger
}

func NewAssignmentHandler(service assignmentService, logger *slog.Logger) *AssignmentHandler {
	base := defaultLogger(logger)
	return &AssignmentHandler{service: service, responder: newResponder(base), validator: newRequestValidator(), logger: base}
}

func (h *AssignmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssignmentHandler", operation, attrs...)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "Create", "course_code", req.CourseCode)

	assignment, err := h.service.CreateAssignment(r.Context(), application.CreateAssignmentParams{
		CourseCode:  req.CourseCode,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssignedBy:  req.AssignedBy,
	})
	if err != nil {
		logServiceError(r.Context(), logger, "assignment creation failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assignment_id", assignment.ID).InfoContext(r.Context(), "assignment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	courseCode := strings.TrimSpace(r.URL.Query().Get("course_code"))
	logger := h.log(r.Context(), "List", "course_code", courseCode)

	assignments, err := h.service.ListAssignments(r.Context(), courseCode)
	if err != nil {
		logServiceError(r.Context(), logger, "assignment list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(assignments)).InfoContext(r.Context(), "assignments listed")
	out := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, toAssignmentDTO(assignment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssignmentsResponse{Assignments: out})
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	assignment, err := h.service.GetAssignment(r.Context(), id)
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "Get", "assignment_id", id), "assignment lookup failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	var req updateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "assignment_id", id, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "assignment_id", id)

	assignment, err := h.service.UpdateAssignment(r.Context(), application.UpdateAssignmentParams{
		AssignmentID: id,
		CourseCode:   req.CourseCode,
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		AssignedBy:   req.AssignedBy,
	})
	if err != nil {
		logServiceError(r.Context(), logger, "assignment update failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "assignment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	logger := h.log(r.Context(), "Delete", "assignment_id", id)
	if err := h.service.DeleteAssignment(r.Context(), id); err != nil {
		logServiceError(r.Context(), logger, "assignment delete failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "assignment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createAssignmentRequest struct {
	CourseCode  string  `json:"course_code" validate:"required"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	DueDate     string  `json:"due_date" validate:"required"`
	AssignedBy  string  `json:"assigned_by" validate:"required,uuid"`
}

type updateAssignmentRequest struct {
	CourseCode  *string `json:"course_code"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	AssignedBy  *string `json:"assigned_by"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type listAssignmentsResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

type assignmentDTO struct {
	ID          string  `json:"assignment_id"`
	CourseCode  string  `json:"course_code"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	DueDate     string  `json:"due_date"`
	AssignedBy  string  `json:"assigned_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toAssignmentDTO(assignment application.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:          assignment.ID,
		CourseCode:  assignment.CourseCode,
		Title:       assignment.Title,
		Description: assignment.Description,
		DueDate:     assignment.DueDate.UTC().Format(time.RFC3339),
		AssignedBy:  assignment.AssignedBy,
		CreatedAt:   assignment.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   assignment.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
