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

type catalogService interface {
	CreateCourse(ctx context.Context, params application.CreateCourseParams) (application.Course, error)
	ListCourses(ctx context.Context, semester int) ([]application.Course, error)
	CreateFacultyMember(ctx context.Context, params application.CreateFacultyMemberParams) (application.FacultyMember, error)
	ListFacultyMembers(ctx context.Context) ([]application.FacultyMember, error)
}

// CatalogHandler serves the course and faculty directories.
type CatalogHandler struct {
	service   catalogService
	responder responder
	validator *requestValidator
	logger    *slog.Logger
}

func NewCatalogHandler(service catalogService, logger *slog.Logger) *CatalogHandler {
	base := defaultLogger(logger)
	return &CatalogHandler{service: service, responder: newResponder(base), validator: newRequestValidator(), logger: base}
}

func (h *CatalogHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CatalogHandler", operation, attrs...)
}

func (h *CatalogHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "CreateCourse", "course_code", req.Code)
	course, err := h.service.CreateCourse(r.Context(), application.CreateCourseParams{
		Code:     req.Code,
		Name:     req.Name,
		Semester: req.Semester,
	})
	if err != nil {
		logServiceError(r.Context(), logger, "course creation failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "course created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, courseResponse{Course: courseDTO(course)})
}

func (h *CatalogHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	semester := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("semester")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("semester must be an integer"))
			return
		}
		semester = parsed
	}

	courses, err := h.service.ListCourses(r.Context(), semester)
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "ListCourses"), "course list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]courseDTO, 0, len(courses))
	for _, course := range courses {
		out = append(out, courseDTO(course))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCoursesResponse{Courses: out})
}

func (h *CatalogHandler) CreateFacultyMember(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createFacultyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if fields := h.validator.check(req); fields != nil {
		h.responder.writeValidation(r.Context(), w, fields)
		return
	}

	logger := h.log(r.Context(), "CreateFacultyMember")
	member, err := h.service.CreateFacultyMember(r.Context(), application.CreateFacultyMemberParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		logServiceError(r.Context(), logger, "faculty creation failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("faculty_id", member.ID).InfoContext(r.Context(), "faculty member created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, facultyResponse{Faculty: toFacultyDTO(member)})
}

func (h *CatalogHandler) ListFacultyMembers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	members, err := h.service.ListFacultyMembers(r.Context())
	if err != nil {
		logServiceError(r.Context(), h.log(r.Context(), "ListFacultyMembers"), "faculty list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]facultyDTO, 0, len(members))
	for _, member := range members {
		out = append(out, toFacultyDTO(member))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listFacultyResponse{Faculty: out})
}

type createCourseRequest struct {
	Code     string `json:"code" validate:"required,max=20"`
	Name     string `json:"name" validate:"required"`
	Semester int    `json:"semester" validate:"gte=0"`
}

type createFacultyRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type courseResponse struct {
	Course courseDTO `json:"course"`
}

type listCoursesResponse struct {
	Courses []courseDTO `json:"courses"`
}

// courseDTO mirrors application.Course so it converts directly.
type courseDTO struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Semester  int       `json:"semester"`
	CreatedAt time.Time `json:"created_at"`
}

type facultyResponse struct {
	Faculty facultyDTO `json:"faculty"`
}

type listFacultyResponse struct {
	Faculty []facultyDTO `json:"faculty"`
}

type facultyDTO struct {
	ID    string `json:"faculty_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toFacultyDTO(member application.FacultyMember) facultyDTO {
	return facultyDTO{ID: member.ID, Name: member.Name, Email: member.Email}
}
