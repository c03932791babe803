package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/google/uuid"
)

// CatalogService maintains the courses and faculty members that exams and
// assignments reference.
type CatalogService struct {
	catalog     persistence.CatalogRepository
	retry       RetryPolicy
	idGenerator func() string
	logger      *slog.Logger
}

// NewCatalogService wires dependencies for catalog operations.
func NewCatalogService(catalog persistence.CatalogRepository, retry RetryPolicy, idGenerator func() string, logger *slog.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = func() string { return uuid.NewString() }
	}
	return &CatalogService{catalog: catalog, retry: retry, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// CreateCourse adds a course. Codes are stored upper case.
func (s *CatalogService) CreateCourse(ctx context.Context, params CreateCourseParams) (course Course, err error) {
	logger := s.loggerWith(ctx, "CreateCourse", "course_code", params.Code)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create course", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "course created")
	}()

	vErr := &ValidationError{}
	record := persistence.Course{
		Code:     strings.ToUpper(strings.TrimSpace(params.Code)),
		Name:     strings.TrimSpace(params.Name),
		Semester: params.Semester,
	}
	if record.Code == "" {
		vErr.add("code", "code is required")
	}
	if record.Name == "" {
		vErr.add("name", "name is required")
	}
	if record.Semester == 0 {
		record.Semester = 1
	}
	if record.Semester < 0 {
		vErr.add("semester", "semester must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	persisted, err := s.catalog.InsertCourse(ctx, record)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	course = Course(persisted)
	return
}

// ListCourses returns the catalog ordered by code. A positive semester keeps
// only the courses offered in that semester.
func (s *CatalogService) ListCourses(ctx context.Context, semester int) ([]Course, error) {
	if semester < 0 {
		vErr := &ValidationError{}
		vErr.add("semester", "semester must be a positive number")
		return nil, vErr
	}
	var records []persistence.Course
	err := s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.catalog.ListCourses(ctx, persistence.CourseFilter{Semester: semester})
		return listErr
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	courses := make([]Course, 0, len(records))
	for _, record := range records {
		courses = append(courses, Course(record))
	}
	return courses, nil
}

// CreateFacultyMember adds a staff profile with a generated UUID.
func (s *CatalogService) CreateFacultyMember(ctx context.Context, params CreateFacultyMemberParams) (member FacultyMember, err error) {
	logger := s.loggerWith(ctx, "CreateFacultyMember")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create faculty member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("faculty_id", member.ID).InfoContext(ctx, "faculty member created")
	}()

	vErr := &ValidationError{}
	record := persistence.FacultyMember{
		ID:    s.idGenerator(),
		Name:  strings.TrimSpace(params.Name),
		Email: strings.ToLower(strings.TrimSpace(params.Email)),
	}
	if record.Name == "" {
		vErr.add("name", "name is required")
	}
	if record.Email == "" {
		vErr.add("email", "email is required")
	} else if _, parseErr := mail.ParseAddress(record.Email); parseErr != nil {
		vErr.add("email", "email must be a valid address")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	persisted, err := s.catalog.InsertFacultyMember(ctx, record)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	member = FacultyMember(persisted)
	return
}

// ListFacultyMembers returns staff ordered by name.
func (s *CatalogService) ListFacultyMembers(ctx context.Context) ([]FacultyMember, error) {
	var records []persistence.FacultyMember
	err := s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.catalog.ListFacultyMembers(ctx)
		return listErr
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	members := make([]FacultyMember, 0, len(records))
	for _, record := range records {
		members = append(members, FacultyMember(record))
	}
	return members, nil
}
