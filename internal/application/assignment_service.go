package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/timeofday"
	"github.com/google/uuid"
)

// AssignmentService manages coursework assignments.
type AssignmentService struct {
	assignments persistence.AssignmentRepository
	retry       RetryPolicy
	idGenerator func() string
	logger      *slog.Logger
}

// NewAssignmentService wires dependencies for assignment operations.
func NewAssignmentService(assignments persistence.AssignmentRepository, retry RetryPolicy, idGenerator func() string, logger *slog.Logger) *AssignmentService {
	if idGenerator == nil {
		idGenerator = func() string { return uuid.NewString() }
	}
	return &AssignmentService{
		assignments: assignments,
		retry:       retry,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

func (s *AssignmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AssignmentService", operation, attrs...)
}

// CreateAssignment validates and stores a new assignment.
func (s *AssignmentService) CreateAssignment(ctx context.Context, params CreateAssignmentParams) (assignment Assignment, err error) {
	logger := s.loggerWith(ctx, "CreateAssignment", "course_code", params.CourseCode)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "assignment created")
	}()

	vErr := &ValidationError{}
	record := persistence.Assignment{
		ID:          s.idGenerator(),
		CourseCode:  strings.TrimSpace(params.CourseCode),
		Title:       strings.TrimSpace(params.Title),
		Description: trimmedOrNil(params.Description),
	}
	if record.CourseCode == "" {
		vErr.add("course_code", "course_code is required")
	}
	if record.Title == "" {
		vErr.add("title", "title is required")
	}
	if due, dueErr := parseDueDate(params.DueDate); dueErr != nil {
		vErr.add("due_date", dueErr.Error())
	} else {
		record.DueDate = due
	}
	if assignedBy := canonicalUUID(vErr, "assigned_by", params.AssignedBy); assignedBy != nil {
		record.AssignedBy = *assignedBy
	} else if !vErr.hasField("assigned_by") {
		vErr.add("assigned_by", "assigned_by is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	persisted, err := s.assignments.InsertAssignment(ctx, record)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	assignment = toAssignment(persisted)
	return
}

// GetAssignment returns a single assignment.
func (s *AssignmentService) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	var record persistence.Assignment
	err := s.retry.do(ctx, func() error {
		var getErr error
		record, getErr = s.assignments.GetAssignmentByID(ctx, id)
		return getErr
	})
	if err != nil {
		return Assignment{}, mapRepoError(err)
	}
	return toAssignment(record), nil
}

// ListAssignments returns assignments for courseCode, or all when empty.
func (s *AssignmentService) ListAssignments(ctx context.Context, courseCode string) ([]Assignment, error) {
	var records []persistence.Assignment
	err := s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.assignments.ListAssignments(ctx, strings.TrimSpace(courseCode))
		return listErr
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	assignments := make([]Assignment, 0, len(records))
	for _, record := range records {
		assignments = append(assignments, toAssignment(record))
	}
	return assignments, nil
}

// UpdateAssignment applies a partial update.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, params UpdateAssignmentParams) (assignment Assignment, err error) {
	logger := s.loggerWith(ctx, "UpdateAssignment", "assignment_id", params.AssignmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "assignment updated")
	}()

	vErr := &ValidationError{}
	var patch persistence.AssignmentPatch

	if params.CourseCode != nil {
		course := strings.TrimSpace(*params.CourseCode)
		if course == "" {
			vErr.add("course_code", "course_code cannot be empty")
		}
		patch.CourseCode = &course
	}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			vErr.add("title", "title cannot be empty")
		}
		patch.Title = &title
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		patch.Description = &description
	}
	if params.DueDate != nil {
		due, dueErr := parseDueDate(*params.DueDate)
		if dueErr != nil {
			vErr.add("due_date", dueErr.Error())
		} else {
			patch.DueDate = &due
		}
	}
	if params.AssignedBy != nil {
		fieldErr := &ValidationError{}
		patch.AssignedBy = canonicalUUID(fieldErr, "assigned_by", *params.AssignedBy)
		if patch.AssignedBy == nil && !fieldErr.HasErrors() {
			fieldErr.add("assigned_by", "assigned_by cannot be empty")
		}
		vErr.merge(fieldErr)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated, err := s.assignments.UpdateAssignment(ctx, params.AssignmentID, patch)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	assignment = toAssignment(updated)
	return
}

// DeleteAssignment removes an assignment, returning ErrNotFound when absent.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id string) (err error) {
	logger := s.loggerWith(ctx, "DeleteAssignment", "assignment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "assignment deleted")
	}()

	deleted, err := s.assignments.DeleteAssignment(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !deleted {
		err = ErrNotFound
	}
	return
}

// parseDueDate accepts a full timestamp or a bare date, which means the end
// of that day in UTC.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("due_date is required")
	}
	if len(raw) == len(time.DateOnly) {
		date, err := timeofday.ParseDate(raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("due_date must be a date or timestamp")
		}
		return date.Add(timeofday.Day - time.Second), nil
	}
	due, err := timeofday.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("due_date must be a date or timestamp")
	}
	return due.UTC(), nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toAssignment(record persistence.Assignment) Assignment {
	return Assignment{
		ID:          record.ID,
		CourseCode:  record.CourseCode,
		Title:       record.Title,
		Description: copyStringPtr(record.Description),
		DueDate:     record.DueDate,
		AssignedBy:  record.AssignedBy,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
