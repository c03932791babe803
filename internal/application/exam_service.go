package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/scheduler"
	"github.com/example/campus-scheduler/internal/timeofday"
	"github.com/google/uuid"
)

// ExamServiceConfig tunes clash detection.
type ExamServiceConfig struct {
	Scope ClashScope
	Retry RetryPolicy
}

// ExamService books exams without overlapping other exams in the same scope.
type ExamService struct {
	exams       persistence.ExamRepository
	scope       ClashScope
	retry       RetryPolicy
	locks       *scopeLocks
	idGenerator func() string
	logger      *slog.Logger
}

// NewExamService wires dependencies for exam operations. A nil idGenerator
// produces random UUIDs; an invalid scope falls back to ScopeCourse.
func NewExamService(exams persistence.ExamRepository, cfg ExamServiceConfig, idGenerator func() string, logger *slog.Logger) *ExamService {
	if idGenerator == nil {
		idGenerator = func() string { return uuid.NewString() }
	}
	if !cfg.Scope.Valid() {
		cfg.Scope = ScopeCourse
	}
	return &ExamService{
		exams:       exams,
		scope:       cfg.Scope,
		retry:       cfg.Retry.normalized(),
		locks:       newScopeLocks(),
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// Scope returns the configured clash scope.
func (s *ExamService) Scope() ClashScope {
	return s.scope
}

func (s *ExamService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ExamService", operation, attrs...)
}

type examRequest struct {
	courseCode  string
	groupID     *string
	date        string
	interval    scheduler.Interval
	scheduledBy *string
}

// ScheduleExam validates the request, checks the candidate slot against the
// exams already booked in the same scope on the same date and persists it
// when no clash is found. Overlap uses half-open intervals, so an exam may
// start exactly when another ends.
func (s *ExamService) ScheduleExam(ctx context.Context, params ScheduleExamParams) (exam Exam, err error) {
	if s == nil {
		err = fmt.Errorf("ExamService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleExam",
		"course_code", params.CourseCode,
		"exam_date", params.ExamDate,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule exam", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("exam_id", exam.ID).InfoContext(ctx, "exam scheduled")
	}()

	req, err := s.validateScheduleRequest(params)
	if err != nil {
		return
	}

	key := req.courseCode
	if s.scope == ScopeGroup {
		key = *req.groupID
	}

	unlock, err := s.locks.acquire(ctx, string(s.scope)+"|"+key+"|"+req.date)
	if err != nil {
		return
	}
	defer unlock()

	var existing []persistence.Exam
	err = s.retry.do(ctx, func() error {
		var listErr error
		existing, listErr = s.exams.ListExamsOnDate(ctx, req.date)
		return listErr
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	slots, err := s.slotsInScope(existing, key)
	if err != nil {
		return
	}

	if clash, found := scheduler.FirstClash(req.interval, slots); found {
		logger.InfoContext(ctx, "exam clash detected", "conflicting_exam_id", clash.ID)
		err = &ClashError{
			Scope: s.scope,
			Key:   key,
			Date:  req.date,
			Start: req.interval.Start,
			End:   req.interval.End,
		}
		return
	}

	record := persistence.Exam{
		ID:          s.idGenerator(),
		CourseCode:  req.courseCode,
		GroupID:     req.groupID,
		ExamDate:    req.date,
		StartTime:   req.interval.Start.String(),
		EndTime:     req.interval.End.String(),
		ScheduledBy: req.scheduledBy,
	}

	persisted, err := s.exams.InsertExam(ctx, record)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	exam, err = toExam(persisted)
	return
}

func (s *ExamService) validateScheduleRequest(params ScheduleExamParams) (examRequest, error) {
	vErr := &ValidationError{}
	req := examRequest{courseCode: strings.TrimSpace(params.CourseCode)}

	start, err := timeofday.Normalize(params.StartTime)
	if err != nil {
		return examRequest{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := timeofday.Normalize(params.EndTime)
	if err != nil {
		return examRequest{}, fmt.Errorf("end_time: %w", err)
	}
	req.interval = scheduler.Interval{Start: start, End: end}
	if req.interval.Empty() {
		vErr.add("end_time", "end_time must be after start_time")
	}

	if req.courseCode == "" {
		vErr.add("course_code", "course_code is required")
	}

	if date, err := timeofday.ParseDate(params.ExamDate); err != nil {
		vErr.add("exam_date", "exam_date must be a YYYY-MM-DD date")
	} else {
		req.date = timeofday.FormatDate(date)
	}

	req.groupID = canonicalUUID(vErr, "group_id", params.GroupID)
	req.scheduledBy = canonicalUUID(vErr, "scheduled_by", params.ScheduledBy)

	if s.scope == ScopeGroup && req.groupID == nil && !vErr.hasField("group_id") {
		vErr.add("group_id", "group_id is required when clashes are checked per group")
	}

	if vErr.HasErrors() {
		return examRequest{}, vErr
	}
	return req, nil
}

// slotsInScope keeps the exams sharing key under the configured scope. A
// stored time that cannot be normalized aborts the check rather than being
// treated as free time.
func (s *ExamService) slotsInScope(exams []persistence.Exam, key string) ([]scheduler.Slot, error) {
	slots := make([]scheduler.Slot, 0, len(exams))
	for _, exam := range exams {
		switch s.scope {
		case ScopeGroup:
			if exam.GroupID == nil || *exam.GroupID != key {
				continue
			}
		default:
			if exam.CourseCode != key {
				continue
			}
		}

		start, err := timeofday.Normalize(exam.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: exam %s start_time: %v", ErrCorruptRecord, exam.ID, err)
		}
		end, err := timeofday.Normalize(exam.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: exam %s end_time: %v", ErrCorruptRecord, exam.ID, err)
		}
		slots = append(slots, scheduler.Slot{ID: exam.ID, Interval: scheduler.Interval{Start: start, End: end}})
	}
	return slots, nil
}

// GetExam returns a single exam.
func (s *ExamService) GetExam(ctx context.Context, id string) (Exam, error) {
	var record persistence.Exam
	err := s.retry.do(ctx, func() error {
		var getErr error
		record, getErr = s.exams.GetExamByID(ctx, id)
		return getErr
	})
	if err != nil {
		return Exam{}, mapRepoError(err)
	}
	return toExam(record)
}

// ListExams returns exams matching params ordered by date and start time.
func (s *ExamService) ListExams(ctx context.Context, params ListExamsParams) (exams []Exam, err error) {
	logger := s.loggerWith(ctx, "ListExams", "exam_date", params.Date, "course_code", params.CourseCode)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list exams", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(exams)).DebugContext(ctx, "exams listed")
	}()

	filter := persistence.ExamFilter{
		CourseCode: strings.TrimSpace(params.CourseCode),
		GroupID:    strings.TrimSpace(params.GroupID),
	}
	if params.Date != "" {
		date, parseErr := timeofday.ParseDate(params.Date)
		if parseErr != nil {
			vErr := &ValidationError{}
			vErr.add("date", "date must be a YYYY-MM-DD date")
			err = vErr
			return
		}
		filter.ExamDate = timeofday.FormatDate(date)
	}

	var records []persistence.Exam
	err = s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.exams.ListExams(ctx, filter)
		return listErr
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	exams = make([]Exam, 0, len(records))
	for _, record := range records {
		converted, convErr := toExam(record)
		if convErr != nil {
			err = convErr
			return nil, err
		}
		exams = append(exams, converted)
	}
	return exams, nil
}

// UpdateExam applies a partial update. Supplied times and dates are
// normalized before storage but the result is not re-checked for clashes.
func (s *ExamService) UpdateExam(ctx context.Context, params UpdateExamParams) (exam Exam, err error) {
	logger := s.loggerWith(ctx, "UpdateExam", "exam_id", params.ExamID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update exam", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "exam updated")
	}()

	patch, err := s.buildPatch(ctx, params)
	if err != nil {
		return
	}

	updated, err := s.exams.UpdateExam(ctx, params.ExamID, patch)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	exam, err = toExam(updated)
	return
}

func (s *ExamService) buildPatch(ctx context.Context, params UpdateExamParams) (persistence.ExamPatch, error) {
	vErr := &ValidationError{}
	var patch persistence.ExamPatch

	if params.CourseCode != nil {
		course := strings.TrimSpace(*params.CourseCode)
		if course == "" {
			vErr.add("course_code", "course_code cannot be empty")
		}
		patch.CourseCode = &course
	}
	if params.ExamDate != nil {
		date, err := timeofday.ParseDate(*params.ExamDate)
		if err != nil {
			vErr.add("exam_date", "exam_date must be a YYYY-MM-DD date")
		} else {
			formatted := timeofday.FormatDate(date)
			patch.ExamDate = &formatted
		}
	}
	if params.GroupID != nil {
		patch.GroupID = optionalUUID(vErr, "group_id", *params.GroupID)
	}
	if params.ScheduledBy != nil {
		patch.ScheduledBy = optionalUUID(vErr, "scheduled_by", *params.ScheduledBy)
	}

	var start, end *timeofday.TimeOfDay
	if params.StartTime != nil {
		t, err := timeofday.Normalize(*params.StartTime)
		if err != nil {
			return persistence.ExamPatch{}, fmt.Errorf("start_time: %w", err)
		}
		start = &t
		formatted := t.String()
		patch.StartTime = &formatted
	}
	if params.EndTime != nil {
		t, err := timeofday.Normalize(*params.EndTime)
		if err != nil {
			return persistence.ExamPatch{}, fmt.Errorf("end_time: %w", err)
		}
		end = &t
		formatted := t.String()
		patch.EndTime = &formatted
	}

	if vErr.HasErrors() {
		return persistence.ExamPatch{}, vErr
	}

	if start != nil || end != nil {
		if start == nil || end == nil {
			current, err := s.GetExam(ctx, params.ExamID)
			if err != nil {
				return persistence.ExamPatch{}, err
			}
			if start == nil {
				start = &current.Start
			}
			if end == nil {
				end = &current.End
			}
		}
		if !start.Before(*end) {
			vErr.add("end_time", "end_time must be after start_time")
			return persistence.ExamPatch{}, vErr
		}
	}

	return patch, nil
}

// DeleteExam removes an exam, returning ErrNotFound when it does not exist.
func (s *ExamService) DeleteExam(ctx context.Context, id string) (err error) {
	logger := s.loggerWith(ctx, "DeleteExam", "exam_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete exam", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "exam deleted")
	}()

	deleted, err := s.exams.DeleteExam(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !deleted {
		err = ErrNotFound
	}
	return
}

func toExam(record persistence.Exam) (Exam, error) {
	date, err := timeofday.ParseDate(record.ExamDate)
	if err != nil {
		return Exam{}, fmt.Errorf("%w: exam %s exam_date: %v", ErrCorruptRecord, record.ID, err)
	}
	start, err := timeofday.Normalize(record.StartTime)
	if err != nil {
		return Exam{}, fmt.Errorf("%w: exam %s start_time: %v", ErrCorruptRecord, record.ID, err)
	}
	end, err := timeofday.Normalize(record.EndTime)
	if err != nil {
		return Exam{}, fmt.Errorf("%w: exam %s end_time: %v", ErrCorruptRecord, record.ID, err)
	}
	return Exam{
		ID:          record.ID,
		CourseCode:  record.CourseCode,
		GroupID:     copyStringPtr(record.GroupID),
		ExamDate:    date,
		Start:       start,
		End:         end,
		ScheduledBy: copyStringPtr(record.ScheduledBy),
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}, nil
}

// canonicalUUID parses an optional UUID, recording a validation error when
// it is malformed. Empty input yields nil.
func canonicalUUID(vErr *ValidationError, field, raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		vErr.add(field, field+" must be a UUID")
		return nil
	}
	canonical := id.String()
	return &canonical
}

// optionalUUID is canonicalUUID for patches, where an empty string clears
// the column.
func optionalUUID(vErr *ValidationError, field, raw string) *string {
	if strings.TrimSpace(raw) == "" {
		empty := ""
		return &empty
	}
	return canonicalUUID(vErr, field, raw)
}

func (v *ValidationError) hasField(field string) bool {
	_, ok := v.FieldErrors[field]
	return ok
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}
