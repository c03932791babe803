package application

import (
	"context"
	"sync"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

// fastRetry keeps retry tests quick.
var fastRetry = RetryPolicy{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}

type examRepoStub struct {
	mu          sync.Mutex
	exams       []persistence.Exam
	inserted    []persistence.Exam
	insertTries int
	listCalls   int
	listErrs    []error
	insertErr   error
	updateErr   error
	lastPatch   persistence.ExamPatch
	deleteFlag  bool
	deleteErr   error
}

func (s *examRepoStub) ListExamsOnDate(ctx context.Context, date string) ([]persistence.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if len(s.listErrs) > 0 {
		err := s.listErrs[0]
		s.listErrs = s.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	var out []persistence.Exam
	for _, exam := range s.exams {
		if exam.ExamDate == date {
			out = append(out, exam)
		}
	}
	return out, nil
}

func (s *examRepoStub) ListExams(ctx context.Context, filter persistence.ExamFilter) ([]persistence.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []persistence.Exam
	for _, exam := range s.exams {
		if filter.ExamDate != "" && exam.ExamDate != filter.ExamDate {
			continue
		}
		if filter.CourseCode != "" && exam.CourseCode != filter.CourseCode {
			continue
		}
		out = append(out, exam)
	}
	return out, nil
}

func (s *examRepoStub) InsertExam(ctx context.Context, exam persistence.Exam) (persistence.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertTries++
	if s.insertErr != nil {
		return persistence.Exam{}, s.insertErr
	}
	s.inserted = append(s.inserted, exam)
	s.exams = append(s.exams, exam)
	return exam, nil
}

func (s *examRepoStub) GetExamByID(ctx context.Context, id string) (persistence.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, exam := range s.exams {
		if exam.ID == id {
			return exam, nil
		}
	}
	return persistence.Exam{}, persistence.ErrNotFound
}

func (s *examRepoStub) UpdateExam(ctx context.Context, id string, patch persistence.ExamPatch) (persistence.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPatch = patch
	if s.updateErr != nil {
		return persistence.Exam{}, s.updateErr
	}
	for i, exam := range s.exams {
		if exam.ID != id {
			continue
		}
		if patch.StartTime != nil {
			exam.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			exam.EndTime = *patch.EndTime
		}
		if patch.ExamDate != nil {
			exam.ExamDate = *patch.ExamDate
		}
		if patch.CourseCode != nil {
			exam.CourseCode = *patch.CourseCode
		}
		s.exams[i] = exam
		return exam, nil
	}
	return persistence.Exam{}, persistence.ErrNotFound
}

func (s *examRepoStub) DeleteExam(ctx context.Context, id string) (bool, error) {
	return s.deleteFlag, s.deleteErr
}

func (s *examRepoStub) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

// insertAttempts counts every InsertExam call, failed ones included.
func (s *examRepoStub) insertAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTries
}

type assignmentRepoStub struct {
	assignments []persistence.Assignment
	created     persistence.Assignment
	lastPatch   persistence.AssignmentPatch
	err         error
	deleted     bool
}

func (s *assignmentRepoStub) InsertAssignment(ctx context.Context, assignment persistence.Assignment) (persistence.Assignment, error) {
	if s.err != nil {
		return persistence.Assignment{}, s.err
	}
	s.created = assignment
	return assignment, nil
}

func (s *assignmentRepoStub) GetAssignmentByID(ctx context.Context, id string) (persistence.Assignment, error) {
	if s.err != nil {
		return persistence.Assignment{}, s.err
	}
	for _, assignment := range s.assignments {
		if assignment.ID == id {
			return assignment, nil
		}
	}
	return persistence.Assignment{}, persistence.ErrNotFound
}

func (s *assignmentRepoStub) ListAssignments(ctx context.Context, courseCode string) ([]persistence.Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []persistence.Assignment
	for _, assignment := range s.assignments {
		if courseCode == "" || assignment.CourseCode == courseCode {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (s *assignmentRepoStub) UpdateAssignment(ctx context.Context, id string, patch persistence.AssignmentPatch) (persistence.Assignment, error) {
	s.lastPatch = patch
	if s.err != nil {
		return persistence.Assignment{}, s.err
	}
	return persistence.Assignment{ID: id, Title: "updated"}, nil
}

func (s *assignmentRepoStub) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	return s.deleted, s.err
}

type catalogRepoStub struct {
	courses          []persistence.Course
	members          []persistence.FacultyMember
	createdCode      string
	createdEmail     string
	lastCourseFilter persistence.CourseFilter
	err              error
}

func (s *catalogRepoStub) InsertCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	if s.err != nil {
		return persistence.Course{}, s.err
	}
	s.createdCode = course.Code
	return course, nil
}

func (s *catalogRepoStub) ListCourses(ctx context.Context, filter persistence.CourseFilter) ([]persistence.Course, error) {
	s.lastCourseFilter = filter
	return s.courses, s.err
}

func (s *catalogRepoStub) InsertFacultyMember(ctx context.Context, member persistence.FacultyMember) (persistence.FacultyMember, error) {
	if s.err != nil {
		return persistence.FacultyMember{}, s.err
	}
	s.createdEmail = member.Email
	return member, nil
}

func (s *catalogRepoStub) ListFacultyMembers(ctx context.Context) ([]persistence.FacultyMember, error) {
	return s.members, s.err
}

type attendanceRepoStub struct {
	records    []persistence.AttendanceRecord
	inserted   []persistence.AttendanceRecord
	lastFilter persistence.AttendanceFilter
	listErr    error
	insertErr  error
}

func (s *attendanceRepoStub) InsertAttendance(ctx context.Context, record persistence.AttendanceRecord) (persistence.AttendanceRecord, error) {
	if s.insertErr != nil {
		return persistence.AttendanceRecord{}, s.insertErr
	}
	s.inserted = append(s.inserted, record)
	return record, nil
}

func (s *attendanceRepoStub) ListAttendance(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}
