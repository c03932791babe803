package application

import (
	"time"

	"github.com/example/campus-scheduler/internal/timeofday"
)

// ClashScope selects which exams compete for the same time slot.
type ClashScope string

const (
	// ScopeCourse compares the candidate with exams of the same course.
	ScopeCourse ClashScope = "course"
	// ScopeGroup compares the candidate with exams of the same student group.
	ScopeGroup ClashScope = "group"
)

// Valid reports whether the scope is one of the supported values.
func (s ClashScope) Valid() bool {
	return s == ScopeCourse || s == ScopeGroup
}

// Exam is a scheduled exam with normalized times.
type Exam struct {
	ID          string
	CourseCode  string
	GroupID     *string
	ExamDate    time.Time
	Start       timeofday.TimeOfDay
	End         timeofday.TimeOfDay
	ScheduledBy *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScheduleExamParams carries a request to book an exam. StartTime and
// EndTime accept anything timeofday.Normalize accepts.
type ScheduleExamParams struct {
	CourseCode  string
	GroupID     string
	ExamDate    string
	StartTime   any
	EndTime     any
	ScheduledBy string
}

// UpdateExamParams carries a partial exam update; nil fields are unchanged.
type UpdateExamParams struct {
	ExamID      string
	CourseCode  *string
	GroupID     *string
	ExamDate    *string
	StartTime   *string
	EndTime     *string
	ScheduledBy *string
}

// ListExamsParams narrows exam listings.
type ListExamsParams struct {
	Date       string
	CourseCode string
	GroupID    string
}

// Assignment is a piece of coursework set by a faculty member.
type Assignment struct {
	ID          string
	CourseCode  string
	Title       string
	Description *string
	DueDate     time.Time
	AssignedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateAssignmentParams carries a new assignment. DueDate accepts a date or
// a full timestamp.
type CreateAssignmentParams struct {
	CourseCode  string
	Title       string
	Description *string
	DueDate     string
	AssignedBy  string
}

// UpdateAssignmentParams carries a partial assignment update.
type UpdateAssignmentParams struct {
	AssignmentID string
	CourseCode   *string
	Title        *string
	Description  *string
	DueDate      *string
	AssignedBy   *string
}

// Course is a catalog entry.
type Course struct {
	Code      string
	Name      string
	Semester  int
	CreatedAt time.Time
}

// CreateCourseParams carries a new course.
type CreateCourseParams struct {
	Code     string
	Name     string
	Semester int
}

// FacultyMember is a staff profile.
type FacultyMember struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// CreateFacultyMemberParams carries a new staff profile.
type CreateFacultyMemberParams struct {
	Name  string
	Email string
}

// Attendance statuses.
const (
	StatusPresent = "present"
	StatusLate    = "late"
	StatusAbsent  = "absent"
)

// AttendanceRecord is a single attendance mark.
type AttendanceRecord struct {
	ID         string
	RegNumber  string
	CourseCode *string
	Status     string
	Timestamp  string
	CreatedAt  time.Time
}

// MarkAttendanceParams carries a request to mark attendance. Status defaults
// to present.
type MarkAttendanceParams struct {
	RegNumber  string
	CourseCode string
	Status     string
}

// Eligibility reports whether a student may mark attendance now.
type Eligibility struct {
	Allowed          bool
	Message          string
	LastMarked       *time.Time
	NextAllowed      *time.Time
	MinutesRemaining int
}

// AttendanceStats summarises a student's attendance over a trailing window.
type AttendanceStats struct {
	RegNumber      string
	From           time.Time
	To             time.Time
	Total          int
	Present        int
	Late           int
	Absent         int
	AttendanceRate float64
	ByDate         map[string][]AttendanceRecord
}
