package persistence

import "time"

// Exam is the storage representation of a scheduled exam. Dates are kept as
// YYYY-MM-DD strings and times as the text the backend returns, which the
// application normalizes before comparing.
type Exam struct {
	ID          string
	CourseCode  string
	GroupID     *string
	ExamDate    string
	StartTime   string
	EndTime     string
	ScheduledBy *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExamPatch carries the columns to change on an exam; nil fields are left untouched.
type ExamPatch struct {
	CourseCode  *string
	GroupID     *string
	ExamDate    *string
	StartTime   *string
	EndTime     *string
	ScheduledBy *string
}

// Empty reports whether the patch changes nothing.
func (p ExamPatch) Empty() bool {
	return p.CourseCode == nil && p.GroupID == nil && p.ExamDate == nil &&
		p.StartTime == nil && p.EndTime == nil && p.ScheduledBy == nil
}

// ExamFilter narrows exam listings. Zero values match everything.
type ExamFilter struct {
	ExamDate   string
	CourseCode string
	GroupID    string
}

// Assignment is the storage representation of a course assignment.
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

// AssignmentPatch carries the columns to change on an assignment.
type AssignmentPatch struct {
	CourseCode  *string
	Title       *string
	Description *string
	DueDate     *time.Time
	AssignedBy  *string
}

// Empty reports whether the patch changes nothing.
func (p AssignmentPatch) Empty() bool {
	return p.CourseCode == nil && p.Title == nil && p.Description == nil && p.DueDate == nil && p.AssignedBy == nil
}

// Course is a catalog entry referenced by exams and assignments.
type Course struct {
	Code      string
	Name      string
	Semester  int
	CreatedAt time.Time
}

// CourseFilter narrows course listings. A zero Semester matches every semester.
type CourseFilter struct {
	Semester int
}

// FacultyMember is a staff profile allowed to schedule exams and set assignments.
type FacultyMember struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// AttendanceRecord is a single attendance mark. Timestamp keeps the text
// representation written by the marking client.
type AttendanceRecord struct {
	ID         string
	RegNumber  string
	CourseCode *string
	Status     string
	Timestamp  string
	CreatedAt  time.Time
}

// AttendanceFilter narrows attendance listings to one student and an optional
// inclusive date range given as YYYY-MM-DD strings.
type AttendanceFilter struct {
	RegNumber string
	From      string
	To        string
}
