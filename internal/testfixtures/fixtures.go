package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/persistence"
)

var (
	courseCounter     uint64
	facultyCounter    uint64
	examCounter       uint64
	assignmentCounter uint64
	attendanceCounter uint64
)

var referenceTime = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant fixtures are stamped with.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns ReferenceTime formatted as YYYY-MM-DD.
func ReferenceDate() string {
	return referenceTime.Format("2006-01-02")
}

// ----------------------------- Catalog fixtures -----------------------------

// CourseFixture is a deterministic catalog course.
type CourseFixture struct {
	Code      string
	Name      string
	Semester  int
	CreatedAt time.Time
}

// CourseOption configures a CourseFixture.
type CourseOption func(*CourseFixture)

// NewCourseFixture returns a course with a unique code such as "CS101".
func NewCourseFixture(opts ...CourseOption) CourseFixture {
	idx := atomic.AddUint64(&courseCounter, 1)
	fixture := CourseFixture{
		Code:      fmt.Sprintf("CS%d", 100+idx),
		Name:      fmt.Sprintf("Course %03d", idx),
		Semester:  1,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCourseCode overrides the generated code.
func WithCourseCode(code string) CourseOption {
	return func(f *CourseFixture) { f.Code = code }
}

// WithCourseName overrides the generated name.
func WithCourseName(name string) CourseOption {
	return func(f *CourseFixture) { f.Name = name }
}

// WithCourseSemester overrides the semester.
func WithCourseSemester(semester int) CourseOption {
	return func(f *CourseFixture) { f.Semester = semester }
}

// Persistence converts the fixture into a storage record.
func (f CourseFixture) Persistence() persistence.Course {
	return persistence.Course{Code: f.Code, Name: f.Name, Semester: f.Semester, CreatedAt: f.CreatedAt}
}

// Params converts the fixture into service input.
func (f CourseFixture) Params() application.CreateCourseParams {
	return application.CreateCourseParams{Code: f.Code, Name: f.Name, Semester: f.Semester}
}

// FacultyFixture is a deterministic staff profile.
type FacultyFixture struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// FacultyOption configures a FacultyFixture.
type FacultyOption func(*FacultyFixture)

// NewFacultyFixture returns a faculty member with a stable UUID.
func NewFacultyFixture(opts ...FacultyOption) FacultyFixture {
	idx := atomic.AddUint64(&facultyCounter, 1)
	fixture := FacultyFixture{
		ID:        StableID("faculty", idx),
		Name:      fmt.Sprintf("Lecturer %03d", idx),
		Email:     fmt.Sprintf("lecturer%03d@campus.example", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithFacultyID overrides the generated identifier.
func WithFacultyID(id string) FacultyOption {
	return func(f *FacultyFixture) { f.ID = id }
}

// WithFacultyEmail overrides the generated email address.
func WithFacultyEmail(email string) FacultyOption {
	return func(f *FacultyFixture) { f.Email = email }
}

// Persistence converts the fixture into a storage record.
func (f FacultyFixture) Persistence() persistence.FacultyMember {
	return persistence.FacultyMember{ID: f.ID, Name: f.Name, Email: f.Email, CreatedAt: f.CreatedAt}
}

// Params converts the fixture into service input.
func (f FacultyFixture) Params() application.CreateFacultyMemberParams {
	return application.CreateFacultyMemberParams{Name: f.Name, Email: f.Email}
}

// ----------------------------- Exam fixtures -----------------------------

// ExamFixture is a deterministic exam booking. Times are kept as text so
// tests can exercise the forms storage backends return.
type ExamFixture struct {
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

// ExamOption configures an ExamFixture.
type ExamOption func(*ExamFixture)

// NewExamFixture returns a 09:00-11:00 exam on the reference date.
func NewExamFixture(opts ...ExamOption) ExamFixture {
	idx := atomic.AddUint64(&examCounter, 1)
	fixture := ExamFixture{
		ID:         StableID("exam", idx),
		CourseCode: "CS101",
		ExamDate:   ReferenceDate(),
		StartTime:  "09:00:00",
		EndTime:    "11:00:00",
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithExamID overrides the generated identifier.
func WithExamID(id string) ExamOption {
	return func(f *ExamFixture) { f.ID = id }
}

// WithExamCourse sets the course code.
func WithExamCourse(code string) ExamOption {
	return func(f *ExamFixture) { f.CourseCode = code }
}

// WithExamGroup sets the student group.
func WithExamGroup(groupID string) ExamOption {
	return func(f *ExamFixture) { f.GroupID = &groupID }
}

// WithExamDate sets the exam date (YYYY-MM-DD).
func WithExamDate(date string) ExamOption {
	return func(f *ExamFixture) { f.ExamDate = date }
}

// WithExamTimes sets the start and end times as raw text.
func WithExamTimes(start, end string) ExamOption {
	return func(f *ExamFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithExamScheduledBy sets the scheduling faculty member.
func WithExamScheduledBy(id string) ExamOption {
	return func(f *ExamFixture) { f.ScheduledBy = &id }
}

// Persistence converts the fixture into a storage record.
func (f ExamFixture) Persistence() persistence.Exam {
	return persistence.Exam{
		ID:          f.ID,
		CourseCode:  f.CourseCode,
		GroupID:     copyStringPtr(f.GroupID),
		ExamDate:    f.ExamDate,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		ScheduledBy: copyStringPtr(f.ScheduledBy),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Params converts the fixture into a scheduling request.
func (f ExamFixture) Params() application.ScheduleExamParams {
	params := application.ScheduleExamParams{
		CourseCode: f.CourseCode,
		ExamDate:   f.ExamDate,
		StartTime:  f.StartTime,
		EndTime:    f.EndTime,
	}
	if f.GroupID != nil {
		params.GroupID = *f.GroupID
	}
	if f.ScheduledBy != nil {
		params.ScheduledBy = *f.ScheduledBy
	}
	return params
}

// ----------------------------- Assignment fixtures -----------------------------

// AssignmentFixture is a deterministic course assignment.
type AssignmentFixture struct {
	ID          string
	CourseCode  string
	Title       string
	Description *string
	DueDate     time.Time
	AssignedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignmentOption configures an AssignmentFixture.
type AssignmentOption func(*AssignmentFixture)

// NewAssignmentFixture returns an assignment due a week after the reference time.
func NewAssignmentFixture(opts ...AssignmentOption) AssignmentFixture {
	idx := atomic.AddUint64(&assignmentCounter, 1)
	fixture := AssignmentFixture{
		ID:         StableID("assignment", idx),
		CourseCode: "CS101",
		Title:      fmt.Sprintf("Problem set %d", idx),
		DueDate:    referenceTime.AddDate(0, 0, 7),
		AssignedBy: StableID("faculty", 1),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAssignmentCourse sets the course code.
func WithAssignmentCourse(code string) AssignmentOption {
	return func(f *AssignmentFixture) { f.CourseCode = code }
}

// WithAssignmentAssignedBy sets the faculty member who set the work.
func WithAssignmentAssignedBy(id string) AssignmentOption {
	return func(f *AssignmentFixture) { f.AssignedBy = id }
}

// WithAssignmentDescription sets the description.
func WithAssignmentDescription(description string) AssignmentOption {
	return func(f *AssignmentFixture) { f.Description = &description }
}

// WithAssignmentDueDate sets the due date.
func WithAssignmentDueDate(t time.Time) AssignmentOption {
	return func(f *AssignmentFixture) { f.DueDate = t }
}

// Persistence converts the fixture into a storage record.
func (f AssignmentFixture) Persistence() persistence.Assignment {
	return persistence.Assignment{
		ID:          f.ID,
		CourseCode:  f.CourseCode,
		Title:       f.Title,
		Description: copyStringPtr(f.Description),
		DueDate:     f.DueDate,
		AssignedBy:  f.AssignedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Params converts the fixture into service input.
func (f AssignmentFixture) Params() application.CreateAssignmentParams {
	return application.CreateAssignmentParams{
		CourseCode:  f.CourseCode,
		Title:       f.Title,
		Description: copyStringPtr(f.Description),
		DueDate:     f.DueDate.UTC().Format(time.RFC3339),
		AssignedBy:  f.AssignedBy,
	}
}

// ----------------------------- Attendance fixtures -----------------------------

// AttendanceFixture is a deterministic attendance mark.
type AttendanceFixture struct {
	ID         string
	RegNumber  string
	CourseCode *string
	Status     string
	Timestamp  string
	CreatedAt  time.Time
}

// AttendanceOption configures an AttendanceFixture.
type AttendanceOption func(*AttendanceFixture)

// NewAttendanceFixture returns a "present" mark at the reference time.
func NewAttendanceFixture(opts ...AttendanceOption) AttendanceFixture {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	fixture := AttendanceFixture{
		ID:        StableID("attendance", idx),
		RegNumber: "REG-001",
		Status:    application.StatusPresent,
		Timestamp: referenceTime.Format(time.RFC3339),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAttendanceRegNumber sets the student registration number.
func WithAttendanceRegNumber(reg string) AttendanceOption {
	return func(f *AttendanceFixture) { f.RegNumber = reg }
}

// WithAttendanceStatus sets the status.
func WithAttendanceStatus(status string) AttendanceOption {
	return func(f *AttendanceFixture) { f.Status = status }
}

// WithAttendanceAt stamps the mark with t in RFC 3339 form.
func WithAttendanceAt(t time.Time) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.Timestamp = t.UTC().Format(time.RFC3339)
		f.CreatedAt = t
	}
}

// WithAttendanceTimestamp sets the raw timestamp text.
func WithAttendanceTimestamp(ts string) AttendanceOption {
	return func(f *AttendanceFixture) { f.Timestamp = ts }
}

// WithAttendanceCourse sets the course the mark belongs to.
func WithAttendanceCourse(code string) AttendanceOption {
	return func(f *AttendanceFixture) { f.CourseCode = &code }
}

// Persistence converts the fixture into a storage record.
func (f AttendanceFixture) Persistence() persistence.AttendanceRecord {
	return persistence.AttendanceRecord{
		ID:         f.ID,
		RegNumber:  f.RegNumber,
		CourseCode: copyStringPtr(f.CourseCode),
		Status:     f.Status,
		Timestamp:  f.Timestamp,
		CreatedAt:  f.CreatedAt,
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
