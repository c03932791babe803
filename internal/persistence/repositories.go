package persistence

import "context"

// ExamRepository stores exam bookings.
type ExamRepository interface {
	ListExamsOnDate(ctx context.Context, date string) ([]Exam, error)
	ListExams(ctx context.Context, filter ExamFilter) ([]Exam, error)
	InsertExam(ctx context.Context, exam Exam) (Exam, error)
	GetExamByID(ctx context.Context, id string) (Exam, error)
	UpdateExam(ctx context.Context, id string, patch ExamPatch) (Exam, error)
	DeleteExam(ctx context.Context, id string) (bool, error)
}

// AssignmentRepository stores course assignments.
type AssignmentRepository interface {
	InsertAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, courseCode string) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, id string, patch AssignmentPatch) (Assignment, error)
	DeleteAssignment(ctx context.Context, id string) (bool, error)
}

// CatalogRepository stores the courses and faculty members that exams and
// assignments reference.
type CatalogRepository interface {
	InsertCourse(ctx context.Context, course Course) (Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]Course, error)
	InsertFacultyMember(ctx context.Context, member FacultyMember) (FacultyMember, error)
	ListFacultyMembers(ctx context.Context) ([]FacultyMember, error)
}

// AttendanceRepository stores attendance marks.
type AttendanceRepository interface {
	InsertAttendance(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)
}

// Storage is the full persistence surface plus lifecycle hooks.
type Storage interface {
	ExamRepository
	AssignmentRepository
	CatalogRepository
	AttendanceRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
