package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness exposes a migrated, file-backed SQLite storage for
// integration tests. The storage stamps rows with the harness clock.
type SQLiteHarness struct {
	Storage     *sqlite.Storage
	Exams       persistence.ExamRepository
	Assignments persistence.AssignmentRepository
	Catalog     persistence.CatalogRepository
	Attendance  persistence.AttendanceRepository
	Clock       *Clock

	cleanup func()
}

// Close releases the storage. It is also registered with tb.Cleanup.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database in a temporary directory.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	clock := NewClock(ReferenceTime())
	path := filepath.Join(tb.TempDir(), "scheduler.db")

	storage, err := sqlite.Open(path, sqlite.WithClock(clock.NowFunc()))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:     storage,
		Exams:       storage,
		Assignments: storage,
		Catalog:     storage,
		Attendance:  storage,
		Clock:       clock,
		cleanup: func() {
			_ = storage.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}

// SeedCourse inserts the course and fails the test on error.
func (h *SQLiteHarness) SeedCourse(tb testing.TB, course CourseFixture) persistence.Course {
	tb.Helper()
	stored, err := h.Catalog.InsertCourse(context.Background(), course.Persistence())
	if err != nil {
		tb.Fatalf("seed course %s: %v", course.Code, err)
	}
	return stored
}

// SeedFaculty inserts the faculty member and fails the test on error.
func (h *SQLiteHarness) SeedFaculty(tb testing.TB, member FacultyFixture) persistence.FacultyMember {
	tb.Helper()
	stored, err := h.Catalog.InsertFacultyMember(context.Background(), member.Persistence())
	if err != nil {
		tb.Fatalf("seed faculty %s: %v", member.ID, err)
	}
	return stored
}

// SeedExam inserts the exam as-is, bypassing clash detection.
func (h *SQLiteHarness) SeedExam(tb testing.TB, exam ExamFixture) persistence.Exam {
	tb.Helper()
	stored, err := h.Exams.InsertExam(context.Background(), exam.Persistence())
	if err != nil {
		tb.Fatalf("seed exam %s: %v", exam.ID, err)
	}
	return stored
}

// SeedAttendance inserts the attendance mark as-is.
func (h *SQLiteHarness) SeedAttendance(tb testing.TB, record AttendanceFixture) persistence.AttendanceRecord {
	tb.Helper()
	stored, err := h.Attendance.InsertAttendance(context.Background(), record.Persistence())
	if err != nil {
		tb.Fatalf("seed attendance %s: %v", record.ID, err)
	}
	return stored
}
