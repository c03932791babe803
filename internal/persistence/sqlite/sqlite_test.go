package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
)

var referenceTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := Open(filepath.Join(t.TempDir(), "scheduler.db"), WithClock(func() time.Time { return referenceTime }))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate storage: %v", err)
	}
	return storage
}

func seedCatalog(t *testing.T, s *Storage) {
	t.Helper()

	ctx := context.Background()
	if _, err := s.InsertCourse(ctx, persistence.Course{Code: "CS101", Name: "Programming", Semester: 1}); err != nil {
		t.Fatalf("insert course: %v", err)
	}
	if _, err := s.InsertFacultyMember(ctx, persistence.FacultyMember{ID: "faculty-1", Name: "Ada", Email: "ada@example.edu"}); err != nil {
		t.Fatalf("insert faculty member: %v", err)
	}
}

func strPtr(v string) *string { return &v }

func TestStorage_MigrateIsIdempotent(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	if err := storage.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestStorage_InsertExam_ClassifiesMissingReferences(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	tests := []struct {
		name     string
		exam     persistence.Exam
		wantKind persistence.ConstraintKind
	}{
		{
			name:     "unknown course",
			exam:     persistence.Exam{ID: "e1", CourseCode: "NOPE", ExamDate: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00"},
			wantKind: persistence.ConstraintForeignKeyCourse,
		},
		{
			name:     "unknown scheduler",
			exam:     persistence.Exam{ID: "e2", CourseCode: "CS101", ExamDate: "2024-06-01", StartTime: "09:00:00", EndTime: "10:00:00", ScheduledBy: strPtr("ghost")},
			wantKind: persistence.ConstraintForeignKeyActor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := storage.InsertExam(ctx, tc.exam)
			var constraintErr *persistence.ConstraintError
			if !errors.As(err, &constraintErr) {
				t.Fatalf("expected ConstraintError, got %v", err)
			}
			if constraintErr.Kind != tc.wantKind {
				t.Fatalf("expected kind %s, got %s", tc.wantKind, constraintErr.Kind)
			}
			if !errors.Is(err, persistence.ErrConstraintViolation) {
				t.Fatalf("expected ErrConstraintViolation match")
			}
		})
	}

	exams, err := storage.ListExams(ctx, persistence.ExamFilter{})
	if err != nil {
		t.Fatalf("list exams: %v", err)
	}
	if len(exams) != 0 {
		t.Fatalf("rejected inserts must not persist, got %d rows", len(exams))
	}
}

func TestStorage_ExamLifecycle(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	inserted, err := storage.InsertExam(ctx, persistence.Exam{
		ID:          "exam-1",
		CourseCode:  "CS101",
		GroupID:     strPtr("group-a"),
		ExamDate:    "2024-06-01",
		StartTime:   "09:00:00",
		EndTime:     "11:00:00",
		ScheduledBy: strPtr("faculty-1"),
	})
	if err != nil {
		t.Fatalf("insert exam: %v", err)
	}
	if !inserted.CreatedAt.Equal(referenceTime) {
		t.Fatalf("expected created_at %v, got %v", referenceTime, inserted.CreatedAt)
	}

	if _, err := storage.InsertExam(ctx, persistence.Exam{ID: "exam-2", CourseCode: "CS101", ExamDate: "2024-06-01", StartTime: "07:00:00", EndTime: "08:00:00"}); err != nil {
		t.Fatalf("insert second exam: %v", err)
	}
	if _, err := storage.InsertExam(ctx, persistence.Exam{ID: "exam-3", CourseCode: "CS101", ExamDate: "2024-06-02", StartTime: "09:00:00", EndTime: "10:00:00"}); err != nil {
		t.Fatalf("insert third exam: %v", err)
	}

	onDate, err := storage.ListExamsOnDate(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("list on date: %v", err)
	}
	if len(onDate) != 2 || onDate[0].ID != "exam-2" || onDate[1].ID != "exam-1" {
		t.Fatalf("expected exams ordered by start time, got %+v", onDate)
	}

	byGroup, err := storage.ListExams(ctx, persistence.ExamFilter{GroupID: "group-a"})
	if err != nil {
		t.Fatalf("list by group: %v", err)
	}
	if len(byGroup) != 1 || byGroup[0].ID != "exam-1" {
		t.Fatalf("expected only exam-1 for group-a, got %+v", byGroup)
	}

	got, err := storage.GetExamByID(ctx, "exam-1")
	if err != nil {
		t.Fatalf("get exam: %v", err)
	}
	if got.GroupID == nil || *got.GroupID != "group-a" || got.ScheduledBy == nil || *got.ScheduledBy != "faculty-1" {
		t.Fatalf("unexpected optional fields: %+v", got)
	}

	updated, err := storage.UpdateExam(ctx, "exam-1", persistence.ExamPatch{EndTime: strPtr("12:00:00"), GroupID: strPtr("")})
	if err != nil {
		t.Fatalf("update exam: %v", err)
	}
	if updated.EndTime != "12:00:00" || updated.StartTime != "09:00:00" {
		t.Fatalf("unexpected times after update: %+v", updated)
	}
	if updated.GroupID != nil {
		t.Fatalf("expected group to be cleared, got %v", *updated.GroupID)
	}

	if _, err := storage.UpdateExam(ctx, "exam-1", persistence.ExamPatch{ScheduledBy: strPtr("ghost")}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for unknown scheduler, got %v", err)
	}

	if _, err := storage.UpdateExam(ctx, "missing", persistence.ExamPatch{EndTime: strPtr("12:00:00")}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	deleted, err := storage.DeleteExam(ctx, "exam-1")
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %t %v", deleted, err)
	}
	deleted, err = storage.DeleteExam(ctx, "exam-1")
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %t %v", deleted, err)
	}
	if _, err := storage.GetExamByID(ctx, "exam-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorage_UniqueAndCheckViolations(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	_, err := storage.InsertFacultyMember(ctx, persistence.FacultyMember{ID: "faculty-2", Name: "Grace", Email: "ada@example.edu"})
	var constraintErr *persistence.ConstraintError
	if !errors.As(err, &constraintErr) || constraintErr.Kind != persistence.ConstraintUnique {
		t.Fatalf("expected unique violation, got %v", err)
	}

	_, err = storage.InsertCourse(ctx, persistence.Course{Code: "CS102", Name: "Data", Semester: 0})
	if !errors.As(err, &constraintErr) || constraintErr.Kind != persistence.ConstraintCheck {
		t.Fatalf("expected check violation, got %v", err)
	}

	_, err = storage.InsertAttendance(ctx, persistence.AttendanceRecord{ID: "a1", RegNumber: "R1", Status: "asleep", Timestamp: "2024-01-02T09:00:00+00:00"})
	if !errors.As(err, &constraintErr) || constraintErr.Kind != persistence.ConstraintCheck {
		t.Fatalf("expected check violation for status, got %v", err)
	}
}

func TestStorage_AssignmentLifecycle(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	due := time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC)
	if _, err := storage.InsertAssignment(ctx, persistence.Assignment{ID: "as-1", CourseCode: "CS101", Title: "Lab 1", DueDate: due, AssignedBy: "ghost"}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	if _, err := storage.InsertAssignment(ctx, persistence.Assignment{ID: "as-1", CourseCode: "CS101", Title: "Lab 1", DueDate: due, AssignedBy: "faculty-1"}); err != nil {
		t.Fatalf("insert assignment: %v", err)
	}

	listed, err := storage.ListAssignments(ctx, "CS101")
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(listed) != 1 || !listed[0].DueDate.Equal(due) {
		t.Fatalf("unexpected assignments: %+v", listed)
	}

	title := "Lab 1 (revised)"
	updated, err := storage.UpdateAssignment(ctx, "as-1", persistence.AssignmentPatch{Title: &title})
	if err != nil {
		t.Fatalf("update assignment: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected title %q, got %q", title, updated.Title)
	}

	deleted, err := storage.DeleteAssignment(ctx, "as-1")
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %t %v", deleted, err)
	}
}

func TestStorage_ListAttendanceFiltersByDate(t *testing.T) {
	storage := newTestStorage(t)
	seedCatalog(t, storage)
	ctx := context.Background()

	for i, ts := range []string{"2024-01-01T09:00:00+00:00", "2024-01-02T09:00:00Z", "2024-01-03 09:00:00"} {
		record := persistence.AttendanceRecord{ID: string(rune('a' + i)), RegNumber: "R1", Status: "present", Timestamp: ts}
		if _, err := storage.InsertAttendance(ctx, record); err != nil {
			t.Fatalf("insert attendance: %v", err)
		}
	}
	if _, err := storage.InsertAttendance(ctx, persistence.AttendanceRecord{ID: "other", RegNumber: "R2", Status: "late", Timestamp: "2024-01-02T10:00:00Z"}); err != nil {
		t.Fatalf("insert attendance: %v", err)
	}

	records, err := storage.ListAttendance(ctx, persistence.AttendanceFilter{RegNumber: "R1", From: "2024-01-02", To: "2024-01-02"})
	if err != nil {
		t.Fatalf("list attendance: %v", err)
	}
	if len(records) != 1 || records[0].ID != "b" {
		t.Fatalf("expected only record b, got %+v", records)
	}

	all, err := storage.ListAttendance(ctx, persistence.AttendanceFilter{RegNumber: "R1"})
	if err != nil {
		t.Fatalf("list attendance: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
}

func TestWithPragmas(t *testing.T) {
	tests := map[string]string{
		"file:scheduler.db":                 "file:scheduler.db?" + defaultPragmas,
		"file:scheduler.db?mode=rwc":        "file:scheduler.db?mode=rwc&" + defaultPragmas,
		"file:x.db?_pragma=foreign_keys(1)": "file:x.db?_pragma=foreign_keys(1)",
	}
	for in, want := range tests {
		if got := withPragmas(in); got != want {
			t.Fatalf("withPragmas(%q) = %q, want %q", in, got, want)
		}
	}
}
