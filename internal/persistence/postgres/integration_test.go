//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/google/uuid"
)

// openIntegrationStorage connects to SCHEDULER_TEST_DATABASE_URL. Rows are
// keyed by fresh identifiers so that repeated runs share one database.
func openIntegrationStorage(t *testing.T) *Storage {
	t.Helper()

	url := os.Getenv("SCHEDULER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SCHEDULER_TEST_DATABASE_URL is not set")
	}

	storage, err := Open(url, WithClock(func() time.Time {
		return time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	ctx := context.Background()
	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("failed to reach database: %v", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}
	return storage
}

func uniqueCourseCode() string {
	return "IT" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func TestStorage_ExamLifecycle(t *testing.T) {
	storage := openIntegrationStorage(t)
	ctx := context.Background()

	course, err := storage.InsertCourse(ctx, persistence.Course{Code: uniqueCourseCode(), Name: "Integration", Semester: 1})
	if err != nil {
		t.Fatalf("InsertCourse returned error: %v", err)
	}
	member, err := storage.InsertFacultyMember(ctx, persistence.FacultyMember{
		ID:    uuid.NewString(),
		Name:  "Integration Lecturer",
		Email: uuid.NewString() + "@campus.example",
	})
	if err != nil {
		t.Fatalf("InsertFacultyMember returned error: %v", err)
	}

	date := "2031-03-14"
	group := uuid.NewString()
	exam := persistence.Exam{
		ID:          uuid.NewString(),
		CourseCode:  course.Code,
		GroupID:     &group,
		ExamDate:    date,
		StartTime:   "09:00:00",
		EndTime:     "11:00:00",
		ScheduledBy: &member.ID,
	}
	if _, err := storage.InsertExam(ctx, exam); err != nil {
		t.Fatalf("InsertExam returned error: %v", err)
	}

	listed, err := storage.ListExams(ctx, persistence.ExamFilter{ExamDate: date, CourseCode: course.Code})
	if err != nil {
		t.Fatalf("ListExams returned error: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one exam, got %d", len(listed))
	}
	got := listed[0]
	if got.ID != exam.ID || got.ExamDate != date || got.StartTime != "09:00:00" || got.EndTime != "11:00:00" {
		t.Fatalf("unexpected exam %+v", got)
	}
	if got.GroupID == nil || *got.GroupID != group || got.ScheduledBy == nil || *got.ScheduledBy != member.ID {
		t.Fatalf("expected uuid columns to round trip, got %+v", got)
	}

	start := "10:30"
	updated, err := storage.UpdateExam(ctx, exam.ID, persistence.ExamPatch{StartTime: &start, GroupID: new(string)})
	if err != nil {
		t.Fatalf("UpdateExam returned error: %v", err)
	}
	if updated.StartTime != "10:30:00" || updated.GroupID != nil {
		t.Fatalf("unexpected updated exam %+v", updated)
	}

	if _, err := storage.UpdateExam(ctx, uuid.NewString(), persistence.ExamPatch{StartTime: &start}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown exam, got %v", err)
	}

	deleted, err := storage.DeleteExam(ctx, exam.ID)
	if err != nil || !deleted {
		t.Fatalf("expected exam to be deleted, got %t (%v)", deleted, err)
	}
	if _, err := storage.GetExamByID(ctx, exam.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStorage_InsertExamClassifiesReferences(t *testing.T) {
	storage := openIntegrationStorage(t)
	ctx := context.Background()

	course, err := storage.InsertCourse(ctx, persistence.Course{Code: uniqueCourseCode(), Name: "Integration", Semester: 1})
	if err != nil {
		t.Fatalf("InsertCourse returned error: %v", err)
	}

	missingFaculty := uuid.NewString()
	tests := []struct {
		name string
		exam persistence.Exam
		want persistence.ConstraintKind
	}{
		{
			name: "unknown course",
			exam: persistence.Exam{ID: uuid.NewString(), CourseCode: uniqueCourseCode(), ExamDate: "2031-03-14", StartTime: "09:00:00", EndTime: "10:00:00"},
			want: persistence.ConstraintForeignKeyCourse,
		},
		{
			name: "unknown faculty member",
			exam: persistence.Exam{ID: uuid.NewString(), CourseCode: course.Code, ExamDate: "2031-03-14", StartTime: "09:00:00", EndTime: "10:00:00", ScheduledBy: &missingFaculty},
			want: persistence.ConstraintForeignKeyActor,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := storage.InsertExam(ctx, tc.exam)
			var constraintErr *persistence.ConstraintError
			if !errors.As(err, &constraintErr) || constraintErr.Kind != tc.want {
				t.Fatalf("expected %s constraint error, got %v", tc.want, err)
			}
		})
	}
}

func TestStorage_CatalogAndAttendanceFilters(t *testing.T) {
	storage := openIntegrationStorage(t)
	ctx := context.Background()

	semester := int(time.Now().UnixNano()%1_000_000) + 1000
	code := uniqueCourseCode()
	if _, err := storage.InsertCourse(ctx, persistence.Course{Code: code, Name: "Filtered", Semester: semester}); err != nil {
		t.Fatalf("InsertCourse returned error: %v", err)
	}
	courses, err := storage.ListCourses(ctx, persistence.CourseFilter{Semester: semester})
	if err != nil {
		t.Fatalf("ListCourses returned error: %v", err)
	}
	if len(courses) != 1 || courses[0].Code != code {
		t.Fatalf("expected only %s in semester %d, got %+v", code, semester, courses)
	}

	reg := "IT-" + uuid.NewString()
	for _, ts := range []string{"2031-03-13T08:00:00Z", "2031-03-14T08:00:00Z", "2031-03-14T10:30:00Z"} {
		if _, err := storage.InsertAttendance(ctx, persistence.AttendanceRecord{
			ID: uuid.NewString(), RegNumber: reg, Status: "present", Timestamp: ts,
		}); err != nil {
			t.Fatalf("InsertAttendance returned error: %v", err)
		}
	}

	records, err := storage.ListAttendance(ctx, persistence.AttendanceFilter{RegNumber: reg, From: "2031-03-14", To: "2031-03-14"})
	if err != nil {
		t.Fatalf("ListAttendance returned error: %v", err)
	}
	if len(records) != 2 || records[1].Timestamp != "2031-03-14T10:30:00Z" {
		t.Fatalf("expected two ordered records on 2031-03-14, got %+v", records)
	}
}
