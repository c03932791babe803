package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
)

const examSelect = `SELECT exam_id::text, course_code, group_id::text, exam_date::text, start_time::text, end_time::text,
	scheduled_by::text, created_at, updated_at FROM exams`

// ListExamsOnDate returns every exam booked on date, ordered by start time.
func (s *Storage) ListExamsOnDate(ctx context.Context, date string) ([]persistence.Exam, error) {
	return s.ListExams(ctx, persistence.ExamFilter{ExamDate: date})
}

// ListExams returns exams matching filter ordered by date and start time.
func (s *Storage) ListExams(ctx context.Context, filter persistence.ExamFilter) ([]persistence.Exam, error) {
	var b builder
	if filter.ExamDate != "" {
		b.add("exam_date = %s::text::date", filter.ExamDate)
	}
	if filter.CourseCode != "" {
		b.add("course_code = %s", filter.CourseCode)
	}
	if filter.GroupID != "" {
		b.add("group_id::text = %s", filter.GroupID)
	}

	rows, err := s.db.QueryContext(ctx, examSelect+b.where()+" ORDER BY exam_date, start_time, exam_id", b.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var exams []persistence.Exam
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return exams, nil
}

// InsertExam stores exam. Missing course or faculty references surface as
// *persistence.ConstraintError classified by constraint name.
func (s *Storage) InsertExam(ctx context.Context, exam persistence.Exam) (persistence.Exam, error) {
	if exam.ID == "" {
		return persistence.Exam{}, errors.New("postgres: exam id is required")
	}

	now := s.timestamp()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO exams
		(exam_id, course_code, group_id, exam_date, start_time, end_time, scheduled_by, created_at, updated_at)
		VALUES ($1::text::uuid, $2, $3::text::uuid, $4::text::date, $5::text::time, $6::text::time, $7::text::uuid, $8, $9)`,
		exam.ID,
		exam.CourseCode,
		nullString(exam.GroupID),
		exam.ExamDate,
		exam.StartTime,
		exam.EndTime,
		nullString(exam.ScheduledBy),
		exam.CreatedAt,
		exam.UpdatedAt,
	)
	if err != nil {
		return persistence.Exam{}, mapError(err)
	}
	return exam, nil
}

// GetExamByID returns persistence.ErrNotFound when no exam has id.
func (s *Storage) GetExamByID(ctx context.Context, id string) (persistence.Exam, error) {
	return scanExam(s.db.QueryRowContext(ctx, examSelect+" WHERE exam_id::text = $1", id))
}

// UpdateExam applies the non-nil fields of patch and returns the stored row.
func (s *Storage) UpdateExam(ctx context.Context, id string, patch persistence.ExamPatch) (persistence.Exam, error) {
	if patch.Empty() {
		return s.GetExamByID(ctx, id)
	}

	var (
		b    builder
		sets []string
	)
	if patch.CourseCode != nil {
		sets = append(sets, "course_code = "+b.next(*patch.CourseCode))
	}
	if patch.GroupID != nil {
		sets = append(sets, "group_id = "+b.next(nullString(patch.GroupID))+"::text::uuid")
	}
	if patch.ExamDate != nil {
		sets = append(sets, "exam_date = "+b.next(*patch.ExamDate)+"::text::date")
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = "+b.next(*patch.StartTime)+"::text::time")
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = "+b.next(*patch.EndTime)+"::text::time")
	}
	if patch.ScheduledBy != nil {
		sets = append(sets, "scheduled_by = "+b.next(nullString(patch.ScheduledBy))+"::text::uuid")
	}
	sets = append(sets, "updated_at = "+b.next(s.timestamp()))
	b.add("exam_id::text = %s", id)

	query := "UPDATE exams SET " + strings.Join(sets, ", ") + b.where() + ` RETURNING exam_id::text, course_code, group_id::text,
		exam_date::text, start_time::text, end_time::text, scheduled_by::text, created_at, updated_at`

	return scanExam(s.db.QueryRowContext(ctx, query, b.args...))
}

// DeleteExam reports whether a row was removed.
func (s *Storage) DeleteExam(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM exams WHERE exam_id::text = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanExam(row rowScanner) (persistence.Exam, error) {
	var (
		exam                 persistence.Exam
		groupID, scheduledBy sql.NullString
	)
	if err := row.Scan(
		&exam.ID,
		&exam.CourseCode,
		&groupID,
		&exam.ExamDate,
		&exam.StartTime,
		&exam.EndTime,
		&scheduledBy,
		&exam.CreatedAt,
		&exam.UpdatedAt,
	); err != nil {
		return persistence.Exam{}, mapError(err)
	}
	exam.GroupID = stringPtr(groupID)
	exam.ScheduledBy = stringPtr(scheduledBy)
	exam.CreatedAt = exam.CreatedAt.UTC()
	exam.UpdatedAt = exam.UpdatedAt.UTC()
	return exam, nil
}
