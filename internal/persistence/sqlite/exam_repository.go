package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
)

const examColumns = `exam_id, course_code, group_id, exam_date, start_time, end_time, scheduled_by, created_at, updated_at`

// ListExamsOnDate returns every exam booked on date, ordered by start time.
func (s *Storage) ListExamsOnDate(ctx context.Context, date string) ([]persistence.Exam, error) {
	return s.ListExams(ctx, persistence.ExamFilter{ExamDate: date})
}

// ListExams returns exams matching filter ordered by date and start time.
func (s *Storage) ListExams(ctx context.Context, filter persistence.ExamFilter) ([]persistence.Exam, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ExamDate != "" {
		conditions = append(conditions, "exam_date = ?")
		args = append(args, filter.ExamDate)
	}
	if filter.CourseCode != "" {
		conditions = append(conditions, "course_code = ?")
		args = append(args, filter.CourseCode)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = ?")
		args = append(args, filter.GroupID)
	}

	query := "SELECT " + examColumns + " FROM exams"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY exam_date, start_time, exam_id"

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
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

// InsertExam stores exam after checking that its course and scheduling
// faculty member exist.
func (s *Storage) InsertExam(ctx context.Context, exam persistence.Exam) (persistence.Exam, error) {
	if exam.ID == "" {
		return persistence.Exam{}, errors.New("sqlite: exam id is required")
	}

	now := s.timestamp()
	exam.CreatedAt = now
	exam.UpdatedAt = now

	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.checkExamReferences(ctx, tx, &exam.CourseCode, exam.ScheduledBy); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `INSERT INTO exams (`+examColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			exam.ID,
			exam.CourseCode,
			nullString(exam.GroupID),
			exam.ExamDate,
			exam.StartTime,
			exam.EndTime,
			nullString(exam.ScheduledBy),
			formatTimestamp(exam.CreatedAt),
			formatTimestamp(exam.UpdatedAt),
		)
		return mapError(err)
	})
	if err != nil {
		return persistence.Exam{}, err
	}
	return exam, nil
}

// GetExamByID returns persistence.ErrNotFound when no exam has id.
func (s *Storage) GetExamByID(ctx context.Context, id string) (persistence.Exam, error) {
	row := s.pool.DB().QueryRowContext(ctx, "SELECT "+examColumns+" FROM exams WHERE exam_id = ?", id)
	return scanExam(row)
}

// UpdateExam applies the non-nil fields of patch and returns the stored row.
func (s *Storage) UpdateExam(ctx context.Context, id string, patch persistence.ExamPatch) (persistence.Exam, error) {
	if patch.Empty() {
		return s.GetExamByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.CourseCode != nil {
		set("course_code", *patch.CourseCode)
	}
	if patch.GroupID != nil {
		set("group_id", nullString(patch.GroupID))
	}
	if patch.ExamDate != nil {
		set("exam_date", *patch.ExamDate)
	}
	if patch.StartTime != nil {
		set("start_time", *patch.StartTime)
	}
	if patch.EndTime != nil {
		set("end_time", *patch.EndTime)
	}
	if patch.ScheduledBy != nil {
		set("scheduled_by", nullString(patch.ScheduledBy))
	}
	set("updated_at", formatTimestamp(s.timestamp()))
	args = append(args, id)

	var updated persistence.Exam
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.checkExamReferences(ctx, tx, patch.CourseCode, patch.ScheduledBy); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, "UPDATE exams SET "+strings.Join(sets, ", ")+" WHERE exam_id = ?", args...)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		updated, err = scanExam(tx.QueryRowContext(ctx, "SELECT "+examColumns+" FROM exams WHERE exam_id = ?", id))
		return err
	})
	if err != nil {
		return persistence.Exam{}, err
	}
	return updated, nil
}

// DeleteExam reports whether a row was removed.
func (s *Storage) DeleteExam(ctx context.Context, id string) (bool, error) {
	result, err := s.pool.DB().ExecContext(ctx, "DELETE FROM exams WHERE exam_id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Storage) checkExamReferences(ctx context.Context, tx *sql.Tx, courseCode, scheduledBy *string) error {
	if courseCode != nil {
		if err := requireReference(ctx, tx, "courses", "code", *courseCode, persistence.ConstraintForeignKeyCourse); err != nil {
			return err
		}
	}
	if scheduledBy != nil && *scheduledBy != "" {
		if err := requireReference(ctx, tx, "faculty_members", "id", *scheduledBy, persistence.ConstraintForeignKeyActor); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExam(row rowScanner) (persistence.Exam, error) {
	var (
		exam                 persistence.Exam
		groupID, scheduledBy sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&exam.ID,
		&exam.CourseCode,
		&groupID,
		&exam.ExamDate,
		&exam.StartTime,
		&exam.EndTime,
		&scheduledBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Exam{}, mapError(err)
	}

	exam.GroupID = stringPtr(groupID)
	exam.ScheduledBy = stringPtr(scheduledBy)

	var err error
	if exam.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Exam{}, err
	}
	if exam.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Exam{}, err
	}
	return exam, nil
}
