package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/campus-scheduler/internal/persistence"
)

// InsertAttendance stores an attendance mark.
func (s *Storage) InsertAttendance(ctx context.Context, record persistence.AttendanceRecord) (persistence.AttendanceRecord, error) {
	if record.ID == "" {
		return persistence.AttendanceRecord{}, errors.New("sqlite: attendance id is required")
	}
	record.CreatedAt = s.timestamp()

	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if record.CourseCode != nil && *record.CourseCode != "" {
			if err := requireReference(ctx, tx, "courses", "code", *record.CourseCode, persistence.ConstraintForeignKeyCourse); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO attendance_records (id, reg_number, course_code, status, timestamp, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			record.ID, record.RegNumber, nullString(record.CourseCode), record.Status, record.Timestamp, formatTimestamp(record.CreatedAt),
		)
		return mapError(err)
	})
	if err != nil {
		return persistence.AttendanceRecord{}, err
	}
	return record, nil
}

// ListAttendance returns the student's records ordered by timestamp. From and
// To compare against the date prefix of the stored timestamp text.
func (s *Storage) ListAttendance(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	query := "SELECT id, reg_number, course_code, status, timestamp, created_at FROM attendance_records WHERE reg_number = ?"
	args := []any{filter.RegNumber}
	if filter.From != "" {
		query += " AND substr(timestamp, 1, 10) >= ?"
		args = append(args, filter.From)
	}
	if filter.To != "" {
		query += " AND substr(timestamp, 1, 10) <= ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY timestamp, id"

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		var (
			record     persistence.AttendanceRecord
			courseCode sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&record.ID, &record.RegNumber, &courseCode, &record.Status, &record.Timestamp, &createdAt); err != nil {
			return nil, mapError(err)
		}
		record.CourseCode = stringPtr(courseCode)
		if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}
