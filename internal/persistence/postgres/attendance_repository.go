package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/campus-scheduler/internal/persistence"
)

// InsertAttendance stores an attendance mark.
func (s *Storage) InsertAttendance(ctx context.Context, record persistence.AttendanceRecord) (persistence.AttendanceRecord, error) {
	if record.ID == "" {
		return persistence.AttendanceRecord{}, errors.New("postgres: attendance id is required")
	}
	record.CreatedAt = s.timestamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_records (id, reg_number, course_code, status, timestamp, created_at)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6)`,
		record.ID, record.RegNumber, nullString(record.CourseCode), record.Status, record.Timestamp, record.CreatedAt,
	)
	if err != nil {
		return persistence.AttendanceRecord{}, mapError(err)
	}
	return record, nil
}

// ListAttendance returns the student's records ordered by timestamp. From and
// To compare against the date prefix of the stored timestamp text.
func (s *Storage) ListAttendance(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.AttendanceRecord, error) {
	var b builder
	b.add("reg_number = %s", filter.RegNumber)
	if filter.From != "" {
		b.add("substr(timestamp, 1, 10) >= %s", filter.From)
	}
	if filter.To != "" {
		b.add("substr(timestamp, 1, 10) <= %s", filter.To)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id::text, reg_number, course_code, status, timestamp, created_at FROM attendance_records"+b.where()+" ORDER BY timestamp, id",
		b.args...,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AttendanceRecord
	for rows.Next() {
		var (
			record     persistence.AttendanceRecord
			courseCode sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.RegNumber, &courseCode, &record.Status, &record.Timestamp, &record.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		record.CourseCode = stringPtr(courseCode)
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}
