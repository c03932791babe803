package sqlite

import (
	"context"

	"github.com/example/campus-scheduler/internal/persistence"
)

// InsertCourse adds a course to the catalog.
func (s *Storage) InsertCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	course.CreatedAt = s.timestamp()
	_, err := s.pool.DB().ExecContext(ctx,
		"INSERT INTO courses (code, name, semester, created_at) VALUES (?, ?, ?, ?)",
		course.Code, course.Name, course.Semester, formatTimestamp(course.CreatedAt),
	)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}
	return course, nil
}

// ListCourses returns the catalog ordered by code.
func (s *Storage) ListCourses(ctx context.Context, filter persistence.CourseFilter) ([]persistence.Course, error) {
	query := "SELECT code, name, semester, created_at FROM courses"
	var args []any
	if filter.Semester > 0 {
		query += " WHERE semester = ?"
		args = append(args, filter.Semester)
	}
	rows, err := s.pool.DB().QueryContext(ctx, query+" ORDER BY code", args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		var (
			course    persistence.Course
			createdAt string
		)
		if err := rows.Scan(&course.Code, &course.Name, &course.Semester, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if course.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return courses, nil
}

// InsertFacultyMember adds a staff profile. Emails are unique.
func (s *Storage) InsertFacultyMember(ctx context.Context, member persistence.FacultyMember) (persistence.FacultyMember, error) {
	member.CreatedAt = s.timestamp()
	_, err := s.pool.DB().ExecContext(ctx,
		"INSERT INTO faculty_members (id, name, email, created_at) VALUES (?, ?, ?, ?)",
		member.ID, member.Name, member.Email, formatTimestamp(member.CreatedAt),
	)
	if err != nil {
		return persistence.FacultyMember{}, mapError(err)
	}
	return member, nil
}

// ListFacultyMembers returns staff ordered by name.
func (s *Storage) ListFacultyMembers(ctx context.Context) ([]persistence.FacultyMember, error) {
	rows, err := s.pool.DB().QueryContext(ctx, "SELECT id, name, email, created_at FROM faculty_members ORDER BY name, id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []persistence.FacultyMember
	for rows.Next() {
		var (
			member    persistence.FacultyMember
			createdAt string
		)
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if member.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}
