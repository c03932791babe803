package postgres

import (
	"context"

	"github.com/example/campus-scheduler/internal/persistence"
)

// InsertCourse adds a course to the catalog.
func (s *Storage) InsertCourse(ctx context.Context, course persistence.Course) (persistence.Course, error) {
	course.CreatedAt = s.timestamp()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO courses (code, name, semester, created_at) VALUES ($1, $2, $3, $4)",
		course.Code, course.Name, course.Semester, course.CreatedAt,
	)
	if err != nil {
		return persistence.Course{}, mapError(err)
	}
	return course, nil
}

// ListCourses returns the catalog ordered by code.
func (s *Storage) ListCourses(ctx context.Context, filter persistence.CourseFilter) ([]persistence.Course, error) {
	var b builder
	if filter.Semester > 0 {
		b.add("semester = %s", filter.Semester)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT code, name, semester, created_at FROM courses"+b.where()+" ORDER BY code", b.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		var course persistence.Course
		if err := rows.Scan(&course.Code, &course.Name, &course.Semester, &course.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		course.CreatedAt = course.CreatedAt.UTC()
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO faculty_members (id, name, email, created_at) VALUES ($1::text::uuid, $2, $3, $4)",
		member.ID, member.Name, member.Email, member.CreatedAt,
	)
	if err != nil {
		return persistence.FacultyMember{}, mapError(err)
	}
	return member, nil
}

// ListFacultyMembers returns staff ordered by name.
func (s *Storage) ListFacultyMembers(ctx context.Context) ([]persistence.FacultyMember, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id::text, name, email, created_at FROM faculty_members ORDER BY name, id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []persistence.FacultyMember
	for rows.Next() {
		var member persistence.FacultyMember
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		member.CreatedAt = member.CreatedAt.UTC()
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return members, nil
}
