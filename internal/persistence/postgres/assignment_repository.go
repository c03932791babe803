package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
)

const assignmentReturning = `assignment_id::text, course_code, title, description, due_date, assigned_by::text, created_at, updated_at`

// InsertAssignment stores assignment.
func (s *Storage) InsertAssignment(ctx context.Context, assignment persistence.Assignment) (persistence.Assignment, error) {
	if assignment.ID == "" {
		return persistence.Assignment{}, errors.New("postgres: assignment id is required")
	}

	now := s.timestamp()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO assignments
		(assignment_id, course_code, title, description, due_date, assigned_by, created_at, updated_at)
		VALUES ($1::text::uuid, $2, $3, $4, $5, $6::text::uuid, $7, $8)`,
		assignment.ID,
		assignment.CourseCode,
		assignment.Title,
		nullString(assignment.Description),
		assignment.DueDate.UTC(),
		assignment.AssignedBy,
		assignment.CreatedAt,
		assignment.UpdatedAt,
	)
	if err != nil {
		return persistence.Assignment{}, mapError(err)
	}
	return assignment, nil
}

// GetAssignmentByID returns persistence.ErrNotFound when no assignment has id.
func (s *Storage) GetAssignmentByID(ctx context.Context, id string) (persistence.Assignment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+assignmentReturning+" FROM assignments WHERE assignment_id::text = $1", id)
	return scanAssignment(row)
}

// ListAssignments returns assignments ordered by due date; an empty
// courseCode lists every course.
func (s *Storage) ListAssignments(ctx context.Context, courseCode string) ([]persistence.Assignment, error) {
	var b builder
	if courseCode != "" {
		b.add("course_code = %s", courseCode)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+assignmentReturning+" FROM assignments"+b.where()+" ORDER BY due_date, assignment_id", b.args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return assignments, nil
}

// UpdateAssignment applies the non-nil fields of patch.
func (s *Storage) UpdateAssignment(ctx context.Context, id string, patch persistence.AssignmentPatch) (persistence.Assignment, error) {
	if patch.Empty() {
		return s.GetAssignmentByID(ctx, id)
	}

	var (
		b    builder
		sets []string
	)
	if patch.CourseCode != nil {
		sets = append(sets, "course_code = "+b.next(*patch.CourseCode))
	}
	if patch.Title != nil {
		sets = append(sets, "title = "+b.next(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+b.next(nullString(patch.Description)))
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = "+b.next(patch.DueDate.UTC()))
	}
	if patch.AssignedBy != nil {
		sets = append(sets, "assigned_by = "+b.next(*patch.AssignedBy)+"::text::uuid")
	}
	sets = append(sets, "updated_at = "+b.next(s.timestamp()))
	b.add("assignment_id::text = %s", id)

	query := "UPDATE assignments SET " + strings.Join(sets, ", ") + b.where() + " RETURNING " + assignmentReturning
	return scanAssignment(s.db.QueryRowContext(ctx, query, b.args...))
}

// DeleteAssignment reports whether a row was removed.
func (s *Storage) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM assignments WHERE assignment_id::text = $1", id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanAssignment(row rowScanner) (persistence.Assignment, error) {
	var (
		assignment  persistence.Assignment
		description sql.NullString
	)
	if err := row.Scan(
		&assignment.ID,
		&assignment.CourseCode,
		&assignment.Title,
		&description,
		&assignment.DueDate,
		&assignment.AssignedBy,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	); err != nil {
		return persistence.Assignment{}, mapError(err)
	}
	assignment.Description = stringPtr(description)
	assignment.DueDate = assignment.DueDate.UTC()
	assignment.CreatedAt = assignment.CreatedAt.UTC()
	assignment.UpdatedAt = assignment.UpdatedAt.UTC()
	return assignment, nil
}
