package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/campus-scheduler/internal/persistence"
)

const assignmentColumns = `assignment_id, course_code, title, description, due_date, assigned_by, created_at, updated_at`

// InsertAssignment stores assignment after checking its references.
func (s *Storage) InsertAssignment(ctx context.Context, assignment persistence.Assignment) (persistence.Assignment, error) {
	if assignment.ID == "" {
		return persistence.Assignment{}, errors.New("sqlite: assignment id is required")
	}

	now := s.timestamp()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkAssignmentReferences(ctx, tx, &assignment.CourseCode, &assignment.AssignedBy); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO assignments (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			assignment.ID,
			assignment.CourseCode,
			assignment.Title,
			nullString(assignment.Description),
			formatTimestamp(assignment.DueDate),
			assignment.AssignedBy,
			formatTimestamp(assignment.CreatedAt),
			formatTimestamp(assignment.UpdatedAt),
		)
		return mapError(err)
	})
	if err != nil {
		return persistence.Assignment{}, err
	}
	return assignment, nil
}

// GetAssignmentByID returns persistence.ErrNotFound when no assignment has id.
func (s *Storage) GetAssignmentByID(ctx context.Context, id string) (persistence.Assignment, error) {
	row := s.pool.DB().QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE assignment_id = ?", id)
	return scanAssignment(row)
}

// ListAssignments returns assignments ordered by due date; an empty
// courseCode lists every course.
func (s *Storage) ListAssignments(ctx context.Context, courseCode string) ([]persistence.Assignment, error) {
	query := "SELECT " + assignmentColumns + " FROM assignments"
	var args []any
	if courseCode != "" {
		query += " WHERE course_code = ?"
		args = append(args, courseCode)
	}
	query += " ORDER BY due_date, assignment_id"

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
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
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", nullString(patch.Description))
	}
	if patch.DueDate != nil {
		set("due_date", formatTimestamp(*patch.DueDate))
	}
	if patch.AssignedBy != nil {
		set("assigned_by", *patch.AssignedBy)
	}
	set("updated_at", formatTimestamp(s.timestamp()))
	args = append(args, id)

	var updated persistence.Assignment
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := checkAssignmentReferences(ctx, tx, patch.CourseCode, patch.AssignedBy); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "UPDATE assignments SET "+strings.Join(sets, ", ")+" WHERE assignment_id = ?", args...)
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
		updated, err = scanAssignment(tx.QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE assignment_id = ?", id))
		return err
	})
	if err != nil {
		return persistence.Assignment{}, err
	}
	return updated, nil
}

// DeleteAssignment reports whether a row was removed.
func (s *Storage) DeleteAssignment(ctx context.Context, id string) (bool, error) {
	result, err := s.pool.DB().ExecContext(ctx, "DELETE FROM assignments WHERE assignment_id = ?", id)
	if err != nil {
		return false, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return affected > 0, nil
}

func checkAssignmentReferences(ctx context.Context, tx *sql.Tx, courseCode, assignedBy *string) error {
	if courseCode != nil {
		if err := requireReference(ctx, tx, "courses", "code", *courseCode, persistence.ConstraintForeignKeyCourse); err != nil {
			return err
		}
	}
	if assignedBy != nil {
		if err := requireReference(ctx, tx, "faculty_members", "id", *assignedBy, persistence.ConstraintForeignKeyActor); err != nil {
			return err
		}
	}
	return nil
}

func scanAssignment(row rowScanner) (persistence.Assignment, error) {
	var (
		assignment                    persistence.Assignment
		description                   sql.NullString
		dueDate, createdAt, updatedAt string
	)
	if err := row.Scan(
		&assignment.ID,
		&assignment.CourseCode,
		&assignment.Title,
		&description,
		&dueDate,
		&assignment.AssignedBy,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Assignment{}, mapError(err)
	}

	assignment.Description = stringPtr(description)

	var err error
	if assignment.DueDate, err = parseTimestamp(dueDate); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Assignment{}, err
	}
	return assignment, nil
}
