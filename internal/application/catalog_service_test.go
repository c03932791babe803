package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-scheduler/internal/persistence"
)

func TestCatalogService_CreateCourse(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoStub{}
	svc := NewCatalogService(repo, fastRetry, nil, nil)

	course, err := svc.CreateCourse(context.Background(), CreateCourseParams{Code: " cs101 ", Name: "Intro"})
	if err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}
	if repo.createdCode != "CS101" {
		t.Fatalf("expected upper case code, got %q", repo.createdCode)
	}
	if course.Semester != 1 {
		t.Fatalf("expected default semester 1, got %d", course.Semester)
	}

	_, err = svc.CreateCourse(context.Background(), CreateCourseParams{Semester: -2})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || len(vErr.FieldErrors) != 3 {
		t.Fatalf("expected three field errors, got %v", err)
	}
}

func TestCatalogService_CreateCourse_Duplicate(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoStub{err: &persistence.ConstraintError{Kind: persistence.ConstraintUnique, Constraint: "courses.code"}}
	svc := NewCatalogService(repo, fastRetry, nil, nil)

	if _, err := svc.CreateCourse(context.Background(), CreateCourseParams{Code: "CS101", Name: "Intro"}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCatalogService_CreateFacultyMember(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoStub{}
	svc := NewCatalogService(repo, fastRetry, func() string { return facultyID }, nil)

	member, err := svc.CreateFacultyMember(context.Background(), CreateFacultyMemberParams{Name: "Ada", Email: "Ada@Example.edu"})
	if err != nil {
		t.Fatalf("CreateFacultyMember returned error: %v", err)
	}
	if member.ID != facultyID || repo.createdEmail != "ada@example.edu" {
		t.Fatalf("unexpected member %+v", member)
	}

	_, err = svc.CreateFacultyMember(context.Background(), CreateFacultyMemberParams{Name: "Ada", Email: "not an address"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["email"] == "" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestCatalogService_Lists(t *testing.T) {
	t.Parallel()

	repo := &catalogRepoStub{
		courses: []persistence.Course{{Code: "CS101", Name: "Intro", Semester: 1}},
		members: []persistence.FacultyMember{{ID: facultyID, Name: "Ada", Email: "ada@example.edu"}},
	}
	svc := NewCatalogService(repo, fastRetry, nil, nil)

	courses, err := svc.ListCourses(context.Background(), 0)
	if err != nil || len(courses) != 1 || courses[0].Code != "CS101" {
		t.Fatalf("unexpected courses %+v (%v)", courses, err)
	}

	if _, err := svc.ListCourses(context.Background(), 2); err != nil {
		t.Fatalf("ListCourses by semester returned error: %v", err)
	}
	if repo.lastCourseFilter.Semester != 2 {
		t.Fatalf("expected semester filter to reach storage, got %+v", repo.lastCourseFilter)
	}

	var vErr *ValidationError
	if _, err := svc.ListCourses(context.Background(), -1); !errors.As(err, &vErr) || vErr.FieldErrors["semester"] == "" {
		t.Fatalf("expected semester validation error, got %v", err)
	}
	members, err := svc.ListFacultyMembers(context.Background())
	if err != nil || len(members) != 1 || members[0].Email != "ada@example.edu" {
		t.Fatalf("unexpected members %+v (%v)", members, err)
	}

	repo.err = persistence.Unavailable(errors.New("refused"))
	if _, err := svc.ListCourses(context.Background(), 0); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
