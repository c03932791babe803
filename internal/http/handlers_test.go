package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/timeofday"
)

const facultyID = "3f2b8c1e-7a4d-4c9e-8f10-2b6a5d9e0c11"

var discard = slog.New(slog.DiscardHandler)

type examServiceStub struct {
	scheduled application.ScheduleExamParams
	updated   application.UpdateExamParams
	listed    application.ListExamsParams
	exam      application.Exam
	exams     []application.Exam
	err       error
}

func (s *examServiceStub) ScheduleExam(ctx context.Context, params application.ScheduleExamParams) (application.Exam, error) {
	s.scheduled = params
	return s.exam, s.err
}

func (s *examServiceStub) GetExam(ctx context.Context, id string) (application.Exam, error) {
	return s.exam, s.err
}

func (s *examServiceStub) ListExams(ctx context.Context, params application.ListExamsParams) ([]application.Exam, error) {
	s.listed = params
	return s.exams, s.err
}

func (s *examServiceStub) UpdateExam(ctx context.Context, params application.UpdateExamParams) (application.Exam, error) {
	s.updated = params
	return s.exam, s.err
}

func (s *examServiceStub) DeleteExam(ctx context.Context, id string) error {
	return s.err
}

type attendanceServiceStub struct {
	eligibility application.Eligibility
	record      application.AttendanceRecord
	stats       application.AttendanceStats
	days        int
	err         error
}

func (s *attendanceServiceStub) CanMarkAttendance(ctx context.Context, regNumber string) (application.Eligibility, error) {
	return s.eligibility, s.err
}

func (s *attendanceServiceStub) MarkAttendance(ctx context.Context, params application.MarkAttendanceParams) (application.AttendanceRecord, error) {
	return s.record, s.err
}

func (s *attendanceServiceStub) AttendanceStats(ctx context.Context, regNumber string, days int) (application.AttendanceStats, error) {
	s.days = days
	return s.stats, s.err
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(ctx context.Context) error { return p.err }

func sampleExam() application.Exam {
	return application.Exam{
		ID:         "exam-1",
		CourseCode: "CS101",
		ExamDate:   time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Start:      timeofday.New(9, 0, 0),
		End:        timeofday.New(11, 0, 0),
	}
}

func serve(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func TestExamHandlers_Schedule(t *testing.T) {
	t.Parallel()

	t.Run("returns 201 with the booked exam", func(t *testing.T) {
		t.Parallel()

		stub := &examServiceStub{exam: sampleExam()}
		router := NewRouter(RouterConfig{Exams: NewExamHandler(stub, discard)})

		recorder := serve(t, router, http.MethodPost, "/exams/schedule",
			`{"course_code":"CS101","exam_date":"2024-06-10","start_time":"09:00","end_time":"1970-01-01T11:00:00Z","scheduled_by":"`+facultyID+`"}`)

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}
		var resp scheduleExamResponse
		if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Exam.ID != "exam-1" || resp.Exam.StartTime != "09:00:00" || resp.Exam.ExamDate != "2024-06-10" {
			t.Fatalf("unexpected exam payload %+v", resp.Exam)
		}
		if stub.scheduled.EndTime != "1970-01-01T11:00:00Z" || stub.scheduled.ScheduledBy != facultyID {
			t.Fatalf("expected request fields to reach the service, got %+v", stub.scheduled)
		}
	})

	t.Run("maps service errors to status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err      error
			wantCode int
			wantKind string
		}{
			{&application.ClashError{Scope: application.ScopeCourse, Key: "CS101"}, http.StatusConflict, "EXAM_CLASH"},
			{fmt.Errorf("start_time: %w", &timeofday.MalformedTimeError{Value: "25:00"}), http.StatusBadRequest, "MALFORMED_TIME"},
			{fmt.Errorf("%w: exams_scheduled_by_fkey", application.ErrUnauthorizedActor), http.StatusUnauthorized, "UNKNOWN_FACULTY"},
			{fmt.Errorf("%w: exams_course_code_fkey", application.ErrInvalidCourse), http.StatusBadRequest, "INVALID_COURSE"},
			{&application.ConstraintError{Constraint: "exams_time_order"}, http.StatusBadRequest, "CONSTRAINT_VIOLATION"},
			{&application.ValidationError{FieldErrors: map[string]string{"end_time": "end_time must be after start_time"}}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
			{fmt.Errorf("%w: refused", application.ErrStorageUnavailable), http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
			{application.ErrCorruptRecord, http.StatusInternalServerError, ""},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.wantKind, func(t *testing.T) {
				t.Parallel()

				router := NewRouter(RouterConfig{Exams: NewExamHandler(&examServiceStub{err: tc.err}, discard)})
				recorder := serve(t, router, http.MethodPost, "/exams",
					`{"course_code":"CS101","exam_date":"2024-06-10","start_time":"09:00","end_time":"10:00"}`)

				if recorder.Code != tc.wantCode {
					t.Fatalf("expected %d, got %d", tc.wantCode, recorder.Code)
				}
				if resp := decodeError(t, recorder); resp.ErrorCode != tc.wantKind {
					t.Fatalf("expected error code %q, got %q", tc.wantKind, resp.ErrorCode)
				}
			})
		}
	})

	t.Run("rejects malformed bodies before calling the service", func(t *testing.T) {
		t.Parallel()

		stub := &examServiceStub{}
		router := NewRouter(RouterConfig{Exams: NewExamHandler(stub, discard)})

		if recorder := serve(t, router, http.MethodPost, "/exams/schedule", `{"course_code":`); recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for broken JSON, got %d", recorder.Code)
		}

		recorder := serve(t, router, http.MethodPost, "/exams/schedule", `{"group_id":"not-a-uuid","start_time":"09:00","end_time":"10:00"}`)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		resp := decodeError(t, recorder)
		for _, field := range []string{"course_code", "exam_date", "group_id"} {
			if resp.Errors[field] == "" {
				t.Fatalf("expected %s error keyed by json name, got %v", field, resp.Errors)
			}
		}
		if resp.Errors["course_code"] != "course_code is required" {
			t.Fatalf("unexpected required message %q", resp.Errors["course_code"])
		}
		if stub.scheduled.CourseCode != "" {
			t.Fatalf("service should not have been called")
		}
	})
}

func TestExamHandlers_Resource(t *testing.T) {
	t.Parallel()

	stub := &examServiceStub{exam: sampleExam(), exams: []application.Exam{sampleExam()}}
	router := NewRouter(RouterConfig{Exams: NewExamHandler(stub, discard)})

	recorder := serve(t, router, http.MethodGet, "/exams?date=2024-06-10&course_code=CS101", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from list, got %d", recorder.Code)
	}
	if stub.listed.Date != "2024-06-10" || stub.listed.CourseCode != "CS101" {
		t.Fatalf("expected query to map to params, got %+v", stub.listed)
	}

	if recorder := serve(t, router, http.MethodGet, "/exams/exam-1", ""); recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from get, got %d", recorder.Code)
	}

	recorder = serve(t, router, http.MethodPut, "/exams/exam-1", `{"end_time":"12:00"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 from update, got %d", recorder.Code)
	}
	if stub.updated.ExamID != "exam-1" || stub.updated.EndTime == nil || *stub.updated.EndTime != "12:00" || stub.updated.StartTime != nil {
		t.Fatalf("unexpected update params %+v", stub.updated)
	}

	if recorder := serve(t, router, http.MethodDelete, "/exams/exam-1", ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from delete, got %d", recorder.Code)
	}

	if recorder := serve(t, router, http.MethodPatch, "/exams/exam-1", ""); recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}

	missing := NewRouter(RouterConfig{Exams: NewExamHandler(&examServiceStub{err: application.ErrNotFound}, discard)})
	if recorder := serve(t, missing, http.MethodGet, "/exams/nope", ""); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}

func TestAttendanceHandlers(t *testing.T) {
	t.Parallel()

	t.Run("window violation answers 429 with Retry-After", func(t *testing.T) {
		t.Parallel()

		last := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
		stub := &attendanceServiceStub{err: &application.AttendanceWindowError{LastMarked: last, NextAllowed: last.Add(2 * time.Hour), MinutesRemaining: 60}}
		router := NewRouter(RouterConfig{Attendance: NewAttendanceHandler(stub, discard)})

		recorder := serve(t, router, http.MethodPost, "/attendance", `{"reg_number":"REG-1"}`)
		if recorder.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", recorder.Code)
		}
		if got := recorder.Header().Get("Retry-After"); got != "3600" {
			t.Fatalf("expected Retry-After 3600, got %q", got)
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Attendance: NewAttendanceHandler(&attendanceServiceStub{}, discard)})
		recorder := serve(t, router, http.MethodPost, "/attendance", `{"reg_number":"REG-1","status":"excused"}`)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
	})

	t.Run("eligibility and stats", func(t *testing.T) {
		t.Parallel()

		stub := &attendanceServiceStub{
			eligibility: application.Eligibility{Allowed: true, Message: "can mark attendance"},
			stats:       application.AttendanceStats{RegNumber: "REG-1", Total: 4, Present: 3, AttendanceRate: 75},
		}
		router := NewRouter(RouterConfig{Attendance: NewAttendanceHandler(stub, discard)})

		recorder := serve(t, router, http.MethodGet, "/attendance/REG-1/eligibility", "")
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		var eligibility eligibilityDTO
		if err := json.NewDecoder(recorder.Body).Decode(&eligibility); err != nil || !eligibility.CanMark {
			t.Fatalf("unexpected eligibility %+v (%v)", eligibility, err)
		}

		recorder = serve(t, router, http.MethodGet, "/attendance/REG-1/stats?days=7", "")
		if recorder.Code != http.StatusOK || stub.days != 7 {
			t.Fatalf("expected stats for 7 days, got %d (%d)", recorder.Code, stub.days)
		}

		if recorder := serve(t, router, http.MethodGet, "/attendance/REG-1/stats?days=week", ""); recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for non-numeric days, got %d", recorder.Code)
		}
		if recorder := serve(t, router, http.MethodGet, "/attendance/REG-1/history", ""); recorder.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown action, got %d", recorder.Code)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	healthy := NewRouter(RouterConfig{Health: NewHealthHandler(pingerStub{}, discard)})
	if recorder := serve(t, healthy, http.MethodGet, "/healthz", ""); recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	down := NewRouter(RouterConfig{Health: NewHealthHandler(pingerStub{err: errors.New("down")}, discard)})
	if recorder := serve(t, down, http.MethodGet, "/healthz", ""); recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}
