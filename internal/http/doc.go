// Package http provides HTTP handlers and middleware for the campus scheduler API.
//
// The router exposes the following endpoints:
//   - POST /exams/schedule (also POST /exams): books an exam. Body:
//     {"course_code","group_id","exam_date","start_time","end_time","scheduled_by"}.
//     Returns 201 {"message","exam"}, 409 EXAM_CLASH when the slot overlaps an
//     exam in the same scope on the same date, 400 MALFORMED_TIME or
//     INVALID_COURSE, 401 UNKNOWN_FACULTY and 422 VALIDATION_FAILED.
//   - GET /exams?date=&course_code=&group_id=, GET/PUT/DELETE /exams/{id}:
//     exam listing and maintenance using the `examDTO` payload in exam_handler.go.
//     Updates are not re-checked for clashes.
//   - GET /assignments?course_code=, POST /assignments,
//     GET/PUT/DELETE /assignments/{id}: coursework exchanging `assignmentDTO`.
//   - POST /attendance, GET /attendance/{reg}/eligibility,
//     GET /attendance/{reg}/stats?days=: attendance marking limited to one mark
//     per window, answering 429 ATTENDANCE_WINDOW with Retry-After otherwise.
//   - GET/POST /courses, GET/POST /faculty: the catalog referenced by exams and
//     assignments.
//   - GET /healthz: storage ping.
//
// Error bodies are {"error_code","message","errors"}. Request/response DTOs
// live alongside their respective handlers so tests and documentation share
// the same ground truth.
package http
