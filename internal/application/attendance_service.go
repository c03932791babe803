package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/persistence"
	"github.com/example/campus-scheduler/internal/timeofday"
	"github.com/google/uuid"
)

// DefaultAttendanceWindow is the minimum gap between two attendance marks.
const DefaultAttendanceWindow = 2 * time.Hour

const (
	defaultStatsDays = 30
	maxStatsDays     = 366
)

// AttendanceService enforces the attendance window and reports statistics.
type AttendanceService struct {
	records     persistence.AttendanceRepository
	window      time.Duration
	retry       RetryPolicy
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for attendance operations. A
// non-positive window falls back to DefaultAttendanceWindow.
func NewAttendanceService(records persistence.AttendanceRepository, window time.Duration, retry RetryPolicy, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if window <= 0 {
		window = DefaultAttendanceWindow
	}
	if idGenerator == nil {
		idGenerator = func() string { return uuid.NewString() }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		records:     records,
		window:      window,
		retry:       retry,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// CanMarkAttendance reports whether regNumber may mark attendance now. Only
// today's records are considered. A latest timestamp that cannot be parsed
// allows the mark; a storage failure does not.
func (s *AttendanceService) CanMarkAttendance(ctx context.Context, regNumber string) (Eligibility, error) {
	regNumber = strings.TrimSpace(regNumber)
	if regNumber == "" {
		vErr := &ValidationError{}
		vErr.add("reg_number", "reg_number is required")
		return Eligibility{}, vErr
	}

	logger := s.loggerWith(ctx, "CanMarkAttendance", "reg_number", regNumber)
	now := s.now().UTC()
	today := timeofday.FormatDate(now)

	var records []persistence.AttendanceRecord
	err := s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.records.ListAttendance(ctx, persistence.AttendanceFilter{RegNumber: regNumber, From: today, To: today})
		return listErr
	})
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to load attendance", "error", err, "error_kind", ErrorKind(err))
		return Eligibility{Allowed: false, Message: "error checking attendance"}, err
	}

	if len(records) == 0 {
		return Eligibility{Allowed: true, Message: "no previous attendance record today"}, nil
	}

	latest := records[0]
	for _, record := range records[1:] {
		if record.Timestamp > latest.Timestamp {
			latest = record
		}
	}

	lastMarked, err := timeofday.ParseTimestamp(latest.Timestamp)
	if err != nil {
		logger.WarnContext(ctx, "unparsable attendance timestamp", "attendance_id", latest.ID, "timestamp", latest.Timestamp)
		return Eligibility{
			Allowed: true,
			Message: fmt.Sprintf("unable to parse previous attendance timestamp: %v", err),
		}, nil
	}

	if elapsed := now.Sub(lastMarked); elapsed < s.window {
		nextAllowed := lastMarked.Add(s.window)
		minutes := int(nextAllowed.Sub(now) / time.Minute)
		if minutes < 1 {
			minutes = 1
		}
		return Eligibility{
			Allowed:          false,
			Message:          fmt.Sprintf("attendance already marked, can mark again in %d minutes", minutes),
			LastMarked:       &lastMarked,
			NextAllowed:      &nextAllowed,
			MinutesRemaining: minutes,
		}, nil
	}

	return Eligibility{Allowed: true, Message: "can mark attendance"}, nil
}

// MarkAttendance records an attendance mark when the window allows it.
func (s *AttendanceService) MarkAttendance(ctx context.Context, params MarkAttendanceParams) (record AttendanceRecord, err error) {
	logger := s.loggerWith(ctx, "MarkAttendance", "reg_number", params.RegNumber)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark attendance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("attendance_id", record.ID, "status", record.Status).InfoContext(ctx, "attendance marked")
	}()

	status := strings.ToLower(strings.TrimSpace(params.Status))
	if status == "" {
		status = StatusPresent
	}
	if status != StatusPresent && status != StatusLate && status != StatusAbsent {
		vErr := &ValidationError{}
		vErr.add("status", "status must be one of present, late, absent")
		err = vErr
		return
	}

	eligibility, err := s.CanMarkAttendance(ctx, params.RegNumber)
	if err != nil {
		return
	}
	if !eligibility.Allowed {
		err = &AttendanceWindowError{
			LastMarked:       *eligibility.LastMarked,
			NextAllowed:      *eligibility.NextAllowed,
			MinutesRemaining: eligibility.MinutesRemaining,
		}
		return
	}

	var courseCode *string
	if code := strings.TrimSpace(params.CourseCode); code != "" {
		courseCode = &code
	}

	persisted, err := s.records.InsertAttendance(ctx, persistence.AttendanceRecord{
		ID:         s.idGenerator(),
		RegNumber:  strings.TrimSpace(params.RegNumber),
		CourseCode: courseCode,
		Status:     status,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	record = toAttendanceRecord(persisted)
	return
}

// AttendanceStats summarises the last days of attendance for regNumber. The
// rate counts present and late marks as attended.
func (s *AttendanceService) AttendanceStats(ctx context.Context, regNumber string, days int) (AttendanceStats, error) {
	vErr := &ValidationError{}
	regNumber = strings.TrimSpace(regNumber)
	if regNumber == "" {
		vErr.add("reg_number", "reg_number is required")
	}
	if days == 0 {
		days = defaultStatsDays
	}
	if days < 0 || days > maxStatsDays {
		vErr.add("days", fmt.Sprintf("days must be between 1 and %d", maxStatsDays))
	}
	if vErr.HasErrors() {
		return AttendanceStats{}, vErr
	}

	to := timeofday.DateOf(s.now().UTC())
	from := to.AddDate(0, 0, -days)

	var records []persistence.AttendanceRecord
	err := s.retry.do(ctx, func() error {
		var listErr error
		records, listErr = s.records.ListAttendance(ctx, persistence.AttendanceFilter{
			RegNumber: regNumber,
			From:      timeofday.FormatDate(from),
			To:        timeofday.FormatDate(to),
		})
		return listErr
	})
	if err != nil {
		return AttendanceStats{}, mapRepoError(err)
	}

	stats := AttendanceStats{
		RegNumber: regNumber,
		From:      from,
		To:        to,
		Total:     len(records),
		ByDate:    make(map[string][]AttendanceRecord),
	}
	for _, record := range records {
		switch record.Status {
		case StatusPresent:
			stats.Present++
		case StatusLate:
			stats.Late++
		case StatusAbsent:
			stats.Absent++
		}
		day := record.Timestamp
		if len(day) > len(time.DateOnly) {
			day = day[:len(time.DateOnly)]
		}
		stats.ByDate[day] = append(stats.ByDate[day], toAttendanceRecord(record))
	}
	if stats.Total > 0 {
		rate := float64(stats.Present+stats.Late) / float64(stats.Total) * 100
		stats.AttendanceRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

func toAttendanceRecord(record persistence.AttendanceRecord) AttendanceRecord {
	return AttendanceRecord{
		ID:         record.ID,
		RegNumber:  record.RegNumber,
		CourseCode: copyStringPtr(record.CourseCode),
		Status:     record.Status,
		Timestamp:  record.Timestamp,
		CreatedAt:  record.CreatedAt,
	}
}
