// Package timeofday converts the time representations found in exam and
// attendance records into a single timezone-naive time-of-day value.
//
// Offsets attached to datetime inputs are parsed and then discarded: the wall
// clock reading in the offset the value was written in is kept as is. Two
// inputs that denote the same instant in different offsets therefore compare
// as different times of day.
package timeofday

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day is the exclusive upper bound of a TimeOfDay.
const Day = 24 * time.Hour

var (
	// ErrMalformedTimeValue is returned when an input cannot be read as a time of day.
	ErrMalformedTimeValue = errors.New("timeofday: malformed time value")
	// ErrMalformedDateValue is returned when an input cannot be read as a calendar date.
	ErrMalformedDateValue = errors.New("timeofday: malformed date value")
)

// MalformedTimeError records the input that failed normalization.
type MalformedTimeError struct {
	Value any
}

// Error implements the error interface.
func (e *MalformedTimeError) Error() string {
	if e == nil {
		return ErrMalformedTimeValue.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformedTimeValue.Error(), quote(e.Value))
}

// Unwrap exposes ErrMalformedTimeValue to errors.Is.
func (e *MalformedTimeError) Unwrap() error {
	return ErrMalformedTimeValue
}

// TimeOfDay is the offset from midnight of a wall clock reading.
type TimeOfDay time.Duration

// New builds a TimeOfDay from clock components.
func New(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// FromTime returns the wall clock of t in its own location.
func FromTime(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return New(h, m, s) + TimeOfDay(t.Nanosecond())
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(time.Duration(t) / time.Hour) }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(time.Duration(t) % time.Hour / time.Minute) }

// Second returns the second component.
func (t TimeOfDay) Second() int { return int(time.Duration(t) % time.Minute / time.Second) }

// Nanosecond returns the sub-second component.
func (t TimeOfDay) Nanosecond() int { return int(time.Duration(t) % time.Second) }

// Before reports whether t is earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

// After reports whether t is later in the day than u.
func (t TimeOfDay) After(u TimeOfDay) bool { return t > u }

// Equal reports whether t and u are the same instant of the day.
func (t TimeOfDay) Equal(u TimeOfDay) bool { return t == u }

// Compare returns -1, 0 or +1.
func (t TimeOfDay) Compare(u TimeOfDay) int {
	switch {
	case t < u:
		return -1
	case t > u:
		return 1
	default:
		return 0
	}
}

// String formats the value as HH:MM:SS, with a fraction only when present.
func (t TimeOfDay) String() string {
	base := fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	if ns := t.Nanosecond(); ns != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", ns), "0")
		return base + "." + frac
	}
	return base
}

// Normalize converts value into a TimeOfDay.
//
// Supported inputs are bare time strings ("06:08:42", "09:30"), datetime
// strings with or without an offset or trailing Z, time strings carrying an
// offset, time.Time values and TimeOfDay values.
func Normalize(value any) (TimeOfDay, error) {
	switch v := value.(type) {
	case TimeOfDay:
		return v, nil
	case *TimeOfDay:
		if v == nil {
			return 0, &MalformedTimeError{Value: value}
		}
		return *v, nil
	case time.Time:
		if v.IsZero() {
			return 0, &MalformedTimeError{Value: value}
		}
		return FromTime(v), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return 0, &MalformedTimeError{Value: value}
		}
		return FromTime(*v), nil
	case string:
		return parseString(v)
	default:
		return 0, &MalformedTimeError{Value: value}
	}
}

// Parse is Normalize for string inputs.
func Parse(value string) (TimeOfDay, error) {
	return parseString(value)
}

// MustParse panics when value cannot be parsed. Intended for fixtures.
func MustParse(value string) TimeOfDay {
	t, err := parseString(value)
	if err != nil {
		panic(err)
	}
	return t
}

var bareLayouts = []string{"15:04:05", "15:04"}

var offsetTimeLayouts = []string{
	"15:04:05-07:00",
	"15:04:05-0700",
	"15:04:05-07",
	"15:04:05",
}

func parseString(raw string) (TimeOfDay, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, &MalformedTimeError{Value: raw}
	}

	if len(value) <= 8 {
		for _, layout := range bareLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return FromTime(t), nil
			}
		}
		return 0, &MalformedTimeError{Value: raw}
	}

	value = rewriteUTCMarker(value)
	if t, ok := parseDateTime(value); ok {
		return FromTime(t), nil
	}
	for _, layout := range offsetTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return FromTime(t), nil
		}
	}
	return 0, &MalformedTimeError{Value: raw}
}

var dateTimeLayouts = buildDateTimeLayouts()

func buildDateTimeLayouts() []string {
	offsets := []string{"-07:00", "-0700", "-07", ""}
	clocks := []string{"15:04:05", "15:04"}
	layouts := make([]string, 0, 2*len(clocks)*len(offsets))
	for _, sep := range []string{"T", " "} {
		for _, clock := range clocks {
			for _, offset := range offsets {
				layouts = append(layouts, "2006-01-02"+sep+clock+offset)
			}
		}
	}
	return layouts
}

func parseDateTime(value string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rewriteUTCMarker turns a trailing Z into an explicit +00:00 offset.
func rewriteUTCMarker(value string) string {
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		return value[:len(value)-1] + "+00:00"
	}
	return value
}

// ParseTimestamp parses a full datetime string. A trailing Z is read as UTC and
// strings without an offset are assumed to be UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := rewriteUTCMarker(strings.TrimSpace(raw))
	if t, ok := parseDateTime(value); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimeValue, raw)
}

// ParseDate reads a calendar date from a YYYY-MM-DD string or from the date
// part of a datetime string. The result is midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, ok := parseDateTime(rewriteUTCMarker(value)); ok {
		return DateOf(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDateValue, raw)
}

// DateOf drops the clock and location of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func quote(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", value)
}
