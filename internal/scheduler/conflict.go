package scheduler

import "github.com/example/campus-scheduler/internal/timeofday"

// Interval is a half-open time range [Start, End) within a single day.
type Interval struct {
	Start timeofday.TimeOfDay
	End   timeofday.TimeOfDay
}

// Empty reports whether the interval has zero or negative width.
func (i Interval) Empty() bool {
	return !i.Start.Before(i.End)
}

// Overlaps reports whether two intervals share any instant. Intervals that only
// touch at an endpoint do not overlap, and an empty interval overlaps nothing.
func (i Interval) Overlaps(other Interval) bool {
	if i.Empty() || other.Empty() {
		return false
	}
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Slot is an already booked interval with the identifier of its record.
type Slot struct {
	ID string
	Interval
}

// HasClash reports whether candidate overlaps any of the existing intervals.
func HasClash(candidate Interval, existing []Interval) bool {
	for _, interval := range existing {
		if candidate.Overlaps(interval) {
			return true
		}
	}
	return false
}

// FirstClash returns the first existing slot that overlaps candidate.
func FirstClash(candidate Interval, existing []Slot) (Slot, bool) {
	for _, slot := range existing {
		if candidate.Overlaps(slot.Interval) {
			return slot, true
		}
	}
	return Slot{}, false
}
