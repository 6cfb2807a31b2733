// Package scheduler resolves the shift that applies to an employee on a given
// day and classifies check-ins against it.
package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// DefaultLateGrace is how long after shift start a check-in still counts as present.
const DefaultLateGrace = 15 * time.Minute

// ErrInvalidTimeOfDay indicates a malformed HH:MM value.
var ErrInvalidTimeOfDay = errors.New("scheduler: invalid time of day")

// TimeOfDay is a wall-clock time without a date, stored as minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (or "HH:MM:SS", seconds ignored).
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return TimeOfDay(ts.Hour()*60 + ts.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats the value as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On returns the instant this time of day occurs on the given calendar date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// Day truncates t to its calendar date in loc, returned as midnight UTC so that
// dates compare and format independently of the zone they came from.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// Shift is the subset of an employee schedule needed for matching.
type Shift struct {
	ID            string
	DayOfWeek     *time.Weekday
	EffectiveDate *time.Time
	EndDate       *time.Time
	Start         TimeOfDay
	End           TimeOfDay
	LocationID    *string
	Active        bool
}

// DateSpecific reports whether the shift is bound to an explicit date range.
func (s Shift) DateSpecific() bool {
	return s.EffectiveDate != nil
}

// Covers reports whether the shift applies on the given calendar date.
func (s Shift) Covers(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if s.DayOfWeek != nil && *s.DayOfWeek != day.Weekday() {
		return false
	}
	if s.EffectiveDate == nil {
		return s.DayOfWeek != nil
	}
	start := *s.EffectiveDate
	end := start
	if s.EndDate != nil {
		end = *s.EndDate
	}
	return !day.Before(start) && !day.After(end)
}

// Match picks the shift that applies on date. Date-specific shifts take
// precedence over recurring ones; within each class the first covering shift
// in the supplied order wins. Inactive shifts are ignored.
func Match(shifts []Shift, date time.Time) (Shift, bool) {
	var recurring *Shift
	for i := range shifts {
		shift := shifts[i]
		if !shift.Active || !shift.Covers(date) {
			continue
		}
		if shift.DateSpecific() {
			return shift, true
		}
		if recurring == nil {
			recurring = &shifts[i]
		}
	}
	if recurring != nil {
		return *recurring, true
	}
	return Shift{}, false
}

// AttendanceStatus is the punctuality classification of an attendance row.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusLate    AttendanceStatus = "late"
	StatusAbsent  AttendanceStatus = "absent"
)

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// Classify returns StatusLate when checkIn is strictly later than the shift
// start on the check-in's local date plus grace, StatusPresent otherwise. A
// nil shift always yields StatusPresent.
func Classify(checkIn time.Time, shift *Shift, grace time.Duration, loc *time.Location) AttendanceStatus {
	if shift == nil {
		return StatusPresent
	}
	if loc == nil {
		loc = time.UTC
	}
	local := checkIn.In(loc)
	threshold := shift.Start.On(local, loc).Add(grace)
	if local.After(threshold) {
		return StatusLate
	}
	return StatusPresent
}
