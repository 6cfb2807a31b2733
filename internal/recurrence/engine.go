package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Frequency represents supported job template recurrence intervals.
type Frequency string

const (
	// FrequencyDaily yields every day within the range.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly yields the days whose weekday equals the rule's DayOfWeek.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly yields the days whose day-of-month equals the rule's DayOfMonth.
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency normalizes and validates a frequency label.
func ParseFrequency(value string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(value)))
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
}

// Rule describes when a job template produces a checklist item.
type Rule struct {
	Frequency  Frequency
	DayOfWeek  *time.Weekday
	DayOfMonth *int
}

// ErrInvalidFrequency indicates the recurrence frequency is not supported.
var ErrInvalidFrequency = errors.New("recurrence: invalid frequency")

// ErrInvalidWindow indicates the generation window ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: window end precedes start")

// ErrIncompleteRule indicates a weekly or monthly rule lacks its anchor day.
var ErrIncompleteRule = errors.New("recurrence: rule is missing its anchor day")

// Validate checks that the rule carries the fields its frequency needs.
func (r Rule) Validate() error {
	switch r.Frequency {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if r.DayOfWeek == nil || *r.DayOfWeek < time.Sunday || *r.DayOfWeek > time.Saturday {
			return ErrIncompleteRule
		}
		return nil
	case FrequencyMonthly:
		if r.DayOfMonth == nil || *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return ErrIncompleteRule
		}
		return nil
	}
	return ErrInvalidFrequency
}

// Matches reports whether the rule produces an item on the given date. Months
// shorter than DayOfMonth produce nothing for monthly rules.
func (r Rule) Matches(date time.Time) bool {
	switch r.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return r.DayOfWeek != nil && date.Weekday() == *r.DayOfWeek
	case FrequencyMonthly:
		return r.DayOfMonth != nil && date.Day() == *r.DayOfMonth
	}
	return false
}

// Days enumerates calendar dates from through to inclusive, as midnight UTC.
func Days(from, to time.Time) ([]time.Time, error) {
	start := truncate(from)
	end := truncate(to)
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}
	days := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		days = append(days, current)
	}
	return days, nil
}

// Dates expands the rule over the inclusive window.
func Dates(rule Rule, from, to time.Time) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	days, err := Days(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(days))
	for _, day := range days {
		if rule.Matches(day) {
			out = append(out, day)
		}
	}
	return out, nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
