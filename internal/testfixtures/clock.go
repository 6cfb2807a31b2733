package testfixtures

import (
	"sync"
	"time"

	"github.com/example/attendance-tracker/internal/scheduler"
)

// Clock is a controllable time source for attendance tests. It tracks an
// instant plus the zone that work dates and shift times are read in.
type Clock struct {
	mu       sync.Mutex
	current  time.Time
	location *time.Location
}

// NewClock returns a UTC clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start, location: time.UTC}
}

// NewWorkdayClock returns a clock on date at the given time of day in loc.
func NewWorkdayClock(date time.Time, at scheduler.TimeOfDay, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{current: at.On(date, loc), location: loc}
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection into services.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// WorkDate is the calendar day of the current instant in the clock's zone.
func (c *Clock) WorkDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return scheduler.Day(c.current, c.location)
}

// At moves the clock to the given time of day on its current work date,
// e.g. At(shift.Start) followed by Advance(grace) sits on the late boundary.
func (c *Clock) At(t scheduler.TimeOfDay) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t.On(scheduler.Day(c.current, c.location), c.location)
	return c.current
}

// NextWorkDate moves the clock to the same time of day on the following date.
func (c *Clock) NextWorkDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.In(c.location).AddDate(0, 0, 1)
	return c.current
}
