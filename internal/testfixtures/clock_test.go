package testfixtures

import (
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/scheduler"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if got := clock.WorkDate().Format(scheduler.DateLayout); got != "2024-01-02" {
		t.Fatalf("work date = %s, want 2024-01-02", got)
	}
}

func TestWorkdayClockCrossesLateBoundary(t *testing.T) {
	monday := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	shift := &scheduler.Shift{Start: scheduler.TimeOfDay(9 * 60), End: scheduler.TimeOfDay(17 * 60), Active: true}
	clock := NewWorkdayClock(monday, shift.Start, time.UTC)

	if got := clock.Now(); !got.Equal(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v, want 09:00 on 2024-03-04", got)
	}

	onBoundary := clock.Advance(scheduler.DefaultLateGrace)
	if status := scheduler.Classify(onBoundary, shift, scheduler.DefaultLateGrace, time.UTC); status != scheduler.StatusPresent {
		t.Fatalf("status at grace boundary = %s, want present", status)
	}
	pastBoundary := clock.Advance(time.Minute)
	if status := scheduler.Classify(pastBoundary, shift, scheduler.DefaultLateGrace, time.UTC); status != scheduler.StatusLate {
		t.Fatalf("status past grace = %s, want late", status)
	}
}

func TestClockAtUsesLocalWorkDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 20:30 UTC on the 4th is already the 5th in Tokyo.
	clock := NewWorkdayClock(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), scheduler.TimeOfDay(5*60+30), tokyo)

	if got := clock.WorkDate().Format(scheduler.DateLayout); got != "2024-03-05" {
		t.Fatalf("work date = %s, want 2024-03-05", got)
	}
	at := clock.At(scheduler.TimeOfDay(18 * 60))
	if want := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC); !at.Equal(want) {
		t.Fatalf("At(18:00) = %v, want %v", at, want)
	}

	next := clock.NextWorkDate()
	if got := scheduler.Day(next, tokyo).Format(scheduler.DateLayout); got != "2024-03-06" {
		t.Fatalf("next work date = %s, want 2024-03-06", got)
	}
	if got := next.In(tokyo).Hour(); got != 18 {
		t.Fatalf("next work date hour = %d, want 18", got)
	}
}

func TestClockNowFuncFollowsAdvance(t *testing.T) {
	clock := NewClock(time.Date(2024, time.March, 4, 17, 0, 0, 0, time.UTC))
	nowFn := clock.NowFunc()

	clock.Advance(30 * time.Minute)
	if got := nowFn(); !got.Equal(time.Date(2024, time.March, 4, 17, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected check-out time 17:30, got %v", got)
	}

	clock.Set(time.Date(2024, time.March, 5, 8, 55, 0, 0, time.UTC))
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected %v from NowFunc, got %v", clock.Now(), got)
	}

	var missing *Clock
	if missing.NowFunc() == nil {
		t.Fatal("expected a nil clock to fall back to time.Now")
	}
}
