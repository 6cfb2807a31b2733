package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

type scheduleRepoStub struct {
	schedules []EmployeeSchedule
	err       error
	createErr error
	filters   []ScheduleRepositoryFilter
}

func (s *scheduleRepoStub) CreateSchedule(ctx context.Context, schedule EmployeeSchedule) (EmployeeSchedule, error) {
	if s.createErr != nil {
		return EmployeeSchedule{}, s.createErr
	}
	s.schedules = append(s.schedules, schedule)
	return schedule, nil
}

func (s *scheduleRepoStub) GetSchedule(ctx context.Context, id string) (EmployeeSchedule, error) {
	for _, schedule := range s.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return EmployeeSchedule{}, persistence.ErrNotFound
}

func (s *scheduleRepoStub) UpdateSchedule(ctx context.Context, schedule EmployeeSchedule) (EmployeeSchedule, error) {
	for i := range s.schedules {
		if s.schedules[i].ID == schedule.ID {
			s.schedules[i] = schedule
			return schedule, nil
		}
	}
	return EmployeeSchedule{}, persistence.ErrNotFound
}

func (s *scheduleRepoStub) DeleteSchedule(ctx context.Context, id string) error {
	for i := range s.schedules {
		if s.schedules[i].ID == id {
			s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *scheduleRepoStub) ListSchedules(ctx context.Context, filter ScheduleRepositoryFilter) ([]EmployeeSchedule, error) {
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	var out []EmployeeSchedule
	for _, schedule := range s.schedules {
		if filter.UserID != "" && schedule.UserID != filter.UserID {
			continue
		}
		if filter.ActiveOnly && !schedule.Active {
			continue
		}
		out = append(out, schedule)
	}
	return out, nil
}

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestScheduleService_CreateSchedule(t *testing.T) {
	t.Run("requires manager privileges", func(t *testing.T) {
		svc := NewScheduleService(&scheduleRepoStub{}, nil, nil)
		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: employeePrincipal,
			Input:     ScheduleInput{UserID: "employee-1", DayOfWeek: intPtr(1), ShiftStart: "09:00", ShiftEnd: "17:00"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required fields", func(t *testing.T) {
		svc := NewScheduleService(&scheduleRepoStub{}, nil, nil)
		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: managerPrincipal,
			Input:     ScheduleInput{ShiftStart: "9am", ShiftEnd: ""},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"user_id", "day_of_week", "shift_start", "shift_end"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("validates date bounds", func(t *testing.T) {
		svc := NewScheduleService(&scheduleRepoStub{}, nil, nil)
		cases := map[string]ScheduleInput{
			"end before effective": {UserID: "u", EffectiveDate: strPtr("2024-03-10"), EndDate: strPtr("2024-03-01"), ShiftStart: "09:00", ShiftEnd: "17:00"},
			"end without effective": {UserID: "u", DayOfWeek: intPtr(1), EndDate: strPtr("2024-03-01"), ShiftStart: "09:00", ShiftEnd: "17:00"},
			"malformed end":         {UserID: "u", EffectiveDate: strPtr("2024-03-10"), EndDate: strPtr("10/03/2024"), ShiftStart: "09:00", ShiftEnd: "17:00"},
		}
		for name, input := range cases {
			_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{Principal: managerPrincipal, Input: input})
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors["end_date"] == "" {
				t.Fatalf("%s: expected end_date validation error, got %v", name, err)
			}
		}

		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: managerPrincipal,
			Input:     ScheduleInput{UserID: "u", DayOfWeek: intPtr(7), ShiftStart: "09:00", ShiftEnd: "17:00"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["day_of_week"] == "" {
			t.Fatalf("expected day_of_week validation error, got %v", err)
		}
	})

	t.Run("persists overnight shifts", func(t *testing.T) {
		repo := &scheduleRepoStub{}
		svc := NewScheduleService(repo, sequentialIDs("schedule"), fixedClock())

		schedule, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal,
			Input:     ScheduleInput{UserID: " employee-1 ", DayOfWeek: intPtr(5), ShiftStart: "22:00", ShiftEnd: "06:00", LocationID: strPtr(" ")},
		})
		if err != nil {
			t.Fatalf("CreateSchedule failed: %v", err)
		}
		if schedule.ID != "schedule-1" || schedule.UserID != "employee-1" || !schedule.Active {
			t.Fatalf("unexpected schedule %+v", schedule)
		}
		if schedule.DayOfWeek == nil || *schedule.DayOfWeek != time.Friday {
			t.Fatalf("expected Friday, got %v", schedule.DayOfWeek)
		}
		if schedule.ShiftStart.String() != "22:00" || schedule.ShiftEnd.String() != "06:00" || schedule.LocationID != nil {
			t.Fatalf("unexpected shift fields %+v", schedule)
		}
	})

	t.Run("maps unknown users to a field error", func(t *testing.T) {
		repo := &scheduleRepoStub{createErr: persistence.ErrForeignKeyViolation}
		svc := NewScheduleService(repo, sequentialIDs("schedule"), fixedClock())

		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal,
			Input:     ScheduleInput{UserID: "ghost", DayOfWeek: intPtr(1), ShiftStart: "09:00", ShiftEnd: "17:00"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["user_id"] == "" {
			t.Fatalf("expected user_id validation error, got %v", err)
		}
	})
}

func TestScheduleService_UpdateSchedule(t *testing.T) {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	repo := &scheduleRepoStub{schedules: []EmployeeSchedule{{ID: "s-1", UserID: "employee-1", DayOfWeek: weekdayPtr(time.Monday), ShiftStart: 9 * 60, ShiftEnd: 17 * 60, Active: false, CreatedAt: created}}}
	svc := NewScheduleService(repo, nil, fixedClock())

	updated, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{
		Principal:  managerPrincipal,
		ScheduleID: "s-1",
		Input:      ScheduleInput{UserID: "employee-1", EffectiveDate: strPtr("2024-03-04"), ShiftStart: "10:00", ShiftEnd: "18:00"},
	})
	if err != nil {
		t.Fatalf("UpdateSchedule failed: %v", err)
	}
	if updated.DayOfWeek != nil || updated.EffectiveDate == nil || updated.Active || !updated.CreatedAt.Equal(created) {
		t.Fatalf("unexpected update %+v", updated)
	}

	if _, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{Principal: managerPrincipal, ScheduleID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleService_ListSchedules(t *testing.T) {
	repo := &scheduleRepoStub{schedules: []EmployeeSchedule{
		{ID: "s-2", UserID: "employee-2", Active: true},
		{ID: "s-1", UserID: "employee-1", Active: true},
		{ID: "s-3", UserID: "employee-1", Active: false},
	}}
	svc := NewScheduleService(repo, nil, nil)

	t.Run("employees are restricted to their own schedules", func(t *testing.T) {
		got, err := svc.ListSchedules(context.Background(), ListSchedulesParams{Principal: employeePrincipal})
		if err != nil {
			t.Fatalf("ListSchedules failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "s-1" || got[1].ID != "s-3" {
			t.Fatalf("unexpected schedules %+v", got)
		}

		if _, err := svc.ListSchedules(context.Background(), ListSchedulesParams{Principal: employeePrincipal, UserID: "employee-2"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("managers see every user ordered by user", func(t *testing.T) {
		got, err := svc.ListSchedules(context.Background(), ListSchedulesParams{Principal: managerPrincipal, ActiveOnly: true})
		if err != nil {
			t.Fatalf("ListSchedules failed: %v", err)
		}
		if len(got) != 2 || got[0].UserID != "employee-1" || got[1].UserID != "employee-2" {
			t.Fatalf("unexpected schedules %+v", got)
		}
	})
}

func TestScheduleService_ResolveSchedule(t *testing.T) {
	// 2024-03-04 is a Monday.
	repo := &scheduleRepoStub{schedules: []EmployeeSchedule{
		{ID: "recurring", UserID: "employee-1", DayOfWeek: weekdayPtr(time.Monday), ShiftStart: 8 * 60, ShiftEnd: 16 * 60, Active: true},
		{ID: "override", UserID: "employee-1", EffectiveDate: dayPtr(2024, time.March, 1), EndDate: dayPtr(2024, time.March, 10), ShiftStart: 10 * 60, ShiftEnd: 18 * 60, Active: true},
		{ID: "other-user", UserID: "employee-2", DayOfWeek: weekdayPtr(time.Monday), ShiftStart: 7 * 60, ShiftEnd: 15 * 60, Active: true},
	}}
	svc := NewScheduleService(repo, nil, nil)

	t.Run("date-specific schedule wins", func(t *testing.T) {
		got, ok, err := svc.ResolveSchedule(context.Background(), ResolveScheduleParams{Principal: employeePrincipal, Date: "2024-03-04"})
		if err != nil || !ok || got.ID != "override" {
			t.Fatalf("expected override, got %+v ok=%v err=%v", got, ok, err)
		}
	})

	t.Run("recurring applies outside the override", func(t *testing.T) {
		got, ok, err := svc.ResolveSchedule(context.Background(), ResolveScheduleParams{Principal: employeePrincipal, Date: "2024-03-11"})
		if err != nil || !ok || got.ID != "recurring" {
			t.Fatalf("expected recurring, got %+v ok=%v err=%v", got, ok, err)
		}
	})

	t.Run("reports no schedule", func(t *testing.T) {
		_, ok, err := svc.ResolveSchedule(context.Background(), ResolveScheduleParams{Principal: employeePrincipal, Date: "2024-03-12"})
		if err != nil || ok {
			t.Fatalf("expected no schedule, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("employees cannot resolve other users", func(t *testing.T) {
		_, _, err := svc.ResolveSchedule(context.Background(), ResolveScheduleParams{Principal: employeePrincipal, UserID: "employee-2", Date: "2024-03-04"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("requires a valid date", func(t *testing.T) {
		_, _, err := svc.ResolveSchedule(context.Background(), ResolveScheduleParams{Principal: managerPrincipal, UserID: "employee-2", Date: "04.03.2024"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["date"] == "" {
			t.Fatalf("expected date validation error, got %v", err)
		}
	})
}
