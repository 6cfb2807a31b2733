package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/attendance-tracker/internal/scheduler"
)

// ScheduleRepository captures the persistence interactions needed by the service.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule EmployeeSchedule) (EmployeeSchedule, error)
	GetSchedule(ctx context.Context, id string) (EmployeeSchedule, error)
	UpdateSchedule(ctx context.Context, schedule EmployeeSchedule) (EmployeeSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedules(ctx context.Context, filter ScheduleRepositoryFilter) ([]EmployeeSchedule, error)
}

// ScheduleRepositoryFilter narrows queries issued to the schedule repository.
// Results are expected in creation order.
type ScheduleRepositoryFilter struct {
	UserID     string
	ActiveOnly bool
}

// ScheduleService orchestrates validation, persistence and resolution of employee schedules.
type ScheduleService struct {
	schedules   ScheduleRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(schedules ScheduleRepository, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger wires dependencies and a logger for schedule operations.
func NewScheduleServiceWithLogger(schedules ScheduleRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// CreateSchedule validates the request before delegating to persistence.
func (s *ScheduleService) CreateSchedule(ctx context.Context, params CreateScheduleParams) (schedule EmployeeSchedule, err error) {
	if s == nil {
		return EmployeeSchedule{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := s.loggerWith(ctx, "CreateSchedule", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "schedule creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule created", "schedule_id", schedule.ID, "user_id", schedule.UserID)
	}()

	if !params.Principal.CanManage() {
		return EmployeeSchedule{}, ErrUnauthorized
	}

	schedule, err = buildSchedule(params.Input)
	if err != nil {
		return EmployeeSchedule{}, err
	}
	schedule.ID = s.idGenerator()
	schedule.Active = boolOr(params.Input.Active, true)
	schedule.CreatedAt = s.now()
	schedule.UpdatedAt = schedule.CreatedAt

	if s.schedules == nil {
		return schedule, nil
	}
	created, err := s.schedules.CreateSchedule(ctx, schedule)
	if err != nil {
		return EmployeeSchedule{}, mapRepoError(err, "user_id")
	}
	return created, nil
}

// UpdateSchedule replaces the definition of an existing schedule.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, params UpdateScheduleParams) (schedule EmployeeSchedule, err error) {
	if s == nil {
		return EmployeeSchedule{}, fmt.Errorf("ScheduleService is nil")
	}
	logger := s.loggerWith(ctx, "UpdateSchedule", "principal_id", params.Principal.UserID, "schedule_id", params.ScheduleID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "schedule update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated")
	}()

	if !params.Principal.CanManage() {
		return EmployeeSchedule{}, ErrUnauthorized
	}
	if s.schedules == nil {
		return EmployeeSchedule{}, fmt.Errorf("schedule repository not configured")
	}

	existing, err := s.schedules.GetSchedule(ctx, params.ScheduleID)
	if err != nil {
		return EmployeeSchedule{}, mapRepoError(err, "")
	}

	updated, err := buildSchedule(params.Input)
	if err != nil {
		return EmployeeSchedule{}, err
	}
	updated.ID = existing.ID
	updated.Active = boolOr(params.Input.Active, existing.Active)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	schedule, err = s.schedules.UpdateSchedule(ctx, updated)
	if err != nil {
		return EmployeeSchedule{}, mapRepoError(err, "user_id")
	}
	return schedule, nil
}

// DeleteSchedule ensures authorization before delegating to persistence.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, principal Principal, scheduleID string) (err error) {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	logger := s.loggerWith(ctx, "DeleteSchedule", "principal_id", principal.UserID, "schedule_id", scheduleID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "schedule deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule deleted")
	}()

	if !principal.CanManage() {
		return ErrUnauthorized
	}
	if s.schedules == nil {
		return fmt.Errorf("schedule repository not configured")
	}
	return mapRepoError(s.schedules.DeleteSchedule(ctx, scheduleID), "id")
}

// ListSchedules returns schedules ordered by user and creation. Employees only
// ever see their own schedules.
func (s *ScheduleService) ListSchedules(ctx context.Context, params ListSchedulesParams) ([]EmployeeSchedule, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if !params.Principal.Authenticated() {
		return nil, ErrUnauthorized
	}

	userID := strings.TrimSpace(params.UserID)
	if !params.Principal.CanManage() {
		if userID != "" && userID != params.Principal.UserID {
			return nil, ErrUnauthorized
		}
		userID = params.Principal.UserID
	}
	if s.schedules == nil {
		return nil, nil
	}

	schedules, err := s.schedules.ListSchedules(ctx, ScheduleRepositoryFilter{UserID: userID, ActiveOnly: params.ActiveOnly})
	if err != nil {
		err = mapRepoError(err, "")
		s.loggerWith(ctx, "ListSchedules").ErrorContext(ctx, "schedule listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}

	out := make([]EmployeeSchedule, len(schedules))
	copy(out, schedules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// ResolveSchedule returns the shift that applies to a user on a date, if any.
// Employees may only resolve their own schedule.
func (s *ScheduleService) ResolveSchedule(ctx context.Context, params ResolveScheduleParams) (EmployeeSchedule, bool, error) {
	if s == nil {
		return EmployeeSchedule{}, false, fmt.Errorf("ScheduleService is nil")
	}
	if !params.Principal.Authenticated() {
		return EmployeeSchedule{}, false, ErrUnauthorized
	}

	userID := strings.TrimSpace(params.UserID)
	if userID == "" {
		userID = params.Principal.UserID
	}
	if userID != params.Principal.UserID && !params.Principal.CanManage() {
		return EmployeeSchedule{}, false, ErrUnauthorized
	}

	vErr := &ValidationError{}
	date := parseDateField(vErr, "date", params.Date, true)
	if err := vErr.orNil(); err != nil {
		return EmployeeSchedule{}, false, err
	}

	schedule, err := s.ScheduleFor(ctx, userID, date)
	if err != nil {
		s.loggerWith(ctx, "ResolveSchedule", "user_id", userID).ErrorContext(ctx, "schedule resolution failed", "error", err, "error_kind", ErrorKind(err))
		return EmployeeSchedule{}, false, err
	}
	if schedule == nil {
		return EmployeeSchedule{}, false, nil
	}
	return *schedule, true, nil
}

// ScheduleFor resolves the schedule applying to userID on the calendar date.
// Date-specific schedules win over recurring ones; ties go to the earliest
// created schedule. It returns nil when no schedule applies.
func (s *ScheduleService) ScheduleFor(ctx context.Context, userID string, date time.Time) (*EmployeeSchedule, error) {
	if s == nil {
		return nil, fmt.Errorf("ScheduleService is nil")
	}
	if s.schedules == nil {
		return nil, nil
	}

	schedules, err := s.schedules.ListSchedules(ctx, ScheduleRepositoryFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return nil, mapRepoError(err, "")
	}

	shifts := make([]scheduler.Shift, len(schedules))
	for i, schedule := range schedules {
		shifts[i] = schedule.Shift()
	}
	match, ok := scheduler.Match(shifts, date)
	if !ok {
		return nil, nil
	}
	for i := range schedules {
		if schedules[i].ID == match.ID {
			return &schedules[i], nil
		}
	}
	return nil, nil
}

// buildSchedule validates input and converts it into a schedule without identity or timestamps.
func buildSchedule(input ScheduleInput) (EmployeeSchedule, error) {
	vErr := &ValidationError{}

	schedule := EmployeeSchedule{
		UserID:     strings.TrimSpace(input.UserID),
		LocationID: normalizeOptionalString(input.LocationID),
	}
	if schedule.UserID == "" {
		vErr.add("user_id", "user is required")
	}

	if input.DayOfWeek != nil {
		if *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			vErr.add("day_of_week", "day of week must be between 0 (Sunday) and 6 (Saturday)")
		} else {
			day := time.Weekday(*input.DayOfWeek)
			schedule.DayOfWeek = &day
		}
	}

	if value := normalizeOptionalString(input.EffectiveDate); value != nil {
		if date, ok := parseOptionalDate(vErr, "effective_date", *value); ok {
			schedule.EffectiveDate = &date
		}
	}
	if value := normalizeOptionalString(input.EndDate); value != nil {
		if date, ok := parseOptionalDate(vErr, "end_date", *value); ok {
			schedule.EndDate = &date
		}
		if normalizeOptionalString(input.EffectiveDate) == nil {
			vErr.add("end_date", "end date requires an effective date")
		}
	}
	if schedule.EffectiveDate != nil && schedule.EndDate != nil && schedule.EndDate.Before(*schedule.EffectiveDate) {
		vErr.add("end_date", "end date must not precede the effective date")
	}
	if input.DayOfWeek == nil && normalizeOptionalString(input.EffectiveDate) == nil {
		vErr.add("day_of_week", "either a day of week or an effective date is required")
	}

	start, startErr := scheduler.ParseTimeOfDay(strings.TrimSpace(input.ShiftStart))
	if startErr != nil {
		vErr.add("shift_start", "shift start must use HH:MM")
	}
	end, endErr := scheduler.ParseTimeOfDay(strings.TrimSpace(input.ShiftEnd))
	if endErr != nil {
		vErr.add("shift_end", "shift end must use HH:MM")
	}
	if startErr == nil && endErr == nil && start == end {
		vErr.add("shift_end", "shift end must differ from shift start")
	}
	schedule.ShiftStart = start
	schedule.ShiftEnd = end

	if err := vErr.orNil(); err != nil {
		return EmployeeSchedule{}, err
	}
	return schedule, nil
}

// parseDateField parses a YYYY-MM-DD value, recording a field error when it is
// malformed or, if required, missing.
func parseDateField(vErr *ValidationError, field, value string, required bool) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			vErr.add(field, "date is required")
		}
		return time.Time{}
	}
	date, _ := parseOptionalDate(vErr, field, value)
	return date
}

func parseOptionalDate(vErr *ValidationError, field, value string) (time.Time, bool) {
	date, err := scheduler.ParseDate(value)
	if err != nil {
		vErr.add(field, "date must use YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// parseDateRange parses optional inclusive from/to bounds.
func parseDateRange(vErr *ValidationError, from, to string) (*time.Time, *time.Time) {
	var fromDate, toDate *time.Time
	if strings.TrimSpace(from) != "" {
		if d, ok := parseOptionalDate(vErr, "from", strings.TrimSpace(from)); ok {
			fromDate = &d
		}
	}
	if strings.TrimSpace(to) != "" {
		if d, ok := parseOptionalDate(vErr, "to", strings.TrimSpace(to)); ok {
			toDate = &d
		}
	}
	if fromDate != nil && toDate != nil && toDate.Before(*fromDate) {
		vErr.add("to", "end of range must not precede its start")
	}
	return fromDate, toDate
}
