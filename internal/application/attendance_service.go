package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/example/attendance-tracker/internal/geofence"
	"github.com/example/attendance-tracker/internal/scheduler"
)

// AttendanceRepository captures the persistence interactions for attendance rows.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance Attendance) (Attendance, error)
	GetAttendance(ctx context.Context, id string) (Attendance, error)
	GetOpenAttendance(ctx context.Context, userID string) (Attendance, error)
	UpdateAttendance(ctx context.Context, attendance Attendance) (Attendance, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

// ZoneProvider supplies the geofence zones of active work locations.
type ZoneProvider interface {
	ActiveZones(ctx context.Context) ([]geofence.Zone, error)
}

// ScheduleResolver finds the schedule applying to a user on a calendar date.
type ScheduleResolver interface {
	ScheduleFor(ctx context.Context, userID string, date time.Time) (*EmployeeSchedule, error)
}

// AttendancePolicy holds the time zone used for work dates and shift times,
// and the grace period before a check-in counts as late. A nil Location means
// UTC and a nil LateGrace means scheduler.DefaultLateGrace; an explicit zero
// grace is honoured.
type AttendancePolicy struct {
	Location  *time.Location
	LateGrace *time.Duration
}

func (p AttendancePolicy) withDefaults() AttendancePolicy {
	if p.Location == nil {
		p.Location = time.UTC
	}
	grace := scheduler.DefaultLateGrace
	if p.LateGrace != nil && *p.LateGrace >= 0 {
		grace = *p.LateGrace
	}
	p.LateGrace = &grace
	return p
}

func (p AttendancePolicy) grace() time.Duration {
	if p.LateGrace == nil {
		return scheduler.DefaultLateGrace
	}
	return *p.LateGrace
}

// AttendanceService records check-ins and check-outs and keeps their status current.
type AttendanceService struct {
	attendance  AttendanceRepository
	zones       ZoneProvider
	schedules   ScheduleResolver
	policy      AttendancePolicy
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for attendance operations.
func NewAttendanceService(attendance AttendanceRepository, zones ZoneProvider, schedules ScheduleResolver, policy AttendancePolicy, idGenerator func() string, now func() time.Time) *AttendanceService {
	return NewAttendanceServiceWithLogger(attendance, zones, schedules, policy, idGenerator, now, nil)
}

// NewAttendanceServiceWithLogger wires dependencies and a logger for attendance operations.
func NewAttendanceServiceWithLogger(attendance AttendanceRepository, zones ZoneProvider, schedules ScheduleResolver, policy AttendancePolicy, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		attendance:  attendance,
		zones:       zones,
		schedules:   schedules,
		policy:      policy.withDefaults(),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *AttendanceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AttendanceService", operation, attrs...)
}

// CheckIn opens an attendance row for the principal. The row is recorded even
// when the position lies outside every geofence; it is flagged invalid instead.
func (s *AttendanceService) CheckIn(ctx context.Context, params CheckInParams) (attendance Attendance, err error) {
	if s == nil {
		return Attendance{}, fmt.Errorf("AttendanceService is nil")
	}
	logger := s.loggerWith(ctx, "CheckIn", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "check-in failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checked in",
			"attendance_id", attendance.ID,
			"status", attendance.Status,
			"location_valid", attendance.CheckInLocationValid,
		)
	}()

	if !params.Principal.Authenticated() {
		return Attendance{}, ErrUnauthorized
	}
	if s.attendance == nil {
		return Attendance{}, fmt.Errorf("attendance repository not configured")
	}

	point := geofence.Point{Latitude: params.Latitude, Longitude: params.Longitude}
	if err = validatePoint(point).orNil(); err != nil {
		return Attendance{}, err
	}

	userID := params.Principal.UserID
	if _, err = s.attendance.GetOpenAttendance(ctx, userID); err == nil {
		return Attendance{}, ErrAlreadyCheckedIn
	} else if !isNotFound(err) {
		return Attendance{}, mapRepoError(err, "")
	}

	result, err := s.evaluate(ctx, point)
	if err != nil {
		return Attendance{}, err
	}

	now := s.now()
	workDate := scheduler.Day(now, s.policy.Location)

	schedule, err := s.resolve(ctx, userID, workDate)
	if err != nil {
		return Attendance{}, err
	}

	attendance = Attendance{
		ID:                   s.idGenerator(),
		UserID:               userID,
		WorkDate:             workDate,
		CheckIn:              now,
		CheckInLatitude:      point.Latitude,
		CheckInLongitude:     point.Longitude,
		CheckInLocationValid: result.Within,
		Status:               s.classify(now, schedule),
		Notes:                normalizeOptionalString(&params.Notes),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if result.HasNearest() {
		nearest := result.NearestID
		distance := result.DistanceMeters
		attendance.CheckInLocationID = &nearest
		attendance.CheckInDistanceMeters = &distance
	}
	if schedule != nil {
		scheduleID := schedule.ID
		attendance.ScheduleID = &scheduleID
	}

	created, err := s.attendance.CreateAttendance(ctx, attendance)
	if err != nil {
		err = mapRepoError(err, "")
		if errors.Is(err, ErrAlreadyExists) {
			return Attendance{}, ErrAlreadyCheckedIn
		}
		return Attendance{}, err
	}
	return created, nil
}

// CheckOut closes the principal's open attendance row.
func (s *AttendanceService) CheckOut(ctx context.Context, params CheckOutParams) (attendance Attendance, err error) {
	if s == nil {
		return Attendance{}, fmt.Errorf("AttendanceService is nil")
	}
	logger := s.loggerWith(ctx, "CheckOut", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "check-out failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checked out", "attendance_id", attendance.ID)
	}()

	if !params.Principal.Authenticated() {
		return Attendance{}, ErrUnauthorized
	}
	if s.attendance == nil {
		return Attendance{}, fmt.Errorf("attendance repository not configured")
	}

	point := geofence.Point{Latitude: params.Latitude, Longitude: params.Longitude}
	if err = validatePoint(point).orNil(); err != nil {
		return Attendance{}, err
	}

	open, err := s.attendance.GetOpenAttendance(ctx, params.Principal.UserID)
	if err != nil {
		if isNotFound(err) {
			return Attendance{}, ErrNotCheckedIn
		}
		return Attendance{}, mapRepoError(err, "")
	}

	result, err := s.evaluate(ctx, point)
	if err != nil {
		return Attendance{}, err
	}

	now := s.now()
	latitude, longitude, valid := point.Latitude, point.Longitude, result.Within
	open.CheckOut = &now
	open.CheckOutLatitude = &latitude
	open.CheckOutLongitude = &longitude
	open.CheckOutLocationValid = &valid
	open.Notes = appendNote(open.Notes, params.Notes)
	open.UpdatedAt = now

	attendance, err = s.attendance.UpdateAttendance(ctx, open)
	if err != nil {
		return Attendance{}, mapRepoError(err, "")
	}
	return attendance, nil
}

// Current returns the principal's open attendance row, if any.
func (s *AttendanceService) Current(ctx context.Context, principal Principal) (Attendance, bool, error) {
	if s == nil {
		return Attendance{}, false, fmt.Errorf("AttendanceService is nil")
	}
	if !principal.Authenticated() {
		return Attendance{}, false, ErrUnauthorized
	}
	if s.attendance == nil {
		return Attendance{}, false, nil
	}

	open, err := s.attendance.GetOpenAttendance(ctx, principal.UserID)
	if err != nil {
		if isNotFound(err) {
			return Attendance{}, false, nil
		}
		return Attendance{}, false, mapRepoError(err, "")
	}
	return open, true, nil
}

// ListAttendance returns attendance rows matching the filters. Employees only
// see their own rows; managers and administrators may filter by any user.
func (s *AttendanceService) ListAttendance(ctx context.Context, params ListAttendanceParams) ([]Attendance, error) {
	if s == nil {
		return nil, fmt.Errorf("AttendanceService is nil")
	}
	if !params.Principal.Authenticated() {
		return nil, ErrUnauthorized
	}

	filter, err := s.buildFilter(params.Principal, params.UserID, params.From, params.To, params.Status)
	if err != nil {
		return nil, err
	}
	if s.attendance == nil {
		return nil, nil
	}

	rows, err := s.attendance.ListAttendance(ctx, filter)
	if err != nil {
		err = mapRepoError(err, "")
		s.loggerWith(ctx, "ListAttendance").ErrorContext(ctx, "attendance listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	return rows, nil
}

// UpdateStatus applies a manual status override.
func (s *AttendanceService) UpdateStatus(ctx context.Context, params UpdateAttendanceStatusParams) (attendance Attendance, err error) {
	if s == nil {
		return Attendance{}, fmt.Errorf("AttendanceService is nil")
	}
	logger := s.loggerWith(ctx, "UpdateStatus", "principal_id", params.Principal.UserID, "attendance_id", params.AttendanceID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status override failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status overridden", "status", attendance.Status)
	}()

	if !params.Principal.CanManage() {
		return Attendance{}, ErrUnauthorized
	}
	if s.attendance == nil {
		return Attendance{}, fmt.Errorf("attendance repository not configured")
	}

	status := scheduler.AttendanceStatus(strings.ToLower(strings.TrimSpace(params.Status)))
	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("status", "status must be present, late or absent")
		return Attendance{}, vErr
	}

	existing, err := s.attendance.GetAttendance(ctx, params.AttendanceID)
	if err != nil {
		return Attendance{}, mapRepoError(err, "")
	}
	existing.Status = status
	existing.UpdatedAt = s.now()

	attendance, err = s.attendance.UpdateAttendance(ctx, existing)
	if err != nil {
		return Attendance{}, mapRepoError(err, "")
	}
	return attendance, nil
}

// RecomputeStatuses re-evaluates present/late for every row on the work date
// against current schedules. Rows marked absent are left alone. Rows are
// processed one at a time; a failure is counted and the run continues.
func (s *AttendanceService) RecomputeStatuses(ctx context.Context, params RecomputeStatusesParams) (result RecomputeResult, err error) {
	if s == nil {
		return RecomputeResult{}, fmt.Errorf("AttendanceService is nil")
	}
	logger := s.loggerWith(ctx, "RecomputeStatuses", "principal_id", params.Principal.UserID, "date", params.Date)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "status recompute failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status recompute finished",
			"examined", result.Examined,
			"updated", result.Updated,
			"unchanged", result.Unchanged,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
	}()

	if !params.Principal.IsAdmin() {
		return RecomputeResult{}, ErrUnauthorized
	}
	if s.attendance == nil {
		return RecomputeResult{}, fmt.Errorf("attendance repository not configured")
	}

	vErr := &ValidationError{}
	date := parseDateField(vErr, "date", params.Date, true)
	if err = vErr.orNil(); err != nil {
		return RecomputeResult{}, err
	}

	rows, err := s.attendance.ListAttendance(ctx, AttendanceFilter{FromDate: &date, ToDate: &date})
	if err != nil {
		return RecomputeResult{}, mapRepoError(err, "")
	}

	result.Date = date
	for _, row := range rows {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		result.Examined++

		if row.Status == scheduler.StatusAbsent {
			result.Skipped++
			continue
		}

		schedule, resolveErr := s.resolve(ctx, row.UserID, row.WorkDate)
		if resolveErr != nil {
			result.Failed++
			logger.WarnContext(ctx, "schedule lookup failed", "attendance_id", row.ID, "error", resolveErr)
			continue
		}

		status := s.classify(row.CheckIn, schedule)
		var scheduleID *string
		if schedule != nil {
			id := schedule.ID
			scheduleID = &id
		}
		if status == row.Status && equalOptionalString(scheduleID, row.ScheduleID) {
			result.Unchanged++
			continue
		}

		row.Status = status
		row.ScheduleID = scheduleID
		row.UpdatedAt = s.now()
		if _, updateErr := s.attendance.UpdateAttendance(ctx, row); updateErr != nil {
			result.Failed++
			logger.WarnContext(ctx, "attendance update failed", "attendance_id", row.ID, "error", updateErr)
			continue
		}
		result.Updated++
	}

	return result, nil
}

func (s *AttendanceService) buildFilter(principal Principal, userID, from, to, status string) (AttendanceFilter, error) {
	userID = strings.TrimSpace(userID)
	if !principal.CanManage() {
		if userID != "" && userID != principal.UserID {
			return AttendanceFilter{}, ErrUnauthorized
		}
		userID = principal.UserID
	}

	vErr := &ValidationError{}
	fromDate, toDate := parseDateRange(vErr, from, to)

	filter := AttendanceFilter{UserID: userID, FromDate: fromDate, ToDate: toDate}
	if trimmed := strings.ToLower(strings.TrimSpace(status)); trimmed != "" {
		filter.Status = scheduler.AttendanceStatus(trimmed)
		if !filter.Status.Valid() {
			vErr.add("status", "status must be present, late or absent")
		}
	}
	if err := vErr.orNil(); err != nil {
		return AttendanceFilter{}, err
	}
	return filter, nil
}

func (s *AttendanceService) evaluate(ctx context.Context, point geofence.Point) (geofence.Result, error) {
	if s.zones == nil {
		return geofence.Result{}, nil
	}
	zones, err := s.zones.ActiveZones(ctx)
	if err != nil {
		return geofence.Result{}, err
	}
	return geofence.Evaluate(point, zones), nil
}

func (s *AttendanceService) resolve(ctx context.Context, userID string, date time.Time) (*EmployeeSchedule, error) {
	if s.schedules == nil {
		return nil, nil
	}
	return s.schedules.ScheduleFor(ctx, userID, date)
}

func (s *AttendanceService) classify(checkIn time.Time, schedule *EmployeeSchedule) scheduler.AttendanceStatus {
	if schedule == nil {
		return scheduler.Classify(checkIn, nil, s.policy.grace(), s.policy.Location)
	}
	shift := schedule.Shift()
	return scheduler.Classify(checkIn, &shift, s.policy.grace(), s.policy.Location)
}

func validatePoint(point geofence.Point) *ValidationError {
	vErr := &ValidationError{}
	if point.Validate() == nil {
		return vErr
	}
	if math.IsNaN(point.Latitude) || point.Latitude < -90 || point.Latitude > 90 {
		vErr.add("latitude", "latitude must be between -90 and 90")
	}
	if math.IsNaN(point.Longitude) || point.Longitude < -180 || point.Longitude > 180 {
		vErr.add("longitude", "longitude must be between -180 and 180")
	}
	return vErr
}

func appendNote(existing *string, note string) *string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return &note
	}
	joined := *existing + "\n" + note
	return &joined
}

func equalOptionalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
