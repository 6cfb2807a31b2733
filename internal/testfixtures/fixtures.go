package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/attendance-tracker/internal/application"
	"github.com/example/attendance-tracker/internal/persistence"
	"github.com/example/attendance-tracker/internal/scheduler"
)

var (
	profileCounter    uint64
	locationCounter   uint64
	scheduleCounter   uint64
	attendanceCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Profile fixtures -----------------------------

// ProfileFixture represents a deterministic profile record that can be
// materialised for application or persistence tests.
type ProfileFixture struct {
	ID           string
	Email        string
	FullName     string
	Role         application.Role
	Department   *string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileOption configures the generated profile fixture.
type ProfileOption func(*ProfileFixture)

// NewProfileFixture returns an active employee fixture with optional overrides.
func NewProfileFixture(opts ...ProfileOption) ProfileFixture {
	idx := atomic.AddUint64(&profileCounter, 1)
	id := fmt.Sprintf("profile-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ProfileFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FullName:     fmt.Sprintf("Employee %03d", idx),
		Role:         application.RoleEmployee,
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProfileID overrides the generated profile ID.
func WithProfileID(id string) ProfileOption {
	return func(f *ProfileFixture) {
		f.ID = id
	}
}

// WithProfileEmail overrides the generated email address.
func WithProfileEmail(email string) ProfileOption {
	return func(f *ProfileFixture) {
		f.Email = email
	}
}

// WithProfileRole sets the role on the generated fixture.
func WithProfileRole(role application.Role) ProfileOption {
	return func(f *ProfileFixture) {
		f.Role = role
	}
}

// WithProfileDepartment sets the department.
func WithProfileDepartment(department string) ProfileOption {
	return func(f *ProfileFixture) {
		value := department
		f.Department = &value
	}
}

// WithProfilePasswordHash overrides the generated password hash.
func WithProfilePasswordHash(hash string) ProfileOption {
	return func(f *ProfileFixture) {
		f.PasswordHash = hash
	}
}

// WithProfileActive toggles the active flag.
func WithProfileActive(active bool) ProfileOption {
	return func(f *ProfileFixture) {
		f.Active = active
	}
}

// WithProfileTimestamps sets both created and updated timestamps on the fixture.
func WithProfileTimestamps(created, updated time.Time) ProfileOption {
	return func(f *ProfileFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Profile value.
func (f ProfileFixture) Application() application.Profile {
	return application.Profile{
		ID:         f.ID,
		Email:      f.Email,
		FullName:   f.FullName,
		Role:       f.Role,
		Department: copyStringPtr(f.Department),
		Active:     f.Active,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.ProfileCredentials.
func (f ProfileFixture) Credentials() application.ProfileCredentials {
	return application.ProfileCredentials{
		Profile:      f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f ProfileFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, Role: f.Role}
}

// Persistence returns the fixture as a persistence.Profile value.
func (f ProfileFixture) Persistence() persistence.Profile {
	return persistence.Profile{
		ID:           f.ID,
		Email:        f.Email,
		FullName:     f.FullName,
		Role:         string(f.Role),
		Department:   copyStringPtr(f.Department),
		PasswordHash: f.PasswordHash,
		IsActive:     f.Active,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ProfileInput using password as
// the plaintext credential.
func (f ProfileFixture) Input(password string) application.ProfileInput {
	active := f.Active
	return application.ProfileInput{
		Email:      f.Email,
		FullName:   f.FullName,
		Role:       f.Role,
		Department: copyStringPtr(f.Department),
		Active:     &active,
		Password:   password,
	}
}

// ----------------------------- Location fixtures -----------------------------

// LocationFixture represents a deterministic geofenced work location.
type LocationFixture struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LocationOption configures the generated location fixture.
type LocationOption func(*LocationFixture)

// NewLocationFixture returns an active location centred on Tokyo Station with a
// 200 metre radius.
func NewLocationFixture(opts ...LocationOption) LocationFixture {
	idx := atomic.AddUint64(&locationCounter, 1)
	id := fmt.Sprintf("location-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := LocationFixture{
		ID:           id,
		Name:         fmt.Sprintf("Site %03d", idx),
		Latitude:     35.681236,
		Longitude:    139.767125,
		RadiusMeters: 200,
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithLocationID overrides the generated location ID.
func WithLocationID(id string) LocationOption {
	return func(f *LocationFixture) {
		f.ID = id
	}
}

// WithLocationCenter moves the geofence centre.
func WithLocationCenter(latitude, longitude float64) LocationOption {
	return func(f *LocationFixture) {
		f.Latitude = latitude
		f.Longitude = longitude
	}
}

// WithLocationRadius overrides the geofence radius in metres.
func WithLocationRadius(radius float64) LocationOption {
	return func(f *LocationFixture) {
		f.RadiusMeters = radius
	}
}

// WithLocationActive toggles the active flag.
func WithLocationActive(active bool) LocationOption {
	return func(f *LocationFixture) {
		f.Active = active
	}
}

// Application returns the fixture as an application.WorkLocation value.
func (f LocationFixture) Application() application.WorkLocation {
	return application.WorkLocation{
		ID:           f.ID,
		Name:         f.Name,
		Address:      copyStringPtr(f.Address),
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		RadiusMeters: f.RadiusMeters,
		Active:       f.Active,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.WorkLocation value.
func (f LocationFixture) Persistence() persistence.WorkLocation {
	return persistence.WorkLocation{
		ID:           f.ID,
		Name:         f.Name,
		Address:      copyStringPtr(f.Address),
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		RadiusMeters: f.RadiusMeters,
		IsActive:     f.Active,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Schedule fixtures -----------------------------

// ScheduleFixture represents a deterministic employee shift. The default is a
// recurring Monday 09:00-17:00 shift.
type ScheduleFixture struct {
	ID            string
	UserID        string
	DayOfWeek     *time.Weekday
	EffectiveDate *time.Time
	EndDate       *time.Time
	ShiftStart    scheduler.TimeOfDay
	ShiftEnd      scheduler.TimeOfDay
	LocationID    *string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*ScheduleFixture)

// NewScheduleFixture returns a deterministic schedule fixture with optional overrides.
func NewScheduleFixture(opts ...ScheduleOption) ScheduleFixture {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	monday := time.Monday
	fixture := ScheduleFixture{
		ID:         fmt.Sprintf("schedule-%03d", idx),
		UserID:     "profile-001",
		DayOfWeek:  &monday,
		ShiftStart: scheduler.TimeOfDay(9 * 60),
		ShiftEnd:   scheduler.TimeOfDay(17 * 60),
		Active:     true,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithScheduleID overrides the generated schedule ID.
func WithScheduleID(id string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.ID = id
	}
}

// WithScheduleUser assigns the schedule to userID.
func WithScheduleUser(userID string) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.UserID = userID
	}
}

// WithScheduleWeekday sets the recurring weekday. A nil pointer clears it.
func WithScheduleWeekday(day *time.Weekday) ScheduleOption {
	return func(f *ScheduleFixture) {
		if day == nil {
			f.DayOfWeek = nil
			return
		}
		value := *day
		f.DayOfWeek = &value
	}
}

// WithScheduleDates turns the fixture into a date-specific schedule. A zero
// end leaves the schedule as a single day.
func WithScheduleDates(effective, end time.Time) ScheduleOption {
	return func(f *ScheduleFixture) {
		start := effective
		f.EffectiveDate = &start
		f.EndDate = nil
		if !end.IsZero() {
			last := end
			f.EndDate = &last
		}
	}
}

// WithScheduleShift overrides the shift boundaries.
func WithScheduleShift(start, end scheduler.TimeOfDay) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.ShiftStart = start
		f.ShiftEnd = end
	}
}

// WithScheduleActive toggles the active flag.
func WithScheduleActive(active bool) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Active = active
	}
}

// Application returns the fixture as an application.EmployeeSchedule value.
func (f ScheduleFixture) Application() application.EmployeeSchedule {
	return application.EmployeeSchedule{
		ID:            f.ID,
		UserID:        f.UserID,
		DayOfWeek:     copyWeekdayPtr(f.DayOfWeek),
		EffectiveDate: copyTimePtr(f.EffectiveDate),
		EndDate:       copyTimePtr(f.EndDate),
		ShiftStart:    f.ShiftStart,
		ShiftEnd:      f.ShiftEnd,
		LocationID:    copyStringPtr(f.LocationID),
		Active:        f.Active,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.EmployeeSchedule value.
func (f ScheduleFixture) Persistence() persistence.EmployeeSchedule {
	var day *int
	if f.DayOfWeek != nil {
		value := int(*f.DayOfWeek)
		day = &value
	}
	return persistence.EmployeeSchedule{
		ID:            f.ID,
		UserID:        f.UserID,
		DayOfWeek:     day,
		EffectiveDate: formatDatePtr(f.EffectiveDate),
		EndDate:       formatDatePtr(f.EndDate),
		ShiftStart:    f.ShiftStart.String(),
		ShiftEnd:      f.ShiftEnd.String(),
		LocationID:    copyStringPtr(f.LocationID),
		IsActive:      f.Active,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// ----------------------------- Attendance fixtures -----------------------------

// AttendanceFixture represents an open, valid check-in.
type AttendanceFixture struct {
	ID                   string
	UserID               string
	CheckIn              time.Time
	Latitude             float64
	Longitude            float64
	CheckInLocationValid bool
	CheckOut             *time.Time
	Status               scheduler.AttendanceStatus
	CreatedAt            time.Time
}

// AttendanceOption configures the generated attendance fixture.
type AttendanceOption func(*AttendanceFixture)

// NewAttendanceFixture returns a deterministic attendance fixture.
func NewAttendanceFixture(opts ...AttendanceOption) AttendanceFixture {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	checkIn := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC).Add(time.Duration(idx) * 24 * time.Hour)
	fixture := AttendanceFixture{
		ID:                   fmt.Sprintf("attendance-%03d", idx),
		UserID:               "profile-001",
		CheckIn:              checkIn,
		Latitude:             35.681236,
		Longitude:            139.767125,
		CheckInLocationValid: true,
		Status:               scheduler.StatusPresent,
		CreatedAt:            checkIn,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAttendanceUser assigns the row to userID.
func WithAttendanceUser(userID string) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.UserID = userID
	}
}

// WithAttendanceCheckIn overrides the check-in instant.
func WithAttendanceCheckIn(t time.Time) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.CheckIn = t
		f.CreatedAt = t
	}
}

// WithAttendanceCheckOut closes the row at t.
func WithAttendanceCheckOut(t time.Time) AttendanceOption {
	return func(f *AttendanceFixture) {
		value := t
		f.CheckOut = &value
	}
}

// WithAttendanceStatus overrides the status.
func WithAttendanceStatus(status scheduler.AttendanceStatus) AttendanceOption {
	return func(f *AttendanceFixture) {
		f.Status = status
	}
}

// Application returns the fixture as an application.Attendance value with the
// work date taken from the check-in's UTC calendar day.
func (f AttendanceFixture) Application() application.Attendance {
	day := f.CheckIn.UTC()
	workDate := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return application.Attendance{
		ID:                   f.ID,
		UserID:               f.UserID,
		WorkDate:             workDate,
		CheckIn:              f.CheckIn,
		CheckInLatitude:      f.Latitude,
		CheckInLongitude:     f.Longitude,
		CheckInLocationValid: f.CheckInLocationValid,
		CheckOut:             copyTimePtr(f.CheckOut),
		Status:               f.Status,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Attendance value.
func (f AttendanceFixture) Persistence() persistence.Attendance {
	app := f.Application()
	return persistence.Attendance{
		ID:                   app.ID,
		UserID:               app.UserID,
		WorkDate:             app.WorkDate.Format(scheduler.DateLayout),
		CheckIn:              app.CheckIn,
		CheckInLatitude:      app.CheckInLatitude,
		CheckInLongitude:     app.CheckInLongitude,
		CheckInLocationValid: app.CheckInLocationValid,
		CheckOut:             copyTimePtr(app.CheckOut),
		Status:               string(app.Status),
		CreatedAt:            app.CreatedAt,
		UpdatedAt:            app.UpdatedAt,
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyWeekdayPtr(value *time.Weekday) *time.Weekday {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func formatDatePtr(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(scheduler.DateLayout)
	return &formatted
}
