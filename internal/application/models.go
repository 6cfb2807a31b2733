package application

import (
	"time"

	"github.com/example/attendance-tracker/internal/recurrence"
	"github.com/example/attendance-tracker/internal/scheduler"
)

// Role is the access level carried by a profile and its sessions.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.UserID != "" && p.Role == RoleAdmin
}

// CanManage reports whether the principal may act on other employees' records.
func (p Principal) CanManage() bool {
	return p.UserID != "" && (p.Role == RoleAdmin || p.Role == RoleManager)
}

// Authenticated reports whether the principal came from a validated session.
func (p Principal) Authenticated() bool {
	return p.UserID != "" && p.Role.Valid()
}

// Profile represents an employee account.
type Profile struct {
	ID         string
	Email      string
	FullName   string
	Role       Role
	Department *string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProfileCredentials models the authentication attributes persisted for a profile.
type ProfileCredentials struct {
	Profile      Profile
	PasswordHash string
}

// ProfileInput captures caller provided profile attributes. Password is
// required on create and optional on update; Active defaults to true on create
// and is left unchanged on update when nil.
type ProfileInput struct {
	Email      string
	FullName   string
	Role       Role
	Department *string
	Active     *bool
	Password   string
}

// CreateProfileParams wraps the data required to create a profile.
type CreateProfileParams struct {
	Principal Principal
	Input     ProfileInput
}

// UpdateProfileParams wraps the data required to update a profile.
type UpdateProfileParams struct {
	Principal Principal
	ProfileID string
	Input     ProfileInput
}

// Session represents an authenticated session issued to a profile.
type Session struct {
	ID          string
	UserID      string
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email       string
	Password    string
	Fingerprint string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Profile Profile
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token       string
	Fingerprint string
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
}

// ChangePasswordParams captures a self-service password change.
type ChangePasswordParams struct {
	Principal       Principal
	CurrentPassword string
	NewPassword     string
}

// WorkLocation is a named geofence center and radius.
type WorkLocation struct {
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

// WorkLocationInput captures caller provided location fields.
type WorkLocationInput struct {
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	Active       *bool
}

// CreateLocationParams wraps the data required to create a work location.
type CreateLocationParams struct {
	Principal Principal
	Input     WorkLocationInput
}

// UpdateLocationParams wraps the data required to update a work location.
type UpdateLocationParams struct {
	Principal  Principal
	LocationID string
	Input      WorkLocationInput
}

// OfficeArea is a sub-zone of a work location.
type OfficeArea struct {
	ID               string
	LocationID       string
	Name             string
	Description      *string
	GuidelineMinutes *int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OfficeAreaInput captures caller provided office area fields.
type OfficeAreaInput struct {
	LocationID       string
	Name             string
	Description      *string
	GuidelineMinutes *int
	Active           *bool
}

// CreateAreaParams wraps the data required to create an office area.
type CreateAreaParams struct {
	Principal Principal
	Input     OfficeAreaInput
}

// UpdateAreaParams wraps the data required to update an office area.
type UpdateAreaParams struct {
	Principal Principal
	AreaID    string
	Input     OfficeAreaInput
}

// EmployeeSchedule is a recurring or date-specific shift definition.
type EmployeeSchedule struct {
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

// Shift converts the schedule into the form used for matching.
func (s EmployeeSchedule) Shift() scheduler.Shift {
	return scheduler.Shift{
		ID:            s.ID,
		DayOfWeek:     s.DayOfWeek,
		EffectiveDate: s.EffectiveDate,
		EndDate:       s.EndDate,
		Start:         s.ShiftStart,
		End:           s.ShiftEnd,
		LocationID:    s.LocationID,
		Active:        s.Active,
	}
}

// ScheduleInput captures caller provided schedule fields. Dates use
// YYYY-MM-DD and shift times use HH:MM.
type ScheduleInput struct {
	UserID        string
	DayOfWeek     *int
	EffectiveDate *string
	EndDate       *string
	ShiftStart    string
	ShiftEnd      string
	LocationID    *string
	Active        *bool
}

// CreateScheduleParams wraps the data required to create a schedule.
type CreateScheduleParams struct {
	Principal Principal
	Input     ScheduleInput
}

// UpdateScheduleParams wraps the data required to update an existing schedule.
type UpdateScheduleParams struct {
	Principal  Principal
	ScheduleID string
	Input      ScheduleInput
}

// ListSchedulesParams wraps the data required to list schedules. An empty
// UserID lists the principal's own schedules unless the principal can manage
// others, in which case every schedule is returned.
type ListSchedulesParams struct {
	Principal  Principal
	UserID     string
	ActiveOnly bool
}

// ResolveScheduleParams identifies the user and date to resolve a shift for.
type ResolveScheduleParams struct {
	Principal Principal
	UserID    string
	Date      string
}

// Attendance is one check-in with its optional check-out.
type Attendance struct {
	ID                    string
	UserID                string
	WorkDate              time.Time
	CheckIn               time.Time
	CheckInLatitude       float64
	CheckInLongitude      float64
	CheckInLocationValid  bool
	CheckInLocationID     *string
	CheckInDistanceMeters *float64
	CheckOut              *time.Time
	CheckOutLatitude      *float64
	CheckOutLongitude     *float64
	CheckOutLocationValid *bool
	ScheduleID            *string
	Status                scheduler.AttendanceStatus
	Notes                 *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Open reports whether the row has not been checked out yet.
func (a Attendance) Open() bool {
	return a.CheckOut == nil
}

// AttendanceFilter narrows attendance listings. Dates are inclusive.
type AttendanceFilter struct {
	UserID   string
	FromDate *time.Time
	ToDate   *time.Time
	Status   scheduler.AttendanceStatus
}

// CheckInParams carries the GPS fix reported with a check-in.
type CheckInParams struct {
	Principal Principal
	Latitude  float64
	Longitude float64
	Notes     string
}

// CheckOutParams carries the GPS fix reported with a check-out.
type CheckOutParams struct {
	Principal Principal
	Latitude  float64
	Longitude float64
	Notes     string
}

// ListAttendanceParams wraps attendance listing filters. From and To use YYYY-MM-DD.
type ListAttendanceParams struct {
	Principal Principal
	UserID    string
	From      string
	To        string
	Status    string
}

// UpdateAttendanceStatusParams carries a manual status override.
type UpdateAttendanceStatusParams struct {
	Principal    Principal
	AttendanceID string
	Status       string
}

// RecomputeStatusesParams identifies the work date to re-evaluate.
type RecomputeStatusesParams struct {
	Principal Principal
	Date      string
}

// RecomputeResult summarizes a status recompute run.
type RecomputeResult struct {
	Date      time.Time
	Examined  int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}

// JobTemplate is a recurring task definition.
type JobTemplate struct {
	ID           string
	Title        string
	Description  *string
	LocationID   string
	OfficeAreaID *string
	AssigneeID   *string
	Frequency    recurrence.Frequency
	DayOfWeek    *time.Weekday
	DayOfMonth   *int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rule returns the recurrence rule of the template.
func (t JobTemplate) Rule() recurrence.Rule {
	return recurrence.Rule{Frequency: t.Frequency, DayOfWeek: t.DayOfWeek, DayOfMonth: t.DayOfMonth}
}

// JobTemplateInput captures caller provided template fields.
type JobTemplateInput struct {
	Title        string
	Description  *string
	LocationID   string
	OfficeAreaID *string
	AssigneeID   *string
	Frequency    string
	DayOfWeek    *int
	DayOfMonth   *int
	Active       *bool
}

// CreateJobTemplateParams wraps the data required to create a template.
type CreateJobTemplateParams struct {
	Principal Principal
	Input     JobTemplateInput
}

// UpdateJobTemplateParams wraps the data required to update a template.
type UpdateJobTemplateParams struct {
	Principal  Principal
	TemplateID string
	Input      JobTemplateInput
}

// JobTemplateFilter narrows template listings.
type JobTemplateFilter struct {
	LocationID string
	ActiveOnly bool
}

// JobChecklist is a dated instance of a job template.
type JobChecklist struct {
	ID            string
	TemplateID    string
	ChecklistDate time.Time
	LocationID    string
	OfficeAreaID  *string
	AssigneeID    *string
	Title         string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	StartPhotoURL *string
	EndPhotoURL   *string
	Notes         *string
	CompletedBy   *string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChecklistFilter narrows checklist listings. Dates are inclusive.
type ChecklistFilter struct {
	FromDate          *time.Time
	ToDate            *time.Time
	LocationID        string
	AssigneeID        string
	IncludeUnassigned bool
	TemplateID        string
	ActiveOnly        bool
}

// GenerateChecklistsParams describes a checklist generation run. From and To use YYYY-MM-DD.
type GenerateChecklistsParams struct {
	Principal  Principal
	From       string
	To         string
	LocationID string
	Overwrite  bool
}

// GenerateResult summarizes a checklist generation run.
type GenerateResult struct {
	Created  int
	Skipped  int
	Replaced int
	Failed   int
}

// ListChecklistsParams wraps checklist listing filters. From and To use YYYY-MM-DD.
type ListChecklistsParams struct {
	Principal  Principal
	From       string
	To         string
	LocationID string
	AssigneeID string
}

// StartChecklistParams records the start of a checklist item.
type StartChecklistParams struct {
	Principal   Principal
	ChecklistID string
	PhotoURL    *string
}

// CompleteChecklistParams records the completion of a checklist item.
type CompleteChecklistParams struct {
	Principal   Principal
	ChecklistID string
	PhotoURL    *string
	Notes       *string
}

// Notification is an admin-authored message.
type Notification struct {
	ID          string
	SenderID    string
	Title       string
	Body        string
	IsBroadcast bool
	CreatedAt   time.Time
}

// InboxItem is a notification as seen by one recipient.
type InboxItem struct {
	Notification Notification
	ReadAt       *time.Time
}

// SendNotificationParams describes a notification to fan out.
type SendNotificationParams struct {
	Principal    Principal
	Title        string
	Body         string
	Broadcast    bool
	RecipientIDs []string
}

// SendResult reports the outcome of a notification fan-out.
type SendResult struct {
	Notification Notification
	Recipients   int
	PushSuccess  int
	PushFailure  int
}

// DeviceToken is a push registration for a profile.
type DeviceToken struct {
	Token     string
	UserID    string
	Platform  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterDeviceParams carries a push token registration.
type RegisterDeviceParams struct {
	Principal Principal
	Token     string
	Platform  string
}

// AttendanceReportParams selects the rows exported to a workbook. From and To use YYYY-MM-DD.
type AttendanceReportParams struct {
	Principal Principal
	From      string
	To        string
	UserID    string
}

// AttendanceReportRow is one attendance record joined with its employee, as exported.
type AttendanceReportRow struct {
	EmployeeName   string
	EmployeeEmail  string
	WorkDate       time.Time
	CheckIn        time.Time
	CheckOut       *time.Time
	Status         scheduler.AttendanceStatus
	CheckInValid   bool
	CheckOutValid  *bool
	DistanceMeters *float64
	Notes          string
}
