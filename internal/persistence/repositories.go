package persistence

import (
	"context"
	"time"
)

// ProfileRepository exposes CRUD operations for profiles.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile Profile) error
	UpdateProfile(ctx context.Context, profile Profile) error
	GetProfile(ctx context.Context, id string) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	ListProfiles(ctx context.Context, activeOnly bool) ([]Profile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// LocationRepository stores work locations and their office areas.
type LocationRepository interface {
	CreateLocation(ctx context.Context, location WorkLocation) error
	UpdateLocation(ctx context.Context, location WorkLocation) error
	GetLocation(ctx context.Context, id string) (WorkLocation, error)
	ListLocations(ctx context.Context, activeOnly bool) ([]WorkLocation, error)
	DeleteLocation(ctx context.Context, id string) error

	CreateArea(ctx context.Context, area OfficeArea) error
	UpdateArea(ctx context.Context, area OfficeArea) error
	GetArea(ctx context.Context, id string) (OfficeArea, error)
	ListAreas(ctx context.Context, locationID string, activeOnly bool) ([]OfficeArea, error)
	DeleteArea(ctx context.Context, id string) error
}

// ScheduleFilter narrows schedule queries.
type ScheduleFilter struct {
	UserID     string
	ActiveOnly bool
}

// ScheduleRepository stores employee schedules.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule EmployeeSchedule) error
	UpdateSchedule(ctx context.Context, schedule EmployeeSchedule) error
	GetSchedule(ctx context.Context, id string) (EmployeeSchedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]EmployeeSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// AttendanceFilter narrows attendance queries. Dates are inclusive YYYY-MM-DD bounds.
type AttendanceFilter struct {
	UserID   string
	FromDate string
	ToDate   string
	Status   string
}

// AttendanceRepository stores attendance rows.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance Attendance) error
	UpdateAttendance(ctx context.Context, attendance Attendance) error
	GetAttendance(ctx context.Context, id string) (Attendance, error)
	GetOpenAttendance(ctx context.Context, userID string) (Attendance, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

// TemplateFilter narrows job template queries.
type TemplateFilter struct {
	LocationID string
	ActiveOnly bool
}

// ChecklistFilter narrows checklist queries. Dates are inclusive YYYY-MM-DD bounds.
type ChecklistFilter struct {
	FromDate          string
	ToDate            string
	LocationID        string
	AssigneeID        string
	IncludeUnassigned bool
	TemplateID        string
	ActiveOnly        bool
}

// ChecklistRepository stores job templates and their materialized checklists.
type ChecklistRepository interface {
	CreateTemplate(ctx context.Context, template JobTemplate) error
	UpdateTemplate(ctx context.Context, template JobTemplate) error
	GetTemplate(ctx context.Context, id string) (JobTemplate, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]JobTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	CreateChecklist(ctx context.Context, checklist JobChecklist) error
	UpdateChecklist(ctx context.Context, checklist JobChecklist) error
	GetChecklist(ctx context.Context, id string) (JobChecklist, error)
	FindActiveChecklist(ctx context.Context, templateID, date string) (JobChecklist, error)
	DeactivateChecklist(ctx context.Context, id string, at time.Time) error
	ListChecklists(ctx context.Context, filter ChecklistFilter) ([]JobChecklist, error)
}

// NotificationRepository stores notifications, recipients and device tokens.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification, recipientIDs []string) error
	ListInbox(ctx context.Context, recipientID string, unreadOnly bool) ([]InboxItem, error)
	MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error)

	UpsertDeviceToken(ctx context.Context, token DeviceToken) error
	DeleteDeviceToken(ctx context.Context, userID, token string) error
	ListDeviceTokens(ctx context.Context, userIDs []string) ([]DeviceToken, error)
}
