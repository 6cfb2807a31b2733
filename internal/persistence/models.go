package persistence

import "time"

// Profile represents a user account.
type Profile struct {
	ID           string
	Email        string
	FullName     string
	Role         string
	Department   *string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a user.
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

// WorkLocation is a named geofence center with an allowed radius.
type WorkLocation struct {
	ID           string
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OfficeArea is a sub-zone of a work location.
type OfficeArea struct {
	ID               string
	LocationID       string
	Name             string
	Description      *string
	GuidelineMinutes *int
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmployeeSchedule is a recurring or date-specific shift definition.
// Dates are stored as YYYY-MM-DD and shift times as HH:MM.
type EmployeeSchedule struct {
	ID            string
	UserID        string
	DayOfWeek     *int
	EffectiveDate *string
	EndDate       *string
	ShiftStart    string
	ShiftEnd      string
	LocationID    *string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Attendance is one check-in with an optional check-out.
type Attendance struct {
	ID                    string
	UserID                string
	WorkDate              string
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
	Status                string
	Notes                 *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// JobTemplate is a recurring task definition.
type JobTemplate struct {
	ID           string
	Title        string
	Description  *string
	LocationID   string
	OfficeAreaID *string
	AssigneeID   *string
	Frequency    string
	DayOfWeek    *int
	DayOfMonth   *int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobChecklist is the materialized instance of a template for one day.
type JobChecklist struct {
	ID            string
	TemplateID    string
	ChecklistDate string
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
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Notification is a message authored by an administrator.
type Notification struct {
	ID          string
	SenderID    string
	Title       string
	Body        string
	IsBroadcast bool
	CreatedAt   time.Time
}

// NotificationRecipient tracks per-recipient read state.
type NotificationRecipient struct {
	NotificationID string
	RecipientID    string
	ReadAt         *time.Time
}

// InboxItem joins a notification with one recipient's read state.
type InboxItem struct {
	Notification Notification
	ReadAt       *time.Time
}

// DeviceToken is a push registration for a user's device.
type DeviceToken struct {
	Token     string
	UserID    string
	Platform  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
