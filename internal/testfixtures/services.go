package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/attendance-tracker/internal/application"
)

// ServiceFactory builds application services on a shared test clock. Each
// service draws IDs from its own entity sequence.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) ids(override func() string, entity Entity) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.For(entity)
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// fastHasher avoids argon2 cost in tests. Hashes are "plain:" + password.
func fastHasher(password string) (string, error) {
	return "plain:" + password, nil
}

// FastPasswordVerifier accepts hashes produced by the factory's default hasher.
func FastPasswordVerifier(hashed, password string) error {
	if hashed != "plain:"+password {
		return application.ErrInvalidCredentials
	}
	return nil
}

// ProfileServiceDeps captures dependencies for constructing a profile service.
type ProfileServiceDeps struct {
	Profiles    application.ProfileRepository
	Hasher      application.PasswordHasher
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewProfileService builds a profile service. Without a Hasher, passwords are
// stored as "plain:<password>".
func (f *ServiceFactory) NewProfileService(deps ProfileServiceDeps) *application.ProfileService {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = fastHasher
	}
	return application.NewProfileServiceWithLogger(deps.Profiles, hasher, f.ids(deps.IDGenerator, EntityProfile), f.now(deps.Now), deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	Hasher         application.PasswordHasher
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service. Verification and hashing default to
// the "plain:" scheme used by NewProfileService.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	verify := deps.PasswordVerify
	if verify == nil {
		verify = FastPasswordVerifier
	}
	hasher := deps.Hasher
	if hasher == nil {
		hasher = fastHasher
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		verify,
		hasher,
		f.ids(deps.TokenGenerator, EntitySession),
		f.now(deps.Now),
		deps.SessionTTL,
		deps.Logger,
	)
}

// LocationServiceDeps captures dependencies for constructing a location service.
type LocationServiceDeps struct {
	Locations   application.LocationRepository
	CacheTTL    time.Duration
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewLocationService builds a location service.
func (f *ServiceFactory) NewLocationService(deps LocationServiceDeps) *application.LocationService {
	return application.NewLocationServiceWithLogger(deps.Locations, f.ids(deps.IDGenerator, EntityLocation), f.now(deps.Now), deps.CacheTTL, deps.Logger)
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Schedules   application.ScheduleRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewScheduleService builds a schedule service.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	return application.NewScheduleServiceWithLogger(deps.Schedules, f.ids(deps.IDGenerator, EntitySchedule), f.now(deps.Now), deps.Logger)
}

// AttendanceServiceDeps captures dependencies for constructing an attendance service.
type AttendanceServiceDeps struct {
	Attendance  application.AttendanceRepository
	Zones       application.ZoneProvider
	Schedules   application.ScheduleResolver
	Policy      application.AttendancePolicy
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAttendanceService builds an attendance service. A zero Policy resolves to
// UTC with scheduler.DefaultLateGrace.
func (f *ServiceFactory) NewAttendanceService(deps AttendanceServiceDeps) *application.AttendanceService {
	return application.NewAttendanceServiceWithLogger(
		deps.Attendance,
		deps.Zones,
		deps.Schedules,
		deps.Policy,
		f.ids(deps.IDGenerator, EntityAttendance),
		f.now(deps.Now),
		deps.Logger,
	)
}

// ChecklistServiceDeps captures dependencies for constructing a checklist service.
type ChecklistServiceDeps struct {
	Checklists  application.ChecklistRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewChecklistService builds a checklist service.
func (f *ServiceFactory) NewChecklistService(deps ChecklistServiceDeps) *application.ChecklistService {
	return application.NewChecklistServiceWithLogger(deps.Checklists, f.ids(deps.IDGenerator, EntityChecklist), f.now(deps.Now), deps.Logger)
}

// NotificationServiceDeps captures dependencies for constructing a notification service.
type NotificationServiceDeps struct {
	Notifications application.NotificationRepository
	Directory     application.RecipientDirectory
	Pusher        application.Pusher
	IDGenerator   func() string
	Now           func() time.Time
	Logger        *slog.Logger
}

// NewNotificationService builds a notification service.
func (f *ServiceFactory) NewNotificationService(deps NotificationServiceDeps) *application.NotificationService {
	return application.NewNotificationServiceWithLogger(
		deps.Notifications,
		deps.Directory,
		deps.Pusher,
		f.ids(deps.IDGenerator, EntityNotification),
		f.now(deps.Now),
		deps.Logger,
	)
}
