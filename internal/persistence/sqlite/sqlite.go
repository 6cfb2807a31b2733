package sqlite

import (
	"context"
	"embed"
	"fmt"

	"github.com/example/attendance-tracker/internal/logging"
	"github.com/example/attendance-tracker/internal/persistence/sqlite/migration"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Storage bundles the SQLite connection pool with every repository.
type Storage struct {
	pool *ConnectionPool

	Profiles      *ProfileRepository
	Sessions      *SessionRepository
	Locations     *LocationRepository
	Schedules     *ScheduleRepository
	Attendance    *AttendanceRepository
	Checklists    *ChecklistRepository
	Notifications *NotificationRepository
}

// Open opens the database at dsn with the default server configuration.
func Open(ctx context.Context, dsn string) (*Storage, error) {
	return OpenWithConfig(ctx, migration.DefaultSQLiteConfig(dsn))
}

// OpenWithConfig opens the database described by config.
func OpenWithConfig(ctx context.Context, config migration.SQLiteConfig) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:          pool,
		Profiles:      NewProfileRepository(pool),
		Sessions:      NewSessionRepository(pool),
		Locations:     NewLocationRepository(pool),
		Schedules:     NewScheduleRepository(pool),
		Attendance:    NewAttendanceRepository(pool),
		Checklists:    NewChecklistRepository(pool),
		Notifications: NewNotificationRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations that have not run yet.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(schemaFS, "schema"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		logging.FromContext(ctx),
	)
	if _, err := manager.Run(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
