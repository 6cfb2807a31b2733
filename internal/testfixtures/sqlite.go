package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/attendance-tracker/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Storage *sqlite.Storage

	Profiles      *sqlite.ProfileRepository
	Sessions      *sqlite.SessionRepository
	Locations     *sqlite.LocationRepository
	Schedules     *sqlite.ScheduleRepository
	Attendance    *sqlite.AttendanceRepository
	Checklists    *sqlite.ChecklistRepository
	Notifications *sqlite.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), "attendance.db")

	storage, err := sqlite.Open(ctx, path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:       storage,
		Profiles:      storage.Profiles,
		Sessions:      storage.Sessions,
		Locations:     storage.Locations,
		Schedules:     storage.Schedules,
		Attendance:    storage.Attendance,
		Checklists:    storage.Checklists,
		Notifications: storage.Notifications,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
