package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/attendance-tracker/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	pool *ConnectionPool
}

// NewScheduleRepository creates a new SQLite employee schedule repository.
func NewScheduleRepository(pool *ConnectionPool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, user_id, day_of_week, effective_date, end_date, shift_start, shift_end, location_id, is_active, created_at, updated_at`

// CreateSchedule inserts a new employee schedule.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.EmployeeSchedule) error {
	if schedule.ID == "" || schedule.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO employee_schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		schedule.ID,
		schedule.UserID,
		nullInt(schedule.DayOfWeek),
		nullString(schedule.EffectiveDate),
		nullString(schedule.EndDate),
		schedule.ShiftStart,
		schedule.ShiftEnd,
		nullString(schedule.LocationID),
		schedule.IsActive,
		formatTimestamp(schedule.CreatedAt),
		formatTimestamp(schedule.UpdatedAt),
	)
	return MapError(err)
}

// UpdateSchedule replaces the mutable fields of a schedule. The owner is immutable.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.EmployeeSchedule) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE employee_schedules
		SET day_of_week = ?, effective_date = ?, end_date = ?, shift_start = ?, shift_end = ?,
			location_id = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		nullInt(schedule.DayOfWeek),
		nullString(schedule.EffectiveDate),
		nullString(schedule.EndDate),
		schedule.ShiftStart,
		schedule.ShiftEnd,
		nullString(schedule.LocationID),
		schedule.IsActive,
		formatTimestamp(schedule.UpdatedAt),
		schedule.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetSchedule retrieves a schedule by ID.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.EmployeeSchedule, error) {
	return scanSchedule(r.pool.db.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM employee_schedules WHERE id = ?`, id))
}

// ListSchedules returns schedules ordered by creation time then ID, which is
// the precedence order used when several schedules match the same day.
func (r *ScheduleRepository) ListSchedules(ctx context.Context, filter persistence.ScheduleFilter) ([]persistence.EmployeeSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM employee_schedules WHERE 1 = 1`
	var args []any
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var schedules []persistence.EmployeeSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule; attendance rows keep their history with
// the schedule reference cleared.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM employee_schedules WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

func scanSchedule(row rowScanner) (persistence.EmployeeSchedule, error) {
	var (
		schedule               persistence.EmployeeSchedule
		dayOfWeek              sql.NullInt64
		effectiveDate, endDate sql.NullString
		locationID             sql.NullString
		createdAt, updatedAt   string
	)

	if err := row.Scan(
		&schedule.ID,
		&schedule.UserID,
		&dayOfWeek,
		&effectiveDate,
		&endDate,
		&schedule.ShiftStart,
		&schedule.ShiftEnd,
		&locationID,
		&schedule.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.EmployeeSchedule{}, MapError(err)
	}

	var err error
	schedule.DayOfWeek = intPtr(dayOfWeek)
	schedule.EffectiveDate = stringPtr(effectiveDate)
	schedule.EndDate = stringPtr(endDate)
	schedule.LocationID = stringPtr(locationID)
	if schedule.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.EmployeeSchedule{}, err
	}
	if schedule.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.EmployeeSchedule{}, err
	}
	return schedule, nil
}
