package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/attendance-tracker/internal/persistence"
)

// AttendanceRepository implements persistence.AttendanceRepository using SQLite.
type AttendanceRepository struct {
	pool *ConnectionPool
}

// NewAttendanceRepository creates a new SQLite attendance repository.
func NewAttendanceRepository(pool *ConnectionPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

const attendanceColumns = `id, user_id, work_date, check_in, check_in_latitude, check_in_longitude,
	check_in_location_valid, check_in_location_id, check_in_distance_meters,
	check_out, check_out_latitude, check_out_longitude, check_out_location_valid,
	schedule_id, status, notes, created_at, updated_at`

// CreateAttendance inserts a check-in row. A second open row for the same
// user violates idx_attendance_open and yields persistence.ErrConflict.
func (r *AttendanceRepository) CreateAttendance(ctx context.Context, attendance persistence.Attendance) error {
	if attendance.ID == "" || attendance.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO attendance (`+attendanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, attendanceArgs(attendance)...)
	return MapError(err)
}

// UpdateAttendance replaces the check-out, status and notes of a row.
func (r *AttendanceRepository) UpdateAttendance(ctx context.Context, attendance persistence.Attendance) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE attendance
		SET check_out = ?, check_out_latitude = ?, check_out_longitude = ?, check_out_location_valid = ?,
			schedule_id = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		nullTimestamp(attendance.CheckOut),
		nullFloat(attendance.CheckOutLatitude),
		nullFloat(attendance.CheckOutLongitude),
		nullBool(attendance.CheckOutLocationValid),
		nullString(attendance.ScheduleID),
		attendance.Status,
		nullString(attendance.Notes),
		formatTimestamp(attendance.UpdatedAt),
		attendance.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetAttendance retrieves an attendance row by ID.
func (r *AttendanceRepository) GetAttendance(ctx context.Context, id string) (persistence.Attendance, error) {
	return scanAttendance(r.pool.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id))
}

// GetOpenAttendance returns the user's row without a check-out.
func (r *AttendanceRepository) GetOpenAttendance(ctx context.Context, userID string) (persistence.Attendance, error) {
	return scanAttendance(r.pool.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE user_id = ? AND check_out IS NULL`, userID))
}

// ListAttendance returns rows ordered by work date then check-in time.
func (r *AttendanceRepository) ListAttendance(ctx context.Context, filter persistence.AttendanceFilter) ([]persistence.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE 1 = 1`
	var args []any
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.FromDate != "" {
		query += ` AND work_date >= ?`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += ` AND work_date <= ?`
		args = append(args, filter.ToDate)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY work_date ASC, check_in ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var records []persistence.Attendance
	for rows.Next() {
		record, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

func attendanceArgs(a persistence.Attendance) []any {
	return []any{
		a.ID,
		a.UserID,
		a.WorkDate,
		formatTimestamp(a.CheckIn),
		a.CheckInLatitude,
		a.CheckInLongitude,
		a.CheckInLocationValid,
		nullString(a.CheckInLocationID),
		nullFloat(a.CheckInDistanceMeters),
		nullTimestamp(a.CheckOut),
		nullFloat(a.CheckOutLatitude),
		nullFloat(a.CheckOutLongitude),
		nullBool(a.CheckOutLocationValid),
		nullString(a.ScheduleID),
		a.Status,
		nullString(a.Notes),
		formatTimestamp(a.CreatedAt),
		formatTimestamp(a.UpdatedAt),
	}
}

func scanAttendance(row rowScanner) (persistence.Attendance, error) {
	var (
		a                                   persistence.Attendance
		checkIn, createdAt, updatedAt       string
		checkInLocationID, scheduleID       sql.NullString
		notes, checkOut                     sql.NullString
		distance, outLatitude, outLongitude sql.NullFloat64
		outValid                            sql.NullBool
	)

	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.WorkDate,
		&checkIn,
		&a.CheckInLatitude,
		&a.CheckInLongitude,
		&a.CheckInLocationValid,
		&checkInLocationID,
		&distance,
		&checkOut,
		&outLatitude,
		&outLongitude,
		&outValid,
		&scheduleID,
		&a.Status,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Attendance{}, MapError(err)
	}

	var err error
	if a.CheckIn, err = parseTimestamp("check_in", checkIn); err != nil {
		return persistence.Attendance{}, err
	}
	if a.CheckOut, err = parseNullTimestamp("check_out", checkOut); err != nil {
		return persistence.Attendance{}, err
	}
	if a.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.Attendance{}, err
	}
	if a.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.Attendance{}, err
	}
	a.CheckInLocationID = stringPtr(checkInLocationID)
	a.CheckInDistanceMeters = floatPtr(distance)
	a.CheckOutLatitude = floatPtr(outLatitude)
	a.CheckOutLongitude = floatPtr(outLongitude)
	a.CheckOutLocationValid = boolPtr(outValid)
	a.ScheduleID = stringPtr(scheduleID)
	a.Notes = stringPtr(notes)
	return a, nil
}
