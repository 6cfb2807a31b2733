package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/attendance-tracker/internal/persistence"
)

// LocationRepository implements persistence.LocationRepository using SQLite.
type LocationRepository struct {
	pool *ConnectionPool
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(pool *ConnectionPool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

const (
	locationColumns = `id, name, address, latitude, longitude, radius_meters, is_active, created_at, updated_at`
	areaColumns     = `id, location_id, name, description, guideline_minutes, is_active, created_at, updated_at`
)

// CreateLocation inserts a new work location.
func (r *LocationRepository) CreateLocation(ctx context.Context, location persistence.WorkLocation) error {
	if location.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO work_locations (`+locationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		location.ID,
		location.Name,
		nullString(location.Address),
		location.Latitude,
		location.Longitude,
		location.RadiusMeters,
		location.IsActive,
		formatTimestamp(location.CreatedAt),
		formatTimestamp(location.UpdatedAt),
	)
	return MapError(err)
}

// UpdateLocation replaces the mutable fields of a work location.
func (r *LocationRepository) UpdateLocation(ctx context.Context, location persistence.WorkLocation) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE work_locations
		SET name = ?, address = ?, latitude = ?, longitude = ?, radius_meters = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		location.Name,
		nullString(location.Address),
		location.Latitude,
		location.Longitude,
		location.RadiusMeters,
		location.IsActive,
		formatTimestamp(location.UpdatedAt),
		location.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetLocation retrieves a work location by ID.
func (r *LocationRepository) GetLocation(ctx context.Context, id string) (persistence.WorkLocation, error) {
	return scanLocation(r.pool.db.QueryRowContext(ctx, `SELECT `+locationColumns+` FROM work_locations WHERE id = ?`, id))
}

// ListLocations returns work locations ordered by name.
func (r *LocationRepository) ListLocations(ctx context.Context, activeOnly bool) ([]persistence.WorkLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM work_locations`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var locations []persistence.WorkLocation
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return locations, nil
}

// DeleteLocation removes a work location together with its office areas,
// templates and checklists. Attendance and schedules keep their rows with
// the location reference cleared.
func (r *LocationRepository) DeleteLocation(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM work_locations WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// CreateArea inserts a new office area.
func (r *LocationRepository) CreateArea(ctx context.Context, area persistence.OfficeArea) error {
	if area.ID == "" || area.LocationID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO office_areas (`+areaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		area.ID,
		area.LocationID,
		area.Name,
		nullString(area.Description),
		nullInt(area.GuidelineMinutes),
		area.IsActive,
		formatTimestamp(area.CreatedAt),
		formatTimestamp(area.UpdatedAt),
	)
	return MapError(err)
}

// UpdateArea replaces the mutable fields of an office area.
func (r *LocationRepository) UpdateArea(ctx context.Context, area persistence.OfficeArea) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE office_areas
		SET location_id = ?, name = ?, description = ?, guideline_minutes = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		area.LocationID,
		area.Name,
		nullString(area.Description),
		nullInt(area.GuidelineMinutes),
		area.IsActive,
		formatTimestamp(area.UpdatedAt),
		area.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetArea retrieves an office area by ID.
func (r *LocationRepository) GetArea(ctx context.Context, id string) (persistence.OfficeArea, error) {
	return scanArea(r.pool.db.QueryRowContext(ctx, `SELECT `+areaColumns+` FROM office_areas WHERE id = ?`, id))
}

// ListAreas returns office areas, optionally limited to one location.
func (r *LocationRepository) ListAreas(ctx context.Context, locationID string, activeOnly bool) ([]persistence.OfficeArea, error) {
	query := `SELECT ` + areaColumns + ` FROM office_areas WHERE 1 = 1`
	var args []any
	if locationID != "" {
		query += ` AND location_id = ?`
		args = append(args, locationID)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var areas []persistence.OfficeArea
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return areas, nil
}

// DeleteArea removes an office area.
func (r *LocationRepository) DeleteArea(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM office_areas WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

func scanLocation(row rowScanner) (persistence.WorkLocation, error) {
	var (
		location             persistence.WorkLocation
		address              sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&location.ID,
		&location.Name,
		&address,
		&location.Latitude,
		&location.Longitude,
		&location.RadiusMeters,
		&location.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.WorkLocation{}, MapError(err)
	}

	var err error
	location.Address = stringPtr(address)
	if location.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.WorkLocation{}, err
	}
	if location.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.WorkLocation{}, err
	}
	return location, nil
}

func scanArea(row rowScanner) (persistence.OfficeArea, error) {
	var (
		area                 persistence.OfficeArea
		description          sql.NullString
		guideline            sql.NullInt64
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&area.ID,
		&area.LocationID,
		&area.Name,
		&description,
		&guideline,
		&area.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.OfficeArea{}, MapError(err)
	}

	var err error
	area.Description = stringPtr(description)
	area.GuidelineMinutes = intPtr(guideline)
	if area.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.OfficeArea{}, err
	}
	if area.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.OfficeArea{}, err
	}
	return area, nil
}
