package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/example/attendance-tracker/internal/persistence"
)

// ProfileRepository implements persistence.ProfileRepository using SQLite.
type ProfileRepository struct {
	pool *ConnectionPool
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(pool *ConnectionPool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `id, email, full_name, role, department, password_hash, is_active, created_at, updated_at`

// CreateProfile inserts a new profile. Emails are stored lower-cased.
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" || profile.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		profile.ID,
		normalizeEmail(profile.Email),
		profile.FullName,
		profile.Role,
		nullString(profile.Department),
		profile.PasswordHash,
		profile.IsActive,
		formatTimestamp(profile.CreatedAt),
		formatTimestamp(profile.UpdatedAt),
	)
	return MapError(err)
}

// UpdateProfile replaces the mutable fields of an existing profile.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile persistence.Profile) error {
	if profile.ID == "" || profile.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE profiles
		SET email = ?, full_name = ?, role = ?, department = ?, password_hash = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		normalizeEmail(profile.Email),
		profile.FullName,
		profile.Role,
		nullString(profile.Department),
		profile.PasswordHash,
		profile.IsActive,
		formatTimestamp(profile.UpdatedAt),
		profile.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetProfile retrieves a profile by ID.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (persistence.Profile, error) {
	if id == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// GetProfileByEmail retrieves a profile by email, case-insensitively.
func (r *ProfileRepository) GetProfileByEmail(ctx context.Context, email string) (persistence.Profile, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = ?`, normalized)
	return scanProfile(row)
}

// ListProfiles returns profiles ordered by full name then ID.
func (r *ProfileRepository) ListProfiles(ctx context.Context, activeOnly bool) ([]persistence.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY full_name ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var profiles []persistence.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return profiles, nil
}

// DeleteProfile removes a profile. Rows that only reference the profile
// (sessions, schedules, attendance, inbox entries) are removed by cascade.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

func scanProfile(row rowScanner) (persistence.Profile, error) {
	var (
		profile              persistence.Profile
		department           sql.NullString
		createdAt, updatedAt string
	)

	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&department,
		&profile.PasswordHash,
		&profile.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Profile{}, MapError(err)
	}

	var err error
	profile.Department = stringPtr(department)
	if profile.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.Profile{}, err
	}
	if profile.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.Profile{}, err
	}
	return profile, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
