package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

// ChecklistRepository implements persistence.ChecklistRepository using SQLite.
type ChecklistRepository struct {
	pool *ConnectionPool
}

// NewChecklistRepository creates a new SQLite job template/checklist repository.
func NewChecklistRepository(pool *ConnectionPool) *ChecklistRepository {
	return &ChecklistRepository{pool: pool}
}

const (
	templateColumns = `id, title, description, location_id, office_area_id, assignee_id,
		frequency, day_of_week, day_of_month, is_active, created_at, updated_at`
	checklistColumns = `id, template_id, checklist_date, location_id, office_area_id, assignee_id, title,
		started_at, completed_at, start_photo_url, end_photo_url, notes, completed_by, is_active, created_at, updated_at`
)

// CreateTemplate inserts a new job template.
func (r *ChecklistRepository) CreateTemplate(ctx context.Context, template persistence.JobTemplate) error {
	if template.ID == "" || template.LocationID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO job_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		template.ID,
		template.Title,
		nullString(template.Description),
		template.LocationID,
		nullString(template.OfficeAreaID),
		nullString(template.AssigneeID),
		template.Frequency,
		nullInt(template.DayOfWeek),
		nullInt(template.DayOfMonth),
		template.IsActive,
		formatTimestamp(template.CreatedAt),
		formatTimestamp(template.UpdatedAt),
	)
	return MapError(err)
}

// UpdateTemplate replaces the mutable fields of a job template.
func (r *ChecklistRepository) UpdateTemplate(ctx context.Context, template persistence.JobTemplate) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE job_templates
		SET title = ?, description = ?, location_id = ?, office_area_id = ?, assignee_id = ?,
			frequency = ?, day_of_week = ?, day_of_month = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		template.Title,
		nullString(template.Description),
		template.LocationID,
		nullString(template.OfficeAreaID),
		nullString(template.AssigneeID),
		template.Frequency,
		nullInt(template.DayOfWeek),
		nullInt(template.DayOfMonth),
		template.IsActive,
		formatTimestamp(template.UpdatedAt),
		template.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetTemplate retrieves a job template by ID.
func (r *ChecklistRepository) GetTemplate(ctx context.Context, id string) (persistence.JobTemplate, error) {
	return scanTemplate(r.pool.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM job_templates WHERE id = ?`, id))
}

// ListTemplates returns templates ordered by creation time then ID.
func (r *ChecklistRepository) ListTemplates(ctx context.Context, filter persistence.TemplateFilter) ([]persistence.JobTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM job_templates WHERE 1 = 1`
	var args []any
	if filter.LocationID != "" {
		query += ` AND location_id = ?`
		args = append(args, filter.LocationID)
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

	var templates []persistence.JobTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return templates, nil
}

// DeleteTemplate removes a template and, by cascade, its checklists.
func (r *ChecklistRepository) DeleteTemplate(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM job_templates WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// CreateChecklist inserts a checklist instance. A second active row for the
// same template and date violates idx_job_checklists_active and yields
// persistence.ErrConflict.
func (r *ChecklistRepository) CreateChecklist(ctx context.Context, checklist persistence.JobChecklist) error {
	if checklist.ID == "" || checklist.TemplateID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO job_checklists (`+checklistColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		checklist.ID,
		checklist.TemplateID,
		checklist.ChecklistDate,
		checklist.LocationID,
		nullString(checklist.OfficeAreaID),
		nullString(checklist.AssigneeID),
		checklist.Title,
		nullTimestamp(checklist.StartedAt),
		nullTimestamp(checklist.CompletedAt),
		nullString(checklist.StartPhotoURL),
		nullString(checklist.EndPhotoURL),
		nullString(checklist.Notes),
		nullString(checklist.CompletedBy),
		checklist.IsActive,
		formatTimestamp(checklist.CreatedAt),
		formatTimestamp(checklist.UpdatedAt),
	)
	return MapError(err)
}

// UpdateChecklist records progress on a checklist instance.
func (r *ChecklistRepository) UpdateChecklist(ctx context.Context, checklist persistence.JobChecklist) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE job_checklists
		SET started_at = ?, completed_at = ?, start_photo_url = ?, end_photo_url = ?, notes = ?,
			completed_by = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		nullTimestamp(checklist.StartedAt),
		nullTimestamp(checklist.CompletedAt),
		nullString(checklist.StartPhotoURL),
		nullString(checklist.EndPhotoURL),
		nullString(checklist.Notes),
		nullString(checklist.CompletedBy),
		checklist.IsActive,
		formatTimestamp(checklist.UpdatedAt),
		checklist.ID,
	)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// GetChecklist retrieves a checklist instance by ID.
func (r *ChecklistRepository) GetChecklist(ctx context.Context, id string) (persistence.JobChecklist, error) {
	return scanChecklist(r.pool.db.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM job_checklists WHERE id = ?`, id))
}

// FindActiveChecklist returns the active instance of a template for a date.
func (r *ChecklistRepository) FindActiveChecklist(ctx context.Context, templateID, date string) (persistence.JobChecklist, error) {
	return scanChecklist(r.pool.db.QueryRowContext(ctx, `
		SELECT `+checklistColumns+` FROM job_checklists
		WHERE template_id = ? AND checklist_date = ? AND is_active = 1
	`, templateID, date))
}

// DeactivateChecklist marks an instance inactive so a replacement can be created.
func (r *ChecklistRepository) DeactivateChecklist(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE job_checklists SET is_active = 0, updated_at = ? WHERE id = ?`, formatTimestamp(at), id)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// ListChecklists returns instances ordered by date, title and ID.
func (r *ChecklistRepository) ListChecklists(ctx context.Context, filter persistence.ChecklistFilter) ([]persistence.JobChecklist, error) {
	query := `SELECT ` + checklistColumns + ` FROM job_checklists WHERE 1 = 1`
	var args []any
	if filter.FromDate != "" {
		query += ` AND checklist_date >= ?`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += ` AND checklist_date <= ?`
		args = append(args, filter.ToDate)
	}
	if filter.LocationID != "" {
		query += ` AND location_id = ?`
		args = append(args, filter.LocationID)
	}
	if filter.TemplateID != "" {
		query += ` AND template_id = ?`
		args = append(args, filter.TemplateID)
	}
	if filter.AssigneeID != "" {
		if filter.IncludeUnassigned {
			query += ` AND (assignee_id = ? OR assignee_id IS NULL)`
		} else {
			query += ` AND assignee_id = ?`
		}
		args = append(args, filter.AssigneeID)
	}
	if filter.ActiveOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY checklist_date ASC, title ASC, id ASC`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var checklists []persistence.JobChecklist
	for rows.Next() {
		checklist, err := scanChecklist(rows)
		if err != nil {
			return nil, err
		}
		checklists = append(checklists, checklist)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return checklists, nil
}

func scanTemplate(row rowScanner) (persistence.JobTemplate, error) {
	var (
		t                           persistence.JobTemplate
		description, area, assignee sql.NullString
		dayOfWeek, dayOfMonth       sql.NullInt64
		createdAt, updatedAt        string
	)

	if err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&t.LocationID,
		&area,
		&assignee,
		&t.Frequency,
		&dayOfWeek,
		&dayOfMonth,
		&t.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.JobTemplate{}, MapError(err)
	}

	var err error
	t.Description = stringPtr(description)
	t.OfficeAreaID = stringPtr(area)
	t.AssigneeID = stringPtr(assignee)
	t.DayOfWeek = intPtr(dayOfWeek)
	t.DayOfMonth = intPtr(dayOfMonth)
	if t.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.JobTemplate{}, err
	}
	if t.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.JobTemplate{}, err
	}
	return t, nil
}

func scanChecklist(row rowScanner) (persistence.JobChecklist, error) {
	var (
		c                                      persistence.JobChecklist
		area, assignee                         sql.NullString
		startedAt, completedAt                 sql.NullString
		startPhoto, endPhoto, notes, completer sql.NullString
		createdAt, updatedAt                   string
	)

	if err := row.Scan(
		&c.ID,
		&c.TemplateID,
		&c.ChecklistDate,
		&c.LocationID,
		&area,
		&assignee,
		&c.Title,
		&startedAt,
		&completedAt,
		&startPhoto,
		&endPhoto,
		&notes,
		&completer,
		&c.IsActive,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.JobChecklist{}, MapError(err)
	}

	var err error
	if c.StartedAt, err = parseNullTimestamp("started_at", startedAt); err != nil {
		return persistence.JobChecklist{}, err
	}
	if c.CompletedAt, err = parseNullTimestamp("completed_at", completedAt); err != nil {
		return persistence.JobChecklist{}, err
	}
	if c.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
		return persistence.JobChecklist{}, err
	}
	if c.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
		return persistence.JobChecklist{}, err
	}
	c.OfficeAreaID = stringPtr(area)
	c.AssigneeID = stringPtr(assignee)
	c.StartPhotoURL = stringPtr(startPhoto)
	c.EndPhotoURL = stringPtr(endPhoto)
	c.Notes = stringPtr(notes)
	c.CompletedBy = stringPtr(completer)
	return c, nil
}
