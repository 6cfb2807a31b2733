package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/example/attendance-tracker/internal/recurrence"
	"github.com/example/attendance-tracker/internal/scheduler"
)

// MaxGenerationDays bounds the inclusive window of a single generation run.
const MaxGenerationDays = 93

// ChecklistRepository captures persistence operations for job templates and checklists.
type ChecklistRepository interface {
	CreateTemplate(ctx context.Context, template JobTemplate) (JobTemplate, error)
	GetTemplate(ctx context.Context, id string) (JobTemplate, error)
	UpdateTemplate(ctx context.Context, template JobTemplate) (JobTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplates(ctx context.Context, filter JobTemplateFilter) ([]JobTemplate, error)

	CreateChecklist(ctx context.Context, checklist JobChecklist) (JobChecklist, error)
	GetChecklist(ctx context.Context, id string) (JobChecklist, error)
	UpdateChecklist(ctx context.Context, checklist JobChecklist) (JobChecklist, error)
	FindActiveChecklist(ctx context.Context, templateID string, date time.Time) (JobChecklist, error)
	DeactivateChecklist(ctx context.Context, id string, at time.Time) error
	ListChecklists(ctx context.Context, filter ChecklistFilter) ([]JobChecklist, error)
}

// ChecklistService manages job templates and the dated checklists generated from them.
type ChecklistService struct {
	checklists  ChecklistRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewChecklistService wires dependencies for checklist operations.
func NewChecklistService(checklists ChecklistRepository, idGenerator func() string, now func() time.Time) *ChecklistService {
	return NewChecklistServiceWithLogger(checklists, idGenerator, now, nil)
}

// NewChecklistServiceWithLogger wires dependencies and a logger for checklist operations.
func NewChecklistServiceWithLogger(checklists ChecklistRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ChecklistService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ChecklistService{
		checklists:  checklists,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ChecklistService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChecklistService", operation, attrs...)
}

// CreateTemplate validates and persists a job template.
func (s *ChecklistService) CreateTemplate(ctx context.Context, params CreateJobTemplateParams) (template JobTemplate, err error) {
	if s == nil {
		return JobTemplate{}, fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "CreateTemplate", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "template creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template created", "template_id", template.ID, "frequency", template.Frequency)
	}()

	if !params.Principal.IsAdmin() {
		return JobTemplate{}, ErrUnauthorized
	}

	template, err = buildTemplate(params.Input)
	if err != nil {
		return JobTemplate{}, err
	}
	template.ID = s.idGenerator()
	template.Active = boolOr(params.Input.Active, true)
	template.CreatedAt = s.now()
	template.UpdatedAt = template.CreatedAt

	if s.checklists == nil {
		return template, nil
	}
	created, err := s.checklists.CreateTemplate(ctx, template)
	if err != nil {
		return JobTemplate{}, mapRepoError(err, "location_id")
	}
	return created, nil
}

// UpdateTemplate replaces the attributes of a job template. Existing checklists are untouched.
func (s *ChecklistService) UpdateTemplate(ctx context.Context, params UpdateJobTemplateParams) (template JobTemplate, err error) {
	if s == nil {
		return JobTemplate{}, fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "UpdateTemplate", "principal_id", params.Principal.UserID, "template_id", params.TemplateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "template update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template updated")
	}()

	if !params.Principal.IsAdmin() {
		return JobTemplate{}, ErrUnauthorized
	}
	if s.checklists == nil {
		return JobTemplate{}, fmt.Errorf("checklist repository not configured")
	}

	existing, err := s.checklists.GetTemplate(ctx, params.TemplateID)
	if err != nil {
		return JobTemplate{}, mapRepoError(err, "")
	}

	updated, err := buildTemplate(params.Input)
	if err != nil {
		return JobTemplate{}, err
	}
	updated.ID = existing.ID
	updated.Active = boolOr(params.Input.Active, existing.Active)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	template, err = s.checklists.UpdateTemplate(ctx, updated)
	if err != nil {
		return JobTemplate{}, mapRepoError(err, "location_id")
	}
	return template, nil
}

// DeleteTemplate removes a job template.
func (s *ChecklistService) DeleteTemplate(ctx context.Context, principal Principal, templateID string) (err error) {
	if s == nil {
		return fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "DeleteTemplate", "principal_id", principal.UserID, "template_id", templateID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "template deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template deleted")
	}()

	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.checklists == nil {
		return fmt.Errorf("checklist repository not configured")
	}
	if err = s.checklists.DeleteTemplate(ctx, templateID); err != nil {
		return mapRepoError(err, "id")
	}
	return nil
}

// ListTemplates returns templates ordered by title for managers and administrators.
func (s *ChecklistService) ListTemplates(ctx context.Context, principal Principal, filter JobTemplateFilter) ([]JobTemplate, error) {
	if s == nil {
		return nil, fmt.Errorf("ChecklistService is nil")
	}
	if !principal.CanManage() {
		return nil, ErrUnauthorized
	}
	if s.checklists == nil {
		return nil, nil
	}

	templates, err := s.checklists.ListTemplates(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	sort.SliceStable(templates, func(i, j int) bool {
		return strings.ToLower(templates[i].Title) < strings.ToLower(templates[j].Title)
	})
	return templates, nil
}

// Generate materializes active templates into dated checklists over an
// inclusive window. A (template, date) pair that already has an active
// checklist is skipped, or deactivated and replaced when Overwrite is set.
// Days are processed one at a time and failures do not abort the run.
func (s *ChecklistService) Generate(ctx context.Context, params GenerateChecklistsParams) (result GenerateResult, err error) {
	if s == nil {
		return GenerateResult{}, fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "Generate",
		"principal_id", params.Principal.UserID,
		"from", params.From,
		"to", params.To,
		"overwrite", params.Overwrite,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "checklist generation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checklist generation finished",
			"created", result.Created,
			"skipped", result.Skipped,
			"replaced", result.Replaced,
			"failed", result.Failed,
		)
	}()

	if !params.Principal.IsAdmin() {
		return GenerateResult{}, ErrUnauthorized
	}
	if s.checklists == nil {
		return GenerateResult{}, fmt.Errorf("checklist repository not configured")
	}

	vErr := &ValidationError{}
	from := parseDateField(vErr, "from", params.From, true)
	to := parseDateField(vErr, "to", params.To, true)
	if !vErr.HasErrors() {
		if to.Before(from) {
			vErr.add("to", "to must not be before from")
		} else if days := int(to.Sub(from).Hours()/24) + 1; days > MaxGenerationDays {
			vErr.add("to", fmt.Sprintf("range must not exceed %d days", MaxGenerationDays))
		}
	}
	if err = vErr.orNil(); err != nil {
		return GenerateResult{}, err
	}

	templates, err := s.checklists.ListTemplates(ctx, JobTemplateFilter{LocationID: strings.TrimSpace(params.LocationID), ActiveOnly: true})
	if err != nil {
		return GenerateResult{}, mapRepoError(err, "")
	}

	for _, template := range templates {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		dates, rangeErr := recurrence.Dates(template.Rule(), from, to)
		if rangeErr != nil {
			result.Failed++
			logger.WarnContext(ctx, "template rule rejected", "template_id", template.ID, "error", rangeErr)
			continue
		}
		for _, date := range dates {
			s.generateOne(ctx, logger, template, date, params.Overwrite, &result)
		}
	}
	return result, nil
}

func (s *ChecklistService) generateOne(ctx context.Context, logger *slog.Logger, template JobTemplate, date time.Time, overwrite bool, result *GenerateResult) {
	replacing := false
	existing, err := s.checklists.FindActiveChecklist(ctx, template.ID, date)
	switch {
	case err == nil:
		if !overwrite {
			result.Skipped++
			return
		}
		if err = s.checklists.DeactivateChecklist(ctx, existing.ID, s.now()); err != nil {
			result.Failed++
			logger.WarnContext(ctx, "checklist deactivation failed", "checklist_id", existing.ID, "error", err)
			return
		}
		replacing = true
	case !isNotFound(err):
		result.Failed++
		logger.WarnContext(ctx, "checklist lookup failed", "template_id", template.ID, "date", date.Format(scheduler.DateLayout), "error", err)
		return
	}

	now := s.now()
	checklist := JobChecklist{
		ID:            s.idGenerator(),
		TemplateID:    template.ID,
		ChecklistDate: date,
		LocationID:    template.LocationID,
		OfficeAreaID:  template.OfficeAreaID,
		AssigneeID:    template.AssigneeID,
		Title:         template.Title,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err = s.checklists.CreateChecklist(ctx, checklist); err != nil {
		if errors.Is(mapRepoError(err, ""), ErrAlreadyExists) {
			result.Skipped++
			return
		}
		result.Failed++
		logger.WarnContext(ctx, "checklist creation failed", "template_id", template.ID, "date", date.Format(scheduler.DateLayout), "error", err)
		return
	}
	if replacing {
		result.Replaced++
		return
	}
	result.Created++
}

// ListChecklists returns active checklists. Employees see items assigned to
// them plus unassigned items; managers and administrators may filter freely.
func (s *ChecklistService) ListChecklists(ctx context.Context, params ListChecklistsParams) ([]JobChecklist, error) {
	if s == nil {
		return nil, fmt.Errorf("ChecklistService is nil")
	}
	if !params.Principal.Authenticated() {
		return nil, ErrUnauthorized
	}

	vErr := &ValidationError{}
	from, to := parseDateRange(vErr, params.From, params.To)
	if err := vErr.orNil(); err != nil {
		return nil, err
	}

	filter := ChecklistFilter{
		FromDate:   from,
		ToDate:     to,
		LocationID: strings.TrimSpace(params.LocationID),
		AssigneeID: strings.TrimSpace(params.AssigneeID),
		ActiveOnly: true,
	}
	if !params.Principal.CanManage() {
		if filter.AssigneeID != "" && filter.AssigneeID != params.Principal.UserID {
			return nil, ErrUnauthorized
		}
		filter.AssigneeID = params.Principal.UserID
		filter.IncludeUnassigned = true
	}
	if s.checklists == nil {
		return nil, nil
	}

	items, err := s.checklists.ListChecklists(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return items, nil
}

// StartChecklist records that work on a checklist item began.
func (s *ChecklistService) StartChecklist(ctx context.Context, params StartChecklistParams) (checklist JobChecklist, err error) {
	if s == nil {
		return JobChecklist{}, fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "StartChecklist", "principal_id", params.Principal.UserID, "checklist_id", params.ChecklistID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "checklist start failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checklist started")
	}()

	existing, err := s.loadWorkable(ctx, params.Principal, params.ChecklistID)
	if err != nil {
		return JobChecklist{}, err
	}

	vErr := &ValidationError{}
	photo := normalizePhotoURL(vErr, "photo_url", params.PhotoURL)
	if existing.StartedAt != nil {
		vErr.add("started_at", "checklist already started")
	}
	if err = vErr.orNil(); err != nil {
		return JobChecklist{}, err
	}

	now := s.now()
	existing.StartedAt = &now
	existing.StartPhotoURL = photo
	existing.UpdatedAt = now

	checklist, err = s.checklists.UpdateChecklist(ctx, existing)
	if err != nil {
		return JobChecklist{}, mapRepoError(err, "")
	}
	return checklist, nil
}

// CompleteChecklist records completion of a checklist item, starting it first when needed.
func (s *ChecklistService) CompleteChecklist(ctx context.Context, params CompleteChecklistParams) (checklist JobChecklist, err error) {
	if s == nil {
		return JobChecklist{}, fmt.Errorf("ChecklistService is nil")
	}
	logger := s.loggerWith(ctx, "CompleteChecklist", "principal_id", params.Principal.UserID, "checklist_id", params.ChecklistID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "checklist completion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "checklist completed")
	}()

	existing, err := s.loadWorkable(ctx, params.Principal, params.ChecklistID)
	if err != nil {
		return JobChecklist{}, err
	}

	vErr := &ValidationError{}
	photo := normalizePhotoURL(vErr, "photo_url", params.PhotoURL)
	if existing.CompletedAt != nil {
		vErr.add("completed_at", "checklist already completed")
	}
	if err = vErr.orNil(); err != nil {
		return JobChecklist{}, err
	}

	now := s.now()
	if existing.StartedAt == nil {
		existing.StartedAt = &now
	}
	completedBy := params.Principal.UserID
	existing.CompletedAt = &now
	existing.CompletedBy = &completedBy
	existing.EndPhotoURL = photo
	existing.Notes = normalizeOptionalString(params.Notes)
	existing.UpdatedAt = now

	checklist, err = s.checklists.UpdateChecklist(ctx, existing)
	if err != nil {
		return JobChecklist{}, mapRepoError(err, "")
	}
	return checklist, nil
}

// loadWorkable fetches an active checklist the principal may act on.
func (s *ChecklistService) loadWorkable(ctx context.Context, principal Principal, checklistID string) (JobChecklist, error) {
	if !principal.Authenticated() {
		return JobChecklist{}, ErrUnauthorized
	}
	if s.checklists == nil {
		return JobChecklist{}, fmt.Errorf("checklist repository not configured")
	}

	checklist, err := s.checklists.GetChecklist(ctx, checklistID)
	if err != nil {
		return JobChecklist{}, mapRepoError(err, "")
	}
	if !checklist.Active {
		return JobChecklist{}, ErrNotFound
	}
	if !principal.CanManage() && checklist.AssigneeID != nil && *checklist.AssigneeID != principal.UserID {
		return JobChecklist{}, ErrUnauthorized
	}
	return checklist, nil
}

func buildTemplate(input JobTemplateInput) (JobTemplate, error) {
	vErr := &ValidationError{}

	template := JobTemplate{
		Title:        strings.TrimSpace(input.Title),
		Description:  normalizeOptionalString(input.Description),
		LocationID:   strings.TrimSpace(input.LocationID),
		OfficeAreaID: normalizeOptionalString(input.OfficeAreaID),
		AssigneeID:   normalizeOptionalString(input.AssigneeID),
	}
	if template.Title == "" {
		vErr.add("title", "title is required")
	}
	if template.LocationID == "" {
		vErr.add("location_id", "location_id is required")
	}

	frequency, err := recurrence.ParseFrequency(input.Frequency)
	if err != nil {
		vErr.add("frequency", "frequency must be daily, weekly or monthly")
		return JobTemplate{}, vErr
	}
	template.Frequency = frequency

	switch frequency {
	case recurrence.FrequencyWeekly:
		if input.DayOfWeek == nil || *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			vErr.add("day_of_week", "day_of_week must be between 0 and 6 for weekly templates")
		} else {
			weekday := time.Weekday(*input.DayOfWeek)
			template.DayOfWeek = &weekday
		}
	case recurrence.FrequencyMonthly:
		if input.DayOfMonth == nil || *input.DayOfMonth < 1 || *input.DayOfMonth > 31 {
			vErr.add("day_of_month", "day_of_month must be between 1 and 31 for monthly templates")
		} else {
			day := *input.DayOfMonth
			template.DayOfMonth = &day
		}
	}

	if err := vErr.orNil(); err != nil {
		return JobTemplate{}, err
	}
	return template, nil
}

func normalizePhotoURL(vErr *ValidationError, field string, value *string) *string {
	photo := normalizeOptionalString(value)
	if photo == nil {
		return nil
	}
	parsed, err := url.Parse(*photo)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		vErr.add(field, "must be an absolute http or https URL")
		return nil
	}
	return photo
}
