package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/attendance-tracker/internal/application"
)

type checklistService interface {
	CreateTemplate(ctx context.Context, params application.CreateJobTemplateParams) (application.JobTemplate, error)
	UpdateTemplate(ctx context.Context, params application.UpdateJobTemplateParams) (application.JobTemplate, error)
	DeleteTemplate(ctx context.Context, principal application.Principal, templateID string) error
	ListTemplates(ctx context.Context, principal application.Principal, filter application.JobTemplateFilter) ([]application.JobTemplate, error)
	Generate(ctx context.Context, params application.GenerateChecklistsParams) (application.GenerateResult, error)
	ListChecklists(ctx context.Context, params application.ListChecklistsParams) ([]application.JobChecklist, error)
	StartChecklist(ctx context.Context, params application.StartChecklistParams) (application.JobChecklist, error)
	CompleteChecklist(ctx context.Context, params application.CompleteChecklistParams) (application.JobChecklist, error)
}

// ChecklistHandler serves job templates and their generated checklists.
type ChecklistHandler struct {
	service   checklistService
	responder responder
	logger    *slog.Logger
}

func NewChecklistHandler(service checklistService, logger *slog.Logger) *ChecklistHandler {
	base := defaultLogger(logger)
	return &ChecklistHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ChecklistHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *ChecklistHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	template, err := h.service.CreateTemplate(r.Context(), application.CreateJobTemplateParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, templateResponse{Template: toTemplateDTO(template)})
}

func (h *ChecklistHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	template, err := h.service.UpdateTemplate(r.Context(), application.UpdateJobTemplateParams{Principal: principal, TemplateID: id, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{Template: toTemplateDTO(template)})
}

func (h *ChecklistHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteTemplate(r.Context(), principal, pathID(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ChecklistHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	templates, err := h.service.ListTemplates(r.Context(), principal, application.JobTemplateFilter{
		LocationID: strings.TrimSpace(r.URL.Query().Get("location_id")),
		ActiveOnly: queryBool(r, "active"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]templateDTO, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateDTO(t))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTemplatesResponse{Templates: out})
}

// Generate handles POST /checklists/generate.
func (h *ChecklistHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.Generate(r.Context(), application.GenerateChecklistsParams{
		Principal:  principal,
		From:       req.From,
		To:         req.To,
		LocationID: req.LocationID,
		Overwrite:  req.Overwrite,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ChecklistHandler", "Generate").InfoContext(r.Context(), "checklists generated",
		"created", result.Created,
		"skipped", result.Skipped,
		"replaced", result.Replaced,
		"failed", result.Failed,
	)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, generateResponse{
		Created:  result.Created,
		Skipped:  result.Skipped,
		Replaced: result.Replaced,
		Failed:   result.Failed,
	})
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	checklists, err := h.service.ListChecklists(r.Context(), application.ListChecklistsParams{
		Principal:  principal,
		From:       strings.TrimSpace(query.Get("from")),
		To:         strings.TrimSpace(query.Get("to")),
		LocationID: strings.TrimSpace(query.Get("location_id")),
		AssigneeID: strings.TrimSpace(query.Get("assignee_id")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]checklistDTO, 0, len(checklists))
	for _, c := range checklists {
		out = append(out, toChecklistDTO(c))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listChecklistsResponse{Checklists: out})
}

// Start handles POST /checklists/{id}/start.
func (h *ChecklistHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req checklistProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	checklist, err := h.service.StartChecklist(r.Context(), application.StartChecklistParams{
		Principal:   principal,
		ChecklistID: pathID(r, "id"),
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checklistResponse{Checklist: toChecklistDTO(checklist)})
}

// Complete handles POST /checklists/{id}/complete.
func (h *ChecklistHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req checklistProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	checklist, err := h.service.CompleteChecklist(r.Context(), application.CompleteChecklistParams{
		Principal:   principal,
		ChecklistID: pathID(r, "id"),
		PhotoURL:    req.PhotoURL,
		Notes:       req.Notes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checklistResponse{Checklist: toChecklistDTO(checklist)})
}

type templateRequest struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	LocationID   string  `json:"location_id"`
	OfficeAreaID *string `json:"office_area_id"`
	AssigneeID   *string `json:"assignee_id"`
	Frequency    string  `json:"frequency"`
	DayOfWeek    *int    `json:"day_of_week"`
	DayOfMonth   *int    `json:"day_of_month"`
	Active       *bool   `json:"active"`
}

func (r templateRequest) toInput() application.JobTemplateInput {
	return application.JobTemplateInput{
		Title:        r.Title,
		Description:  r.Description,
		LocationID:   r.LocationID,
		OfficeAreaID: r.OfficeAreaID,
		AssigneeID:   r.AssigneeID,
		Frequency:    r.Frequency,
		DayOfWeek:    r.DayOfWeek,
		DayOfMonth:   r.DayOfMonth,
		Active:       r.Active,
	}
}

type templateDTO struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	LocationID   string  `json:"location_id"`
	OfficeAreaID *string `json:"office_area_id,omitempty"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	Frequency    string  `json:"frequency"`
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	DayOfMonth   *int    `json:"day_of_month,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toTemplateDTO(t application.JobTemplate) templateDTO {
	dto := templateDTO{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		LocationID:   t.LocationID,
		OfficeAreaID: t.OfficeAreaID,
		AssigneeID:   t.AssigneeID,
		Frequency:    string(t.Frequency),
		DayOfMonth:   t.DayOfMonth,
		Active:       t.Active,
		CreatedAt:    formatTime(t.CreatedAt),
		UpdatedAt:    formatTime(t.UpdatedAt),
	}
	if t.DayOfWeek != nil {
		day := int(*t.DayOfWeek)
		dto.DayOfWeek = &day
	}
	return dto
}

type templateResponse struct {
	Template templateDTO `json:"template"`
}

type listTemplatesResponse struct {
	Templates []templateDTO `json:"templates"`
}

type generateRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	LocationID string `json:"location_id"`
	Overwrite  bool   `json:"overwrite"`
}

type generateResponse struct {
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
	Replaced int `json:"replaced"`
	Failed   int `json:"failed"`
}

type checklistProgressRequest struct {
	PhotoURL *string `json:"photo_url"`
	Notes    *string `json:"notes"`
}

type checklistDTO struct {
	ID            string  `json:"id"`
	TemplateID    string  `json:"template_id"`
	ChecklistDate string  `json:"checklist_date"`
	LocationID    string  `json:"location_id"`
	OfficeAreaID  *string `json:"office_area_id,omitempty"`
	AssigneeID    *string `json:"assignee_id,omitempty"`
	Title         string  `json:"title"`
	StartedAt     *string `json:"started_at,omitempty"`
	CompletedAt   *string `json:"completed_at,omitempty"`
	StartPhotoURL *string `json:"start_photo_url,omitempty"`
	EndPhotoURL   *string `json:"end_photo_url,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	CompletedBy   *string `json:"completed_by,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toChecklistDTO(c application.JobChecklist) checklistDTO {
	return checklistDTO{
		ID:            c.ID,
		TemplateID:    c.TemplateID,
		ChecklistDate: formatDate(c.ChecklistDate),
		LocationID:    c.LocationID,
		OfficeAreaID:  c.OfficeAreaID,
		AssigneeID:    c.AssigneeID,
		Title:         c.Title,
		StartedAt:     formatOptionalTime(c.StartedAt),
		CompletedAt:   formatOptionalTime(c.CompletedAt),
		StartPhotoURL: c.StartPhotoURL,
		EndPhotoURL:   c.EndPhotoURL,
		Notes:         c.Notes,
		CompletedBy:   c.CompletedBy,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

type checklistResponse struct {
	Checklist checklistDTO `json:"checklist"`
}

type listChecklistsResponse struct {
	Checklists []checklistDTO `json:"checklists"`
}
