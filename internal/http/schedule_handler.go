package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/attendance-tracker/internal/application"
)

type scheduleService interface {
	CreateSchedule(ctx context.Context, params application.CreateScheduleParams) (application.EmployeeSchedule, error)
	UpdateSchedule(ctx context.Context, params application.UpdateScheduleParams) (application.EmployeeSchedule, error)
	DeleteSchedule(ctx context.Context, principal application.Principal, scheduleID string) error
	ListSchedules(ctx context.Context, params application.ListSchedulesParams) ([]application.EmployeeSchedule, error)
	ResolveSchedule(ctx context.Context, params application.ResolveScheduleParams) (application.EmployeeSchedule, bool, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.CreateSchedule(r.Context(), application.CreateScheduleParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "ScheduleHandler", "Create").InfoContext(r.Context(), "schedule created", "schedule_id", schedule.ID, "user_id", schedule.UserID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID := pathID(r, "id")
	if scheduleID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	schedule, err := h.service.UpdateSchedule(r.Context(), application.UpdateScheduleParams{
		Principal:  principal,
		ScheduleID: scheduleID,
		Input:      req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Schedule: toScheduleDTO(schedule)})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scheduleID := pathID(r, "id")
	if scheduleID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteSchedule(r.Context(), principal, scheduleID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	schedules, err := h.service.ListSchedules(r.Context(), application.ListSchedulesParams{
		Principal:  principal,
		UserID:     strings.TrimSpace(query.Get("user_id")),
		ActiveOnly: queryBool(r, "active"),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]scheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toScheduleDTO(s))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSchedulesResponse{Schedules: out})
}

// Resolve handles GET /schedules/resolve?user_id=&date=. A date without a
// matching shift yields {"schedule": null}.
func (h *ScheduleHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	schedule, ok, err := h.service.ResolveSchedule(r.Context(), application.ResolveScheduleParams{
		Principal: principal,
		UserID:    strings.TrimSpace(query.Get("user_id")),
		Date:      strings.TrimSpace(query.Get("date")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var resp resolveScheduleResponse
	if ok {
		dto := toScheduleDTO(schedule)
		resp.Schedule = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type scheduleRequest struct {
	UserID        string  `json:"user_id"`
	DayOfWeek     *int    `json:"day_of_week"`
	EffectiveDate *string `json:"effective_date"`
	EndDate       *string `json:"end_date"`
	ShiftStart    string  `json:"shift_start"`
	ShiftEnd      string  `json:"shift_end"`
	LocationID    *string `json:"location_id"`
	Active        *bool   `json:"active"`
}

func (r scheduleRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{
		UserID:        r.UserID,
		DayOfWeek:     r.DayOfWeek,
		EffectiveDate: r.EffectiveDate,
		EndDate:       r.EndDate,
		ShiftStart:    r.ShiftStart,
		ShiftEnd:      r.ShiftEnd,
		LocationID:    r.LocationID,
		Active:        r.Active,
	}
}

type scheduleDTO struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	DayOfWeek     *int    `json:"day_of_week,omitempty"`
	EffectiveDate *string `json:"effective_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	ShiftStart    string  `json:"shift_start"`
	ShiftEnd      string  `json:"shift_end"`
	LocationID    *string `json:"location_id,omitempty"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toScheduleDTO(s application.EmployeeSchedule) scheduleDTO {
	dto := scheduleDTO{
		ID:            s.ID,
		UserID:        s.UserID,
		EffectiveDate: formatOptionalDate(s.EffectiveDate),
		EndDate:       formatOptionalDate(s.EndDate),
		ShiftStart:    s.ShiftStart.String(),
		ShiftEnd:      s.ShiftEnd.String(),
		LocationID:    s.LocationID,
		Active:        s.Active,
		CreatedAt:     formatTime(s.CreatedAt),
		UpdatedAt:     formatTime(s.UpdatedAt),
	}
	if s.DayOfWeek != nil {
		day := int(*s.DayOfWeek)
		dto.DayOfWeek = &day
	}
	return dto
}

type scheduleResponse struct {
	Schedule scheduleDTO `json:"schedule"`
}

type listSchedulesResponse struct {
	Schedules []scheduleDTO `json:"schedules"`
}

type resolveScheduleResponse struct {
	Schedule *scheduleDTO `json:"schedule"`
}
