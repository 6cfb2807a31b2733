package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/attendance-tracker/internal/application"
)

type attendanceService interface {
	CheckIn(ctx context.Context, params application.CheckInParams) (application.Attendance, error)
	CheckOut(ctx context.Context, params application.CheckOutParams) (application.Attendance, error)
	Current(ctx context.Context, principal application.Principal) (application.Attendance, bool, error)
	ListAttendance(ctx context.Context, params application.ListAttendanceParams) ([]application.Attendance, error)
	UpdateStatus(ctx context.Context, params application.UpdateAttendanceStatusParams) (application.Attendance, error)
	RecomputeStatuses(ctx context.Context, params application.RecomputeStatusesParams) (application.RecomputeResult, error)
}

// AttendanceHandler serves check-in, check-out and attendance listings.
type AttendanceHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

// CheckIn handles POST /attendance/check-in.
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	attendance, err := h.service.CheckIn(r.Context(), application.CheckInParams{
		Principal: principal,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CheckIn").InfoContext(r.Context(), "checked in",
		"attendance_id", attendance.ID,
		"status", attendance.Status,
		"location_valid", attendance.CheckInLocationValid,
	)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, attendanceResponse{Attendance: toAttendanceDTO(attendance)})
}

// CheckOut handles POST /attendance/check-out.
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req positionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	attendance, err := h.service.CheckOut(r.Context(), application.CheckOutParams{
		Principal: principal,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CheckOut").InfoContext(r.Context(), "checked out", "attendance_id", attendance.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, attendanceResponse{Attendance: toAttendanceDTO(attendance)})
}

// Current handles GET /attendance/current.
func (h *AttendanceHandler) Current(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	attendance, ok, err := h.service.Current(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var resp currentAttendanceResponse
	if ok {
		dto := toAttendanceDTO(attendance)
		resp.Attendance = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// List handles GET /attendance.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	records, err := h.service.ListAttendance(r.Context(), application.ListAttendanceParams{
		Principal: principal,
		UserID:    strings.TrimSpace(query.Get("user_id")),
		From:      strings.TrimSpace(query.Get("from")),
		To:        strings.TrimSpace(query.Get("to")),
		Status:    strings.TrimSpace(query.Get("status")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]attendanceDTO, 0, len(records))
	for _, record := range records {
		out = append(out, toAttendanceDTO(record))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAttendanceResponse{Attendance: out})
}

// UpdateStatus handles PUT /attendance/{id}/status.
func (h *AttendanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	attendance, err := h.service.UpdateStatus(r.Context(), application.UpdateAttendanceStatusParams{
		Principal:    principal,
		AttendanceID: id,
		Status:       req.Status,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, attendanceResponse{Attendance: toAttendanceDTO(attendance)})
}

// Recompute handles POST /attendance/recompute.
func (h *AttendanceHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req recomputeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.RecomputeStatuses(r.Context(), application.RecomputeStatusesParams{
		Principal: principal,
		Date:      req.Date,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, recomputeResponse{
		Date:      formatDate(result.Date),
		Examined:  result.Examined,
		Updated:   result.Updated,
		Unchanged: result.Unchanged,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
	})
}

type positionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Notes     string  `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type recomputeRequest struct {
	Date string `json:"date"`
}

type attendanceDTO struct {
	ID                    string   `json:"id"`
	UserID                string   `json:"user_id"`
	WorkDate              string   `json:"work_date"`
	CheckIn               string   `json:"check_in"`
	CheckInLatitude       float64  `json:"check_in_latitude"`
	CheckInLongitude      float64  `json:"check_in_longitude"`
	CheckInLocationValid  bool     `json:"check_in_location_valid"`
	CheckInLocationID     *string  `json:"check_in_location_id,omitempty"`
	CheckInDistanceMeters *float64 `json:"check_in_distance_meters,omitempty"`
	CheckOut              *string  `json:"check_out,omitempty"`
	CheckOutLatitude      *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude     *float64 `json:"check_out_longitude,omitempty"`
	CheckOutLocationValid *bool    `json:"check_out_location_valid,omitempty"`
	ScheduleID            *string  `json:"schedule_id,omitempty"`
	Status                string   `json:"status"`
	Notes                 *string  `json:"notes,omitempty"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
}

func toAttendanceDTO(a application.Attendance) attendanceDTO {
	return attendanceDTO{
		ID:                    a.ID,
		UserID:                a.UserID,
		WorkDate:              formatDate(a.WorkDate),
		CheckIn:               formatTime(a.CheckIn),
		CheckInLatitude:       a.CheckInLatitude,
		CheckInLongitude:      a.CheckInLongitude,
		CheckInLocationValid:  a.CheckInLocationValid,
		CheckInLocationID:     a.CheckInLocationID,
		CheckInDistanceMeters: a.CheckInDistanceMeters,
		CheckOut:              formatOptionalTime(a.CheckOut),
		CheckOutLatitude:      a.CheckOutLatitude,
		CheckOutLongitude:     a.CheckOutLongitude,
		CheckOutLocationValid: a.CheckOutLocationValid,
		ScheduleID:            a.ScheduleID,
		Status:                string(a.Status),
		Notes:                 a.Notes,
		CreatedAt:             formatTime(a.CreatedAt),
		UpdatedAt:             formatTime(a.UpdatedAt),
	}
}

type attendanceResponse struct {
	Attendance attendanceDTO `json:"attendance"`
}

type currentAttendanceResponse struct {
	Attendance *attendanceDTO `json:"attendance"`
}

type listAttendanceResponse struct {
	Attendance []attendanceDTO `json:"attendance"`
}

type recomputeResponse struct {
	Date      string `json:"date"`
	Examined  int    `json:"examined"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}
