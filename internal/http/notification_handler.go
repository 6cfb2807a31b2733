package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/attendance-tracker/internal/application"
)

type notificationService interface {
	Send(ctx context.Context, params application.SendNotificationParams) (application.SendResult, error)
	ListForUser(ctx context.Context, principal application.Principal, unreadOnly bool) ([]application.InboxItem, error)
	MarkRead(ctx context.Context, principal application.Principal, notificationID string) error
	MarkAllRead(ctx context.Context, principal application.Principal) (int64, error)
	RegisterDevice(ctx context.Context, params application.RegisterDeviceParams) (application.DeviceToken, error)
	UnregisterDevice(ctx context.Context, principal application.Principal, token string) error
}

// NotificationHandler serves the notification inbox and push device registration.
type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

// Send handles POST /notifications.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req sendNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.Send(r.Context(), application.SendNotificationParams{
		Principal:    principal,
		Title:        req.Title,
		Body:         req.Body,
		Broadcast:    req.Broadcast,
		RecipientIDs: req.RecipientIDs,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "NotificationHandler", "Send").InfoContext(r.Context(), "notification sent",
		"notification_id", result.Notification.ID,
		"recipients", result.Recipients,
	)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sendNotificationResponse{
		Notification: toNotificationDTO(result.Notification, nil),
		Recipients:   result.Recipients,
		PushSuccess:  result.PushSuccess,
		PushFailure:  result.PushFailure,
	})
}

// Inbox handles GET /notifications.
func (h *NotificationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	items, err := h.service.ListForUser(r.Context(), principal, queryBool(r, "unread"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]notificationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toNotificationDTO(item.Notification, item.ReadAt))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, inboxResponse{Notifications: out})
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	n, err := h.service.MarkAllRead(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, markAllReadResponse{Updated: n})
}

// RegisterDevice handles POST /devices.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())

	device, err := h.service.RegisterDevice(r.Context(), application.RegisterDeviceParams{
		Principal: principal,
		Token:     req.Token,
		Platform:  req.Platform,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, deviceResponse{Device: deviceDTO{
		Platform:  device.Platform,
		CreatedAt: formatTime(device.CreatedAt),
		UpdatedAt: formatTime(device.UpdatedAt),
	}})
}

// UnregisterDevice handles DELETE /devices with the token in the body.
func (h *NotificationHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req deviceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.UnregisterDevice(r.Context(), principal, req.Token); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type sendNotificationRequest struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Broadcast    bool     `json:"broadcast"`
	RecipientIDs []string `json:"recipient_ids"`
}

type notificationDTO struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"sender_id"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	IsBroadcast bool    `json:"is_broadcast"`
	CreatedAt   string  `json:"created_at"`
	ReadAt      *string `json:"read_at,omitempty"`
}

func toNotificationDTO(n application.Notification, readAt *time.Time) notificationDTO {
	return notificationDTO{
		ID:          n.ID,
		SenderID:    n.SenderID,
		Title:       n.Title,
		Body:        n.Body,
		IsBroadcast: n.IsBroadcast,
		CreatedAt:   formatTime(n.CreatedAt),
		ReadAt:      formatOptionalTime(readAt),
	}
}

type sendNotificationResponse struct {
	Notification notificationDTO `json:"notification"`
	Recipients   int             `json:"recipients"`
	PushSuccess  int             `json:"push_success"`
	PushFailure  int             `json:"push_failure"`
}

type inboxResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type deviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type deviceDTO struct {
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type deviceResponse struct {
	Device deviceDTO `json:"device"`
}
