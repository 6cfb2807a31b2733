package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

const (
	maxNotificationTitle = 200
	maxNotificationBody  = 4000
	maxDeviceToken       = 4096
)

// NotificationRepository captures persistence operations for notifications and device tokens.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification, recipientIDs []string) (Notification, error)
	ListInbox(ctx context.Context, recipientID string, unreadOnly bool) ([]InboxItem, error)
	MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) error
	MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error)

	UpsertDeviceToken(ctx context.Context, token DeviceToken) (DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, userID, token string) error
	ListDeviceTokens(ctx context.Context, userIDs []string) ([]DeviceToken, error)
}

// RecipientDirectory lists the profiles a notification can be addressed to.
type RecipientDirectory interface {
	ListProfiles(ctx context.Context, activeOnly bool) ([]Profile, error)
}

// PushMessage is a push notification addressed to a set of device tokens.
type PushMessage struct {
	Title  string
	Body   string
	Tokens []string
	Data   map[string]string
}

// PushReport is the per-token outcome of a push delivery.
type PushReport struct {
	Success int
	Failure int
	// InvalidTokens lists tokens the push provider reported as unregistered.
	InvalidTokens []string
}

// Pusher delivers push notifications to devices.
type Pusher interface {
	Push(ctx context.Context, message PushMessage) (PushReport, error)
}

// NotificationService stores admin notifications and fans them out to devices.
type NotificationService struct {
	notifications NotificationRepository
	directory     RecipientDirectory
	pusher        Pusher
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService wires dependencies for notification operations. A nil
// pusher disables push delivery.
func NewNotificationService(notifications NotificationRepository, directory RecipientDirectory, pusher Pusher, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, directory, pusher, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger wires dependencies and a logger for notification operations.
func NewNotificationServiceWithLogger(notifications NotificationRepository, directory RecipientDirectory, pusher Pusher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		directory:     directory,
		pusher:        pusher,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// Send stores a notification for its recipients and pushes it to their
// registered devices. Broadcasts go to every active profile, the sender included.
// Push failures are reported in the result and never fail the call.
func (s *NotificationService) Send(ctx context.Context, params SendNotificationParams) (result SendResult, err error) {
	if s == nil {
		return SendResult{}, fmt.Errorf("NotificationService is nil")
	}
	logger := s.loggerWith(ctx, "Send", "principal_id", params.Principal.UserID, "broadcast", params.Broadcast)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "notification send failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "notification sent",
			"notification_id", result.Notification.ID,
			"recipients", result.Recipients,
			"push_success", result.PushSuccess,
			"push_failure", result.PushFailure,
		)
	}()

	if !params.Principal.IsAdmin() {
		return SendResult{}, ErrUnauthorized
	}
	if s.notifications == nil || s.directory == nil {
		return SendResult{}, fmt.Errorf("notification dependencies not configured")
	}

	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	vErr := &ValidationError{}
	switch {
	case title == "":
		vErr.add("title", "title is required")
	case len(title) > maxNotificationTitle:
		vErr.add("title", fmt.Sprintf("title must be at most %d characters", maxNotificationTitle))
	}
	switch {
	case body == "":
		vErr.add("body", "body is required")
	case len(body) > maxNotificationBody:
		vErr.add("body", fmt.Sprintf("body must be at most %d characters", maxNotificationBody))
	}
	requested := dedupeIDs(params.RecipientIDs)
	if !params.Broadcast && len(requested) == 0 {
		vErr.add("recipient_ids", "at least one recipient is required unless broadcasting")
	}
	if err = vErr.orNil(); err != nil {
		return SendResult{}, err
	}

	recipients, err := s.resolveRecipients(ctx, params.Broadcast, requested)
	if err != nil {
		return SendResult{}, err
	}

	notification := Notification{
		ID:          s.idGenerator(),
		SenderID:    params.Principal.UserID,
		Title:       title,
		Body:        body,
		IsBroadcast: params.Broadcast,
		CreatedAt:   s.now(),
	}
	stored, err := s.notifications.CreateNotification(ctx, notification, recipients)
	if err != nil {
		return SendResult{}, mapRepoError(err, "recipient_ids")
	}

	result = SendResult{Notification: stored, Recipients: len(recipients)}
	result.PushSuccess, result.PushFailure = s.push(ctx, logger, stored, recipients)
	return result, nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, broadcast bool, requested []string) ([]string, error) {
	profiles, err := s.directory.ListProfiles(ctx, true)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	active := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		active[p.ID] = struct{}{}
	}

	if broadcast {
		recipients := make([]string, 0, len(profiles))
		for _, p := range profiles {
			recipients = append(recipients, p.ID)
		}
		sort.Strings(recipients)
		return recipients, nil
	}

	var unknown []string
	for _, id := range requested {
		if _, ok := active[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		vErr := &ValidationError{}
		vErr.add("recipient_ids", "unknown or inactive recipients: "+strings.Join(unknown, ", "))
		return nil, vErr
	}
	return requested, nil
}

// push delivers to the recipients' devices and prunes tokens the provider
// reports as unregistered.
func (s *NotificationService) push(ctx context.Context, logger *slog.Logger, notification Notification, recipients []string) (int, int) {
	if s.pusher == nil || len(recipients) == 0 {
		return 0, 0
	}

	devices, err := s.notifications.ListDeviceTokens(ctx, recipients)
	if err != nil {
		logger.WarnContext(ctx, "device token lookup failed", "error", err)
		return 0, 0
	}
	if len(devices) == 0 {
		return 0, 0
	}

	owners := make(map[string]string, len(devices))
	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		owners[d.Token] = d.UserID
		tokens = append(tokens, d.Token)
	}

	report, err := s.pusher.Push(ctx, PushMessage{
		Title:  notification.Title,
		Body:   notification.Body,
		Tokens: tokens,
		Data:   map[string]string{"notification_id": notification.ID},
	})
	for _, token := range report.InvalidTokens {
		if derr := s.notifications.DeleteDeviceToken(ctx, owners[token], token); derr != nil && !isNotFound(derr) {
			logger.WarnContext(ctx, "stale device token removal failed", "error", derr)
		}
	}
	if err != nil {
		logger.WarnContext(ctx, "push delivery failed", "tokens", len(tokens), "pruned", len(report.InvalidTokens), "error", err)
		return report.Success, len(tokens) - report.Success
	}
	return report.Success, report.Failure
}

// ListForUser returns the principal's inbox, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, principal Principal, unreadOnly bool) ([]InboxItem, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}
	if s.notifications == nil {
		return nil, nil
	}

	items, err := s.notifications.ListInbox(ctx, principal.UserID, unreadOnly)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Notification.CreatedAt.After(items[j].Notification.CreatedAt)
	})
	return items, nil
}

// MarkRead marks one notification as read for the principal.
func (s *NotificationService) MarkRead(ctx context.Context, principal Principal, notificationID string) error {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}
	if !principal.Authenticated() {
		return ErrUnauthorized
	}
	if s.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}
	if err := s.notifications.MarkRead(ctx, notificationID, principal.UserID, s.now()); err != nil {
		return mapRepoError(err, "")
	}
	return nil
}

// MarkAllRead marks every unread notification as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal Principal) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("NotificationService is nil")
	}
	if !principal.Authenticated() {
		return 0, ErrUnauthorized
	}
	if s.notifications == nil {
		return 0, nil
	}
	n, err := s.notifications.MarkAllRead(ctx, principal.UserID, s.now())
	if err != nil {
		return 0, mapRepoError(err, "")
	}
	s.loggerWith(ctx, "MarkAllRead", "principal_id", principal.UserID).DebugContext(ctx, "notifications marked read", "count", n)
	return n, nil
}

// RegisterDevice stores a push token for the principal. Re-registering a token
// moves it to the current principal.
func (s *NotificationService) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (device DeviceToken, err error) {
	if s == nil {
		return DeviceToken{}, fmt.Errorf("NotificationService is nil")
	}
	logger := s.loggerWith(ctx, "RegisterDevice", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "device registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "device registered", "platform", device.Platform)
	}()

	if !params.Principal.Authenticated() {
		return DeviceToken{}, ErrUnauthorized
	}
	if s.notifications == nil {
		return DeviceToken{}, fmt.Errorf("notification repository not configured")
	}

	token := strings.TrimSpace(params.Token)
	platform := strings.ToLower(strings.TrimSpace(params.Platform))
	vErr := &ValidationError{}
	switch {
	case token == "":
		vErr.add("token", "token is required")
	case len(token) > maxDeviceToken:
		vErr.add("token", "token is too long")
	}
	switch platform {
	case "android", "ios", "web":
	case "":
		platform = "web"
	default:
		vErr.add("platform", "platform must be android, ios or web")
	}
	if err = vErr.orNil(); err != nil {
		return DeviceToken{}, err
	}

	now := s.now()
	device, err = s.notifications.UpsertDeviceToken(ctx, DeviceToken{
		Token:     token,
		UserID:    params.Principal.UserID,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return DeviceToken{}, mapRepoError(err, "")
	}
	return device, nil
}

// UnregisterDevice removes one of the principal's push tokens.
func (s *NotificationService) UnregisterDevice(ctx context.Context, principal Principal, token string) error {
	if s == nil {
		return fmt.Errorf("NotificationService is nil")
	}
	if !principal.Authenticated() {
		return ErrUnauthorized
	}
	if s.notifications == nil {
		return fmt.Errorf("notification repository not configured")
	}
	if err := s.notifications.DeleteDeviceToken(ctx, principal.UserID, strings.TrimSpace(token)); err != nil {
		return mapRepoError(err, "")
	}
	return nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
