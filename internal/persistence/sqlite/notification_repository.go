package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/attendance-tracker/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using SQLite.
type NotificationRepository struct {
	pool *ConnectionPool
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// CreateNotification stores the notification and one unread recipient row per
// id in a single transaction.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification, recipientIDs []string) error {
	if notification.ID == "" || notification.SenderID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, sender_id, title, body, is_broadcast, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			notification.ID,
			notification.SenderID,
			notification.Title,
			notification.Body,
			notification.IsBroadcast,
			formatTimestamp(notification.CreatedAt),
		); err != nil {
			return MapError(err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO notification_recipients (notification_id, recipient_id) VALUES (?, ?)
			ON CONFLICT (notification_id, recipient_id) DO NOTHING
		`)
		if err != nil {
			return MapError(err)
		}
		defer stmt.Close()

		for _, recipientID := range recipientIDs {
			if _, err := stmt.ExecContext(ctx, notification.ID, recipientID); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
}

// ListInbox returns the recipient's notifications, newest first.
func (r *NotificationRepository) ListInbox(ctx context.Context, recipientID string, unreadOnly bool) ([]persistence.InboxItem, error) {
	query := `
		SELECT n.id, n.sender_id, n.title, n.body, n.is_broadcast, n.created_at, nr.read_at
		FROM notification_recipients nr
		JOIN notifications n ON n.id = nr.notification_id
		WHERE nr.recipient_id = ?`
	if unreadOnly {
		query += ` AND nr.read_at IS NULL`
	}
	query += ` ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.pool.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var items []persistence.InboxItem
	for rows.Next() {
		var (
			item      persistence.InboxItem
			createdAt string
			readAt    sql.NullString
		)
		if err := rows.Scan(
			&item.Notification.ID,
			&item.Notification.SenderID,
			&item.Notification.Title,
			&item.Notification.Body,
			&item.Notification.IsBroadcast,
			&createdAt,
			&readAt,
		); err != nil {
			return nil, MapError(err)
		}
		if item.Notification.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
			return nil, err
		}
		if item.ReadAt, err = parseNullTimestamp("read_at", readAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// MarkRead sets read_at for one recipient row. Already-read rows keep their
// original timestamp.
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, recipientID string, at time.Time) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE notification_recipients
		SET read_at = COALESCE(read_at, ?)
		WHERE notification_id = ? AND recipient_id = ?
	`, formatTimestamp(at), notificationID, recipientID)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// MarkAllRead marks every unread row of the recipient and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE notification_recipients SET read_at = ?
		WHERE recipient_id = ? AND read_at IS NULL
	`, formatTimestamp(at), recipientID)
	if err != nil {
		return 0, MapError(err)
	}
	return result.RowsAffected()
}

// UpsertDeviceToken registers a push token. Re-registering an existing token
// moves it to the new owner.
func (r *NotificationRepository) UpsertDeviceToken(ctx context.Context, token persistence.DeviceToken) error {
	if strings.TrimSpace(token.Token) == "" || token.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO device_tokens (token, user_id, platform, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (token) DO UPDATE SET
			user_id = excluded.user_id,
			platform = excluded.platform,
			updated_at = excluded.updated_at
	`,
		strings.TrimSpace(token.Token),
		token.UserID,
		token.Platform,
		formatTimestamp(token.CreatedAt),
		formatTimestamp(token.UpdatedAt),
	)
	return MapError(err)
}

// DeleteDeviceToken removes a token owned by the user.
func (r *NotificationRepository) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE token = ? AND user_id = ?`, strings.TrimSpace(token), userID)
	if err != nil {
		return MapError(err)
	}
	return checkAffected(result)
}

// ListDeviceTokens returns the tokens registered by any of the given users.
func (r *NotificationRepository) ListDeviceTokens(ctx context.Context, userIDs []string) ([]persistence.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT token, user_id, platform, created_at, updated_at
		FROM device_tokens
		WHERE user_id IN (`+placeholders+`)
		ORDER BY user_id ASC, token ASC
	`, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	var tokens []persistence.DeviceToken
	for rows.Next() {
		var (
			token                persistence.DeviceToken
			createdAt, updatedAt string
		)
		if err := rows.Scan(&token.Token, &token.UserID, &token.Platform, &createdAt, &updatedAt); err != nil {
			return nil, MapError(err)
		}
		if token.CreatedAt, err = parseTimestamp("created_at", createdAt); err != nil {
			return nil, err
		}
		if token.UpdatedAt, err = parseTimestamp("updated_at", updatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tokens, nil
}
