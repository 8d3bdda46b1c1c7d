package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"fueldash/internal/domain"
	"fueldash/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a new notification in PENDING state.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data, delivery_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, data, n.DeliveryStatus, n.CreatedAt)
	return err
}

// MarkSent flips the delivery status to SENT.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	query := `UPDATE notifications SET delivery_status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, domain.DeliverySent, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, type, title, message, data, delivery_status, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&data, &n.DeliveryStatus, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// DeviceTokenRepository is a PostgreSQL implementation of
// repository.DeviceTokenRepository.
type DeviceTokenRepository struct {
	q Querier
}

// NewDeviceTokenRepository creates a new PostgreSQL device token repository.
func NewDeviceTokenRepository(db *sql.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{q: db}
}

// Save registers a device token for a user.
func (r *DeviceTokenRepository) Save(ctx context.Context, userID, token string) error {
	query := `
		INSERT INTO device_tokens (user_id, token, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, token) DO NOTHING
	`
	_, err := r.q.ExecContext(ctx, query, userID, token)
	return err
}

// ListByUser retrieves all device tokens registered for a user.
func (r *DeviceTokenRepository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
