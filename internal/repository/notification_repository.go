package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"flock-server/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.PendingNotification) error
	ListUndelivered(ctx context.Context) ([]domain.PendingNotification, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error

	// Refresh forces visibility of prior writes; no-op for Postgres.
	Refresh(ctx context.Context) error
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.PendingNotification) error {
	query := `
		INSERT INTO notifications (id, notification_id, details, delivered)
		VALUES ($1, $2, $3, false)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.NotificationID, notif.Details,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) ListUndelivered(ctx context.Context) ([]domain.PendingNotification, error) {
	var notifications []domain.PendingNotification
	query := `SELECT * FROM notifications WHERE delivered = false ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &notifications, query)
	return notifications, err
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET delivered = true WHERE id = $1 AND delivered = false`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) Refresh(ctx context.Context) error {
	return nil
}
