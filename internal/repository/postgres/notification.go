package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, organization_id, channel, recipient, subject, content, status, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.OrganizationID,
		n.Channel,
		n.Recipient,
		n.Subject,
		n.Content,
		n.Status,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	query := `
		UPDATE notifications
		SET status = $1, sent_at = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, n.Status, n.SentAt, time.Now(), n.ID)
	return err
}
