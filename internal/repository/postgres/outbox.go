package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.RetryCount,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT * FROM outbox_events
		WHERE status = $1 OR (status = $2 AND (retry_at IS NULL OR retry_at <= $3))
		ORDER BY created_at
		LIMIT $4
	`
	var events []*model.OutboxEvent
	err := r.db.SelectContext(ctx, &events, query,
		model.OutboxStatusPending, model.OutboxStatusRetry, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	now := time.Now()
	var processedAt *time.Time
	if status == model.OutboxStatusProcessed {
		processedAt = &now
	}
	var retryAt *time.Time
	if status == model.OutboxStatusRetry {
		at := now.Add(time.Minute)
		retryAt = &at
	}
	query := `
		UPDATE outbox_events
		SET status = $1,
		    error_message = $2,
		    retry_count = CASE WHEN $1 = 'retry' THEN retry_count + 1 ELSE retry_count END,
		    retry_at = $3,
		    processed_at = $4,
		    updated_at = $5
		WHERE id = $6
	`
	_, err := r.db.ExecContext(ctx, query, status, errMsg, retryAt, processedAt, now, id)
	if err != nil {
		return fmt.Errorf("failed to update outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM outbox_events WHERE status = $1 AND processed_at < $2`
	result, err := r.db.ExecContext(ctx, query, model.OutboxStatusProcessed, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
