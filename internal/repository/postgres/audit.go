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

type auditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, organization_id, action, entity_type, entity_id, changes, metadata, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.OrganizationID,
		log.Action,
		log.EntityType,
		log.EntityID,
		log.Changes,
		log.Metadata,
		log.IPAddress,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, orgID uuid.UUID, p model.Pagination) ([]*model.AuditLog, error) {
	query := `
		SELECT * FROM audit_logs
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, orgID, p.Limit(), p.Offset()); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) error {
	query := `DELETE FROM audit_logs WHERE created_at < $1`
	_, err := r.db.ExecContext(ctx, query, cutoff)
	return err
}
