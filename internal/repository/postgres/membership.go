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

type membershipRepository struct {
	db *sqlx.DB
}

func NewMembershipRepository(db *sqlx.DB) repository.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, m *model.Membership) error {
	// One role per user per organization, enforced by the unique index on
	// (organization_id, user_id).
	query := `
		INSERT INTO memberships (id, organization_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.OrganizationID,
		m.UserID,
		m.Role,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, orgID, userID uuid.UUID) (*model.Membership, error) {
	query := `SELECT * FROM memberships WHERE organization_id = $1 AND user_id = $2`
	var m model.Membership
	if err := r.db.GetContext(ctx, &m, query, orgID, userID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) List(ctx context.Context, orgID uuid.UUID) ([]*model.Membership, error) {
	query := `SELECT * FROM memberships WHERE organization_id = $1 ORDER BY created_at`
	var ms []*model.Membership
	if err := r.db.SelectContext(ctx, &ms, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return ms, nil
}

func (r *membershipRepository) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role model.Role) error {
	query := `UPDATE memberships SET role = $1, updated_at = $2 WHERE organization_id = $3 AND user_id = $4`
	_, err := r.db.ExecContext(ctx, query, role, time.Now(), orgID, userID)
	return err
}

func (r *membershipRepository) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE organization_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, orgID, userID)
	return err
}
