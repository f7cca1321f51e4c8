package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

type organizationRepository struct {
	db *sqlx.DB
}

func NewOrganizationRepository(db *sqlx.DB) repository.OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *model.Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, status, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Status,
		org.Settings,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *organizationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	query := `SELECT * FROM organizations WHERE id = $1 AND deleted_at IS NULL`
	var org model.Organization
	if err := r.db.GetContext(ctx, &org, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

func (r *organizationRepository) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	query := `SELECT * FROM organizations WHERE slug = $1 AND deleted_at IS NULL`
	var org model.Organization
	if err := r.db.GetContext(ctx, &org, query, slug); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateSettings replaces the whole settings document. Concurrent updates
// are last-write-wins; no field-level merge is attempted.
func (r *organizationRepository) UpdateSettings(ctx context.Context, id uuid.UUID, settings model.OrganizationSettings) error {
	query := `UPDATE organizations SET settings = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, settings, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update organization settings: %w", err)
	}
	return nil
}

// Archive flips the status flag; organizations are never hard-deleted.
func (r *organizationRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE organizations SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, model.OrganizationStatusArchived, time.Now(), id)
	return err
}

func (r *organizationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error) {
	query := `
		SELECT o.* FROM organizations o
		JOIN memberships m ON m.organization_id = o.id
		WHERE m.user_id = $1 AND o.deleted_at IS NULL
		ORDER BY o.created_at
	`
	var orgs []*model.Organization
	if err := r.db.SelectContext(ctx, &orgs, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

func (r *organizationRepository) ListActive(ctx context.Context) ([]*model.Organization, error) {
	query := `SELECT * FROM organizations WHERE status = $1 AND deleted_at IS NULL`
	var orgs []*model.Organization
	if err := r.db.SelectContext(ctx, &orgs, query, model.OrganizationStatusActive); err != nil {
		return nil, fmt.Errorf("failed to list active organizations: %w", err)
	}
	return orgs, nil
}
