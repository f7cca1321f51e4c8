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

type visitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *model.Visit) error {
	query := `
		INSERT INTO visits (id, organization_id, patient_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.OrganizationID,
		visit.PatientID,
		visit.Status,
		visit.CreatedAt,
		visit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}

func (r *visitRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Visit, error) {
	query := `SELECT * FROM visits WHERE organization_id = $1 AND id = $2`
	var visit model.Visit
	if err := r.db.GetContext(ctx, &visit, query, orgID, id); err != nil {
		return nil, err
	}
	return &visit, nil
}

// UpdateStatus is a guarded transition: the row only changes while it is
// still in the expected source stage, so two racing advances cannot both
// win and a visit can never move backward.
func (r *visitRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, from, to model.VisitStatus) (bool, error) {
	query := `
		UPDATE visits SET status = $1, updated_at = $2
		WHERE organization_id = $3 AND id = $4 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, to, time.Now(), orgID, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update visit status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListByStatus is the queue query: the triage, consultation, lab and
// pharmacy screens are all live filters over visit status.
func (r *visitRepository) ListByStatus(ctx context.Context, orgID uuid.UUID, status model.VisitStatus) ([]*model.Visit, error) {
	query := `
		SELECT v.id, v.organization_id, v.patient_id, v.status, v.created_at, v.updated_at, v.deleted_at,
		       p.id AS "patient.id", p.organization_id AS "patient.organization_id",
		       p.mrn AS "patient.mrn", p.full_name AS "patient.full_name",
		       p.gender AS "patient.gender", p.dob AS "patient.dob",
		       p.phone AS "patient.phone", p.address AS "patient.address",
		       p.created_at AS "patient.created_at", p.updated_at AS "patient.updated_at"
		FROM visits v
		JOIN patients p ON p.id = v.patient_id
		WHERE v.organization_id = $1 AND v.status = $2
		ORDER BY v.created_at ASC
	`
	type visitRow struct {
		model.Visit
		PatientRow model.Patient `db:"patient"`
	}
	var rows []visitRow
	if err := r.db.SelectContext(ctx, &rows, query, orgID, status); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}

	visits := make([]*model.Visit, 0, len(rows))
	for i := range rows {
		v := rows[i].Visit
		p := rows[i].PatientRow
		v.Patient = &p
		visits = append(visits, &v)
	}
	return visits, nil
}

// AppendEvent is insert-only. Stage records are never updated in place;
// each stage owns its own row keyed by stage name.
func (r *visitRepository) AppendEvent(ctx context.Context, event *model.VisitEvent) error {
	query := `
		INSERT INTO visit_events (id, organization_id, visit_id, stage, recorded_by, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	event.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.OrganizationID,
		event.VisitID,
		event.Stage,
		event.RecordedBy,
		event.Payload,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append visit event: %w", err)
	}
	return nil
}

func (r *visitRepository) ListEvents(ctx context.Context, orgID, visitID uuid.UUID) ([]*model.VisitEvent, error) {
	query := `
		SELECT * FROM visit_events
		WHERE organization_id = $1 AND visit_id = $2
		ORDER BY created_at ASC
	`
	var events []*model.VisitEvent
	if err := r.db.SelectContext(ctx, &events, query, orgID, visitID); err != nil {
		return nil, fmt.Errorf("failed to list visit events: %w", err)
	}
	return events, nil
}
