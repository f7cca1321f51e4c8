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

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	// The unique index on (organization_id, mrn) backs the MRN retry loop
	// in the patient service.
	query := `
		INSERT INTO patients (id, organization_id, mrn, full_name, gender, dob, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.OrganizationID,
		patient.MRN,
		patient.FullName,
		patient.Gender,
		patient.DOB,
		patient.Phone,
		patient.Address,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, orgID, id); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET full_name = $1, gender = $2, dob = $3, phone = $4, address = $5, updated_at = $6
		WHERE organization_id = $7 AND id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.Gender,
		patient.DOB,
		patient.Phone,
		patient.Address,
		time.Now(),
		patient.OrganizationID,
		patient.ID,
	)
	return err
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE organization_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.OrganizationID}

	if filters.SearchTerm != "" {
		query += ` AND (full_name ILIKE $2 OR mrn ILIKE $2 OR phone ILIKE $2)`
		args = append(args, "%"+filters.SearchTerm+"%")
	}
	query += ` ORDER BY created_at DESC`

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
