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

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.PatientDocument) error {
	query := `
		INSERT INTO patient_documents (id, organization_id, patient_id, name, file_type, file_size, storage_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.OrganizationID,
		doc.PatientID,
		doc.Name,
		doc.FileType,
		doc.FileSize,
		doc.StoragePath,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.PatientDocument, error) {
	query := `SELECT * FROM patient_documents WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	var doc model.PatientDocument
	if err := r.db.GetContext(ctx, &doc, query, orgID, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListForPatient(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.PatientDocument, error) {
	query := `
		SELECT * FROM patient_documents
		WHERE organization_id = $1 AND patient_id = $2 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	var docs []*model.PatientDocument
	if err := r.db.SelectContext(ctx, &docs, query, orgID, patientID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `UPDATE patient_documents SET deleted_at = $1 WHERE organization_id = $2 AND id = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now(), orgID, id)
	return err
}
