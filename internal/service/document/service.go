package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/storage"
)

type Service struct {
	docs     repository.DocumentRepository
	patients repository.PatientRepository
	store    storage.Storage
	auditor  *audit.Service
}

func NewService(docs repository.DocumentRepository, patients repository.PatientRepository, store storage.Storage, auditor *audit.Service) *Service {
	return &Service{docs: docs, patients: patients, store: store, auditor: auditor}
}

// Upload stores the blob under an id-derived path and records the metadata
// row. The storage path is never taken from user input.
func (s *Service) Upload(ctx context.Context, orgID, patientID uuid.UUID, name, fileType string, size int64, r io.Reader) (*model.PatientDocument, error) {
	if _, err := s.patients.Get(ctx, orgID, patientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}

	doc := &model.PatientDocument{
		OrganizationID: orgID,
		PatientID:      patientID,
		Name:           name,
		FileType:       fileType,
		FileSize:       size,
	}
	doc.ID = uuid.New()
	doc.StoragePath = fmt.Sprintf("%s/%s/%s", orgID, patientID, doc.ID)

	if _, err := s.store.Upload(ctx, storage.BucketPatientDocuments, doc.StoragePath, r); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		_ = s.store.Delete(ctx, storage.BucketPatientDocuments, doc.StoragePath)
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityPatient, patientID, &audit.LogOptions{
		Metadata: map[string]string{"document": doc.Name},
	})
	return doc, nil
}

func (s *Service) List(ctx context.Context, orgID, patientID uuid.UUID) ([]*model.PatientDocument, error) {
	return s.docs.ListForPatient(ctx, orgID, patientID)
}

func (s *Service) Download(ctx context.Context, orgID, id uuid.UUID) (*model.PatientDocument, io.ReadCloser, error) {
	doc, err := s.docs.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.NotFound("document", err)
		}
		return nil, nil, err
	}
	rc, err := s.store.Download(ctx, storage.BucketPatientDocuments, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return doc, rc, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	doc, err := s.docs.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("document", err)
		}
		return err
	}
	if err := s.docs.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	_ = s.store.Delete(ctx, storage.BucketPatientDocuments, doc.StoragePath)
	return nil
}
