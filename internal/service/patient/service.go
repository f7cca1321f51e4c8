package patient

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/repository/postgres"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

// mrnAttempts bounds the registration retry loop when the random MRN suffix
// collides inside a tenant.
const mrnAttempts = 5

type Service struct {
	repo    repository.PatientRepository
	outbox  repository.OutboxRepository
	auditor *audit.Service
}

func NewService(repo repository.PatientRepository, outbox repository.OutboxRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, outbox: outbox, auditor: auditor}
}

// Register creates the patient with a generated MRN. The MRN unique index is
// the source of truth; on a collision the insert is retried with a fresh
// number rather than checked up front.
func (s *Service) Register(ctx context.Context, orgID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		OrganizationID: orgID,
		FullName:       req.FullName,
		Gender:         req.Gender,
		DOB:            req.DOB,
		Phone:          req.Phone,
		Address:        req.Address,
	}

	var lastErr error
	for attempt := 0; attempt < mrnAttempts; attempt++ {
		patient.ID = uuid.New()
		patient.MRN = model.NewMRN(time.Now())

		if err := s.repo.Create(ctx, patient); err != nil {
			if postgres.IsUniqueViolation(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("failed to register patient: %w", err)
		}

		s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{Changes: patient})
		s.emit(ctx, "patient.created", patient)
		return patient, nil
	}
	return nil, fmt.Errorf("failed to allocate a unique mrn after %d attempts: %w", mrnAttempts, lastErr)
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}
	return patient, nil
}

// Update changes demographics only. The MRN is immutable after registration.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.DOB != nil {
		patient.DOB = *req.DOB
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{Changes: req})
	return patient, nil
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   body,
	})
}
