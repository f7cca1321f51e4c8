package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	auditor  *audit.Service
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, patients: patients, auditor: auditor}
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if _, err := time.Parse(model.AppointmentDateLayout, req.Date); err != nil {
		return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}
	if _, err := s.patients.Get(ctx, orgID, req.PatientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}

	priority := model.AppointmentPriorityNormal
	if req.Priority != "" {
		priority = model.AppointmentPriority(req.Priority)
	}

	appointment := &model.Appointment{
		OrganizationID: orgID,
		PatientID:      req.PatientID,
		DoctorName:     req.DoctorName,
		Date:           req.Date,
		Time:           req.Time,
		Reason:         req.Reason,
		Status:         model.AppointmentStatusScheduled,
		Priority:       priority,
	}
	appointment.ID = uuid.New()

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityAppointment, appointment.ID, &audit.LogOptions{Changes: appointment})
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, err
	}
	return appointment, nil
}

func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.DoctorName != nil {
		appointment.DoctorName = *req.DoctorName
	}
	if req.Date != nil {
		if _, err := time.Parse(model.AppointmentDateLayout, *req.Date); err != nil {
			return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
		}
		appointment.Date = *req.Date
	}
	if req.Time != nil {
		appointment.Time = *req.Time
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}
	if req.Priority != nil {
		appointment.Priority = *req.Priority
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityAppointment, appointment.ID, &audit.LogOptions{Changes: req})
	return appointment, nil
}

func (s *Service) Cancel(ctx context.Context, orgID, id uuid.UUID) error {
	appointment, err := s.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	appointment.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, appointment); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityAppointment, id, &audit.LogOptions{
		Changes: map[string]string{"status": string(model.AppointmentStatusCancelled)},
	})
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}
