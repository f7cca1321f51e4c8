package visit

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
	"github.com/omniclinic/clinic-api/internal/service/audit"
	"github.com/omniclinic/clinic-api/internal/tenant"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/metrics"
)

type Service struct {
	visits    repository.VisitRepository
	patients  repository.PatientRepository
	inventory repository.InventoryRepository
	outbox    repository.OutboxRepository
	auditor   *audit.Service
	metrics   *metrics.Metrics
}

func NewService(
	visits repository.VisitRepository,
	patients repository.PatientRepository,
	inventory repository.InventoryRepository,
	outbox repository.OutboxRepository,
	auditor *audit.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		visits:    visits,
		patients:  patients,
		inventory: inventory,
		outbox:    outbox,
		auditor:   auditor,
		metrics:   m,
	}
}

// Start opens a visit for a registered patient. The entry stage depends on
// the tenant: with triage switched off the visit goes straight to the
// consultation queue.
func (s *Service) Start(ctx context.Context, orgID uuid.UUID, settings model.OrganizationSettings, req *model.StartVisitRequest) (*model.Visit, error) {
	if _, err := s.patients.Get(ctx, orgID, req.PatientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, err
	}

	status := model.VisitStatusTriage
	if !settings.TriageRequired {
		status = model.VisitStatusConsultation
	}

	visit := &model.Visit{
		OrganizationID: orgID,
		PatientID:      req.PatientID,
		Status:         status,
	}
	visit.ID = uuid.New()

	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to start visit: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityVisit, visit.ID, &audit.LogOptions{Changes: visit})
	s.emit(ctx, "visit.started", visit)
	return visit, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.visits.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("visit", err)
		}
		return nil, err
	}
	return visit, nil
}

// Queue lists visits currently sitting in a stage, with their patients, for
// the department screens.
func (s *Service) Queue(ctx context.Context, orgID uuid.UUID, status model.VisitStatus) ([]*model.Visit, error) {
	return s.visits.ListByStatus(ctx, orgID, status)
}

// Timeline returns the visit's appended clinical events in order.
func (s *Service) Timeline(ctx context.Context, orgID, visitID uuid.UUID) ([]*model.VisitEvent, error) {
	if _, err := s.Get(ctx, orgID, visitID); err != nil {
		return nil, err
	}
	return s.visits.ListEvents(ctx, orgID, visitID)
}

// RecordVitals stores the triage measurements and moves the visit to the
// consultation queue.
func (s *Service) RecordVitals(ctx context.Context, orgID, visitID uuid.UUID, req *model.RecordVitalsRequest) (*model.Visit, error) {
	visit, err := s.Get(ctx, orgID, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusTriage {
		return nil, apperrors.Conflict("visit is not in triage", nil)
	}

	vitals := model.Vitals{Temp: req.Temp, BP: req.BP, Pulse: req.Pulse, SpO2: req.SpO2}
	if err := s.appendEvent(ctx, orgID, visitID, model.VisitStageTriage, vitals); err != nil {
		return nil, err
	}

	return s.advance(ctx, visit, model.VisitStatusConsultation)
}

// FinalizeConsultation stores the note, lab orders and prescriptions, then
// routes the visit: lab orders win over prescriptions, and with neither the
// visit completes immediately.
func (s *Service) FinalizeConsultation(ctx context.Context, orgID, visitID uuid.UUID, req *model.FinalizeConsultationRequest) (*model.Visit, error) {
	visit, err := s.Get(ctx, orgID, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusConsultation {
		return nil, apperrors.Conflict("visit is not in consultation", nil)
	}

	if err := s.appendEvent(ctx, orgID, visitID, model.VisitStageConsultation, req); err != nil {
		return nil, err
	}

	next := model.NextAfterConsultation(len(req.LabOrders), len(req.Prescriptions))
	return s.advance(ctx, visit, next)
}

// ForwardLabResults stores the results and always forwards to pharmacy, even
// when the consultation ordered no prescriptions.
func (s *Service) ForwardLabResults(ctx context.Context, orgID, visitID uuid.UUID, req *model.ForwardLabRequest) (*model.Visit, error) {
	visit, err := s.Get(ctx, orgID, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusLab {
		return nil, apperrors.Conflict("visit is not in lab", nil)
	}

	if err := s.appendEvent(ctx, orgID, visitID, model.VisitStageLab, req); err != nil {
		return nil, err
	}

	return s.advance(ctx, visit, model.NextAfterLab())
}

// Dispense decrements stock for each line and completes the visit. Each
// decrement is an atomic conditional update; when a later line fails on
// stock, the earlier decrements are restored before returning.
func (s *Service) Dispense(ctx context.Context, orgID, visitID uuid.UUID, req *model.DispenseRequest) (*model.Visit, error) {
	visit, err := s.Get(ctx, orgID, visitID)
	if err != nil {
		return nil, err
	}
	if visit.Status != model.VisitStatusPharmacy {
		return nil, apperrors.Conflict("visit is not in pharmacy", nil)
	}

	var applied []model.DispenseLine
	for _, line := range req.Lines {
		ok, err := s.inventory.DecrementStock(ctx, orgID, line.ItemID, line.Quantity)
		if err != nil {
			s.restore(ctx, orgID, applied)
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			s.restore(ctx, orgID, applied)
			return nil, apperrors.Conflict(fmt.Sprintf("insufficient stock for item %s", line.ItemID), nil)
		}
		applied = append(applied, line)
	}

	if err := s.appendEvent(ctx, orgID, visitID, model.VisitStageDispense, req); err != nil {
		s.restore(ctx, orgID, applied)
		return nil, err
	}

	for _, line := range req.Lines {
		s.auditor.Log(ctx, orgID, model.AuditActionDispense, model.AuditEntityInventory, line.ItemID, &audit.LogOptions{
			Changes: map[string]int{"quantity": -line.Quantity},
		})
	}

	updated, err := s.advance(ctx, visit, model.VisitStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "visit.completed", updated)
	return updated, nil
}

func (s *Service) restore(ctx context.Context, orgID uuid.UUID, applied []model.DispenseLine) {
	for _, line := range applied {
		_ = s.inventory.IncrementStock(ctx, orgID, line.ItemID, line.Quantity)
	}
}

// advance performs the guarded status update. If the row has moved on since
// it was read, the update matches nothing and the caller gets a conflict
// instead of a silently repeated transition.
func (s *Service) advance(ctx context.Context, visit *model.Visit, to model.VisitStatus) (*model.Visit, error) {
	from := visit.Status
	if !from.CanTransition(to) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot move visit from %s to %s", from, to), nil)
	}

	ok, err := s.visits.UpdateStatus(ctx, visit.OrganizationID, visit.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update visit status: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("visit was advanced concurrently", nil)
	}

	if s.metrics != nil {
		s.metrics.VisitTransitions.WithLabelValues(string(from), string(to)).Inc()
	}
	s.auditor.Log(ctx, visit.OrganizationID, model.AuditActionAdvance, model.AuditEntityVisit, visit.ID, &audit.LogOptions{
		Changes: map[string]string{"from": string(from), "to": string(to)},
	})

	visit.Status = to
	visit.UpdatedAt = time.Now()
	return visit, nil
}

func (s *Service) appendEvent(ctx context.Context, orgID, visitID uuid.UUID, stage string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", stage, err)
	}
	event := &model.VisitEvent{
		ID:             uuid.New(),
		OrganizationID: orgID,
		VisitID:        visitID,
		Stage:          stage,
		RecordedBy:     tenant.UserID(ctx),
		Payload:        body,
		CreatedAt:      time.Now(),
	}
	if err := s.visits.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to append %s event: %w", stage, err)
	}
	return nil
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
