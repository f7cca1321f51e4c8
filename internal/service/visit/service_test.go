package visit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

type fakeVisitRepo struct {
	visits map[uuid.UUID]*model.Visit
	events []*model.VisitEvent

	// forceStale makes every guarded update miss, as if another request
	// advanced the row first.
	forceStale bool
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: make(map[uuid.UUID]*model.Visit)}
}

func (f *fakeVisitRepo) Create(_ context.Context, visit *model.Visit) error {
	f.visits[visit.ID] = visit
	return nil
}

func (f *fakeVisitRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.Visit, error) {
	v, ok := f.visits[id]
	if !ok || v.OrganizationID != orgID {
		return nil, sql.ErrNoRows
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVisitRepo) UpdateStatus(_ context.Context, orgID, id uuid.UUID, from, to model.VisitStatus) (bool, error) {
	if f.forceStale {
		return false, nil
	}
	v, ok := f.visits[id]
	if !ok || v.OrganizationID != orgID || v.Status != from {
		return false, nil
	}
	v.Status = to
	return true, nil
}

func (f *fakeVisitRepo) ListByStatus(_ context.Context, orgID uuid.UUID, status model.VisitStatus) ([]*model.Visit, error) {
	var out []*model.Visit
	for _, v := range f.visits {
		if v.OrganizationID == orgID && v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) AppendEvent(_ context.Context, event *model.VisitEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeVisitRepo) ListEvents(_ context.Context, orgID, visitID uuid.UUID) ([]*model.VisitEvent, error) {
	var out []*model.VisitEvent
	for _, e := range f.events {
		if e.OrganizationID == orgID && e.VisitID == visitID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) stagesFor(visitID uuid.UUID) []string {
	var stages []string
	for _, e := range f.events {
		if e.VisitID == visitID {
			stages = append(stages, e.Stage)
		}
	}
	return stages
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok || p.OrganizationID != orgID {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error { return nil }

func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}

type fakeInventoryRepo struct {
	stock map[uuid.UUID]int
}

func (f *fakeInventoryRepo) Create(_ context.Context, item *model.InventoryItem) error { return nil }

func (f *fakeInventoryRepo) Get(_ context.Context, _, id uuid.UUID) (*model.InventoryItem, error) {
	if _, ok := f.stock[id]; !ok {
		return nil, sql.ErrNoRows
	}
	return &model.InventoryItem{Stock: f.stock[id]}, nil
}

func (f *fakeInventoryRepo) Update(_ context.Context, _ *model.InventoryItem) error { return nil }
func (f *fakeInventoryRepo) Delete(_ context.Context, _, _ uuid.UUID) error         { return nil }

func (f *fakeInventoryRepo) List(_ context.Context, _ uuid.UUID, _ string) ([]*model.InventoryItem, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) DecrementStock(_ context.Context, _, id uuid.UUID, qty int) (bool, error) {
	current, ok := f.stock[id]
	if !ok || current < qty {
		return false, nil
	}
	f.stock[id] = current - qty
	return true, nil
}

func (f *fakeInventoryRepo) IncrementStock(_ context.Context, _, id uuid.UUID, qty int) error {
	f.stock[id] += qty
	return nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.OutboxStatus, _ *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeOutboxRepo) types() []string {
	var out []string
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}

type noopAuditRepo struct{}

func (noopAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }

func (noopAuditRepo) List(_ context.Context, _ uuid.UUID, _ model.Pagination) ([]*model.AuditLog, error) {
	return nil, nil
}

func (noopAuditRepo) DeleteBefore(_ context.Context, _ time.Time) error { return nil }

type fixture struct {
	svc       *Service
	visits    *fakeVisitRepo
	inventory *fakeInventoryRepo
	outbox    *fakeOutboxRepo
	orgID     uuid.UUID
	patientID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	orgID := uuid.New()
	patientID := uuid.New()

	visits := newFakeVisitRepo()
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	patients.patients[patientID] = &model.Patient{
		Base:           model.Base{ID: patientID},
		OrganizationID: orgID,
		MRN:            "MRN-2025-1042",
		FullName:       "Jane Doe",
	}
	inventory := &fakeInventoryRepo{stock: map[uuid.UUID]int{}}
	outbox := &fakeOutboxRepo{}

	return &fixture{
		svc:       NewService(visits, patients, inventory, outbox, audit.NewService(noopAuditRepo{}), nil),
		visits:    visits,
		inventory: inventory,
		outbox:    outbox,
		orgID:     orgID,
		patientID: patientID,
	}
}

func triageSettings() model.OrganizationSettings {
	return model.OrganizationSettings{TriageRequired: true}
}

func (f *fixture) start(t *testing.T) *model.Visit {
	t.Helper()
	v, err := f.svc.Start(context.Background(), f.orgID, triageSettings(), &model.StartVisitRequest{PatientID: f.patientID})
	require.NoError(t, err)
	return v
}

func TestStartVisitTriageRequired(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	assert.Equal(t, model.VisitStatusTriage, v.Status)
	assert.Equal(t, []string{"visit.started"}, f.outbox.types())
}

func TestStartVisitTriageDisabled(t *testing.T) {
	f := newFixture(t)
	settings := model.OrganizationSettings{TriageRequired: false}
	v, err := f.svc.Start(context.Background(), f.orgID, settings, &model.StartVisitRequest{PatientID: f.patientID})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusConsultation, v.Status)
}

func TestStartVisitUnknownPatient(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), f.orgID, triageSettings(), &model.StartVisitRequest{PatientID: uuid.New()})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestRecordVitalsAdvancesToConsultation(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)

	updated, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{
		Temp: 37.2, BP: "120/80", Pulse: 72, SpO2: 98,
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusConsultation, updated.Status)
	assert.Equal(t, []string{model.VisitStageTriage}, f.visits.stagesFor(v.ID))
}

func TestRecordVitalsOutsideTriage(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	require.NoError(t, err)

	_, err = f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestFinalizeConsultationRouting(t *testing.T) {
	cases := []struct {
		name string
		req  model.FinalizeConsultationRequest
		want model.VisitStatus
	}{
		{
			name: "lab orders win",
			req: model.FinalizeConsultationRequest{
				LabOrders:     []string{"Malaria (MRDT)"},
				Prescriptions: []model.Prescription{{Drug: "Paracetamol"}},
			},
			want: model.VisitStatusLab,
		},
		{
			name: "prescriptions only",
			req: model.FinalizeConsultationRequest{
				Prescriptions: []model.Prescription{{Drug: "Amoxicillin"}},
			},
			want: model.VisitStatusPharmacy,
		},
		{
			name: "neither completes",
			req:  model.FinalizeConsultationRequest{},
			want: model.VisitStatusCompleted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			v := f.start(t)
			_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
			require.NoError(t, err)

			updated, err := f.svc.FinalizeConsultation(context.Background(), f.orgID, v.ID, &tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, updated.Status)
		})
	}
}

func TestForwardLabResultsAlwaysGoesToPharmacy(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	require.NoError(t, err)
	// Labs ordered, no prescriptions at all.
	_, err = f.svc.FinalizeConsultation(context.Background(), f.orgID, v.ID, &model.FinalizeConsultationRequest{
		LabOrders: []string{"Widal Test"},
	})
	require.NoError(t, err)

	updated, err := f.svc.ForwardLabResults(context.Background(), f.orgID, v.ID, &model.ForwardLabRequest{
		Results: []model.LabResult{{Test: "Widal Test", Result: "negative"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusPharmacy, updated.Status)
}

func TestDispenseCompletesVisit(t *testing.T) {
	f := newFixture(t)
	itemID := uuid.New()
	f.inventory.stock[itemID] = 10

	v := f.start(t)
	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	require.NoError(t, err)
	_, err = f.svc.FinalizeConsultation(context.Background(), f.orgID, v.ID, &model.FinalizeConsultationRequest{
		Prescriptions: []model.Prescription{{Drug: "Amoxicillin"}},
	})
	require.NoError(t, err)

	updated, err := f.svc.Dispense(context.Background(), f.orgID, v.ID, &model.DispenseRequest{
		Lines: []model.DispenseLine{{ItemID: itemID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusCompleted, updated.Status)
	assert.Equal(t, 7, f.inventory.stock[itemID])
	assert.Contains(t, f.outbox.types(), "visit.completed")
	assert.Contains(t, f.visits.stagesFor(v.ID), model.VisitStageDispense)
}

func TestDispenseInsufficientStockRestoresEarlierLines(t *testing.T) {
	f := newFixture(t)
	first := uuid.New()
	second := uuid.New()
	f.inventory.stock[first] = 10
	f.inventory.stock[second] = 1

	v := f.start(t)
	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	require.NoError(t, err)
	_, err = f.svc.FinalizeConsultation(context.Background(), f.orgID, v.ID, &model.FinalizeConsultationRequest{
		Prescriptions: []model.Prescription{{Drug: "Amoxicillin"}},
	})
	require.NoError(t, err)

	_, err = f.svc.Dispense(context.Background(), f.orgID, v.ID, &model.DispenseRequest{
		Lines: []model.DispenseLine{
			{ItemID: first, Quantity: 4},
			{ItemID: second, Quantity: 5},
		},
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)

	// The first decrement was compensated and the visit did not move.
	assert.Equal(t, 10, f.inventory.stock[first])
	assert.Equal(t, 1, f.inventory.stock[second])
	current, err := f.svc.Get(context.Background(), f.orgID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VisitStatusPharmacy, current.Status)
}

func TestAdvanceConflictsWhenRowAlreadyMoved(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	f.visits.forceStale = true

	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 37, BP: "120/80", Pulse: 72, SpO2: 98})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestTimelineListsAppendedStages(t *testing.T) {
	f := newFixture(t)
	itemID := uuid.New()
	f.inventory.stock[itemID] = 20

	v := f.start(t)
	_, err := f.svc.RecordVitals(context.Background(), f.orgID, v.ID, &model.RecordVitalsRequest{Temp: 38.5, BP: "130/85", Pulse: 90, SpO2: 96})
	require.NoError(t, err)
	_, err = f.svc.FinalizeConsultation(context.Background(), f.orgID, v.ID, &model.FinalizeConsultationRequest{
		LabOrders:     []string{"Malaria (MRDT)"},
		Prescriptions: []model.Prescription{{Drug: "Coartem", Dosage: "80/480mg"}},
	})
	require.NoError(t, err)
	_, err = f.svc.ForwardLabResults(context.Background(), f.orgID, v.ID, &model.ForwardLabRequest{
		Results: []model.LabResult{{Test: "Malaria (MRDT)", Result: "positive"}},
	})
	require.NoError(t, err)
	_, err = f.svc.Dispense(context.Background(), f.orgID, v.ID, &model.DispenseRequest{
		Lines: []model.DispenseLine{{ItemID: itemID, Quantity: 1}},
	})
	require.NoError(t, err)

	events, err := f.svc.Timeline(context.Background(), f.orgID, v.ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, []string{
		model.VisitStageTriage,
		model.VisitStageConsultation,
		model.VisitStageLab,
		model.VisitStageDispense,
	}, f.visits.stagesFor(v.ID))
}

func TestVisitIsInvisibleToOtherTenants(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)

	_, err := f.svc.Get(context.Background(), uuid.New(), v.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
