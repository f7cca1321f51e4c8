package patient

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/audit"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient

	// collisions makes the first N creates fail with a unique violation,
	// simulating MRN suffix collisions inside the tenant.
	collisions int
	attempts   int
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, p *model.Patient) error {
	f.attempts++
	if f.collisions > 0 {
		f.collisions--
		return &pq.Error{Code: "23505", Constraint: "patients_org_mrn_key"}
	}
	stored := *p
	f.patients[p.ID] = &stored
	return nil
}

func (f *fakePatientRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok || p.OrganizationID != orgID {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *model.Patient) error {
	stored := *p
	f.patients[p.ID] = &stored
	return nil
}

func (f *fakePatientRepo) List(_ context.Context, _ *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
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

type noopAuditRepo struct{}

func (noopAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }

func (noopAuditRepo) List(_ context.Context, _ uuid.UUID, _ model.Pagination) ([]*model.AuditLog, error) {
	return nil, nil
}

func (noopAuditRepo) DeleteBefore(_ context.Context, _ time.Time) error { return nil }

func newService(repo *fakePatientRepo, outbox *fakeOutboxRepo) *Service {
	return NewService(repo, outbox, audit.NewService(noopAuditRepo{}))
}

func registerRequest() *model.CreatePatientRequest {
	return &model.CreatePatientRequest{
		FullName: "Jane Doe",
		Gender:   "female",
		DOB:      "1993-04-12",
		Phone:    "+211920000000",
		Address:  "Juba",
	}
}

func TestRegisterGeneratesValidMRN(t *testing.T) {
	repo := newFakePatientRepo()
	outbox := &fakeOutboxRepo{}
	svc := newService(repo, outbox)

	p, err := svc.Register(context.Background(), uuid.New(), registerRequest())
	require.NoError(t, err)
	assert.True(t, model.ValidMRN(p.MRN), "got %q", p.MRN)
	assert.Equal(t, "Jane Doe", p.FullName)
	require.Len(t, outbox.events, 1)
	assert.Equal(t, "patient.created", outbox.events[0].EventType)
}

func TestRegisterRetriesOnMRNCollision(t *testing.T) {
	repo := newFakePatientRepo()
	repo.collisions = 2
	svc := newService(repo, &fakeOutboxRepo{})

	p, err := svc.Register(context.Background(), uuid.New(), registerRequest())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.attempts)
	assert.True(t, model.ValidMRN(p.MRN))
}

func TestRegisterGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newFakePatientRepo()
	repo.collisions = mrnAttempts
	svc := newService(repo, &fakeOutboxRepo{})

	_, err := svc.Register(context.Background(), uuid.New(), registerRequest())
	require.Error(t, err)
	assert.Equal(t, mrnAttempts, repo.attempts)
	assert.Contains(t, err.Error(), "unique mrn")
}

func TestUpdateNeverTouchesMRN(t *testing.T) {
	repo := newFakePatientRepo()
	svc := newService(repo, &fakeOutboxRepo{})
	orgID := uuid.New()

	p, err := svc.Register(context.Background(), orgID, registerRequest())
	require.NoError(t, err)
	originalMRN := p.MRN

	name := "Jane A. Doe"
	phone := "+211921111111"
	updated, err := svc.Update(context.Background(), orgID, p.ID, &model.UpdatePatientRequest{
		FullName: &name,
		Phone:    &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, originalMRN, updated.MRN)
	assert.Equal(t, "Jane A. Doe", updated.FullName)
	assert.Equal(t, "+211921111111", updated.Phone)
	assert.Equal(t, "1993-04-12", updated.DOB, "unset fields untouched")
}
