package organization

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
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

type fakeOrgRepo struct {
	orgs  map[uuid.UUID]*model.Organization
	slugs map[string]bool
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[uuid.UUID]*model.Organization{}, slugs: map[string]bool{}}
}

func (f *fakeOrgRepo) Create(_ context.Context, org *model.Organization) error {
	if f.slugs[org.Slug] {
		return &pq.Error{Code: "23505", Constraint: "organizations_slug_key"}
	}
	f.slugs[org.Slug] = true
	stored := *org
	f.orgs[org.ID] = &stored
	return nil
}

func (f *fakeOrgRepo) Get(_ context.Context, id uuid.UUID) (*model.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *org
	return &copied, nil
}

func (f *fakeOrgRepo) GetBySlug(_ context.Context, slug string) (*model.Organization, error) {
	for _, org := range f.orgs {
		if org.Slug == slug {
			return org, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeOrgRepo) UpdateSettings(_ context.Context, id uuid.UUID, settings model.OrganizationSettings) error {
	org, ok := f.orgs[id]
	if !ok {
		return sql.ErrNoRows
	}
	org.Settings = settings
	return nil
}

func (f *fakeOrgRepo) Archive(_ context.Context, id uuid.UUID) error {
	org, ok := f.orgs[id]
	if !ok {
		return sql.ErrNoRows
	}
	org.Status = model.OrganizationStatusArchived
	return nil
}

func (f *fakeOrgRepo) ListForUser(_ context.Context, _ uuid.UUID) ([]*model.Organization, error) {
	return nil, nil
}

func (f *fakeOrgRepo) ListActive(_ context.Context) ([]*model.Organization, error) {
	return nil, nil
}

type membershipKey struct{ org, user uuid.UUID }

type fakeMembershipRepo struct {
	members map[membershipKey]*model.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: map[membershipKey]*model.Membership{}}
}

func (f *fakeMembershipRepo) Create(_ context.Context, m *model.Membership) error {
	key := membershipKey{m.OrganizationID, m.UserID}
	if _, exists := f.members[key]; exists {
		return &pq.Error{Code: "23505", Constraint: "memberships_org_user_key"}
	}
	stored := *m
	f.members[key] = &stored
	return nil
}

func (f *fakeMembershipRepo) Get(_ context.Context, orgID, userID uuid.UUID) (*model.Membership, error) {
	m, ok := f.members[membershipKey{orgID, userID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m, nil
}

func (f *fakeMembershipRepo) List(_ context.Context, orgID uuid.UUID) ([]*model.Membership, error) {
	var out []*model.Membership
	for _, m := range f.members {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) UpdateRole(_ context.Context, orgID, userID uuid.UUID, role model.Role) error {
	m, ok := f.members[membershipKey{orgID, userID}]
	if !ok {
		return sql.ErrNoRows
	}
	m.Role = role
	return nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, orgID, userID uuid.UUID) error {
	delete(f.members, membershipKey{orgID, userID})
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error { return nil }

func (f *fakeUserRepo) Get(_ context.Context, _ uuid.UUID) (*model.User, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

type noopAuditRepo struct{}

func (noopAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }

func (noopAuditRepo) List(_ context.Context, _ uuid.UUID, _ model.Pagination) ([]*model.AuditLog, error) {
	return nil, nil
}

func (noopAuditRepo) DeleteBefore(_ context.Context, _ time.Time) error { return nil }

type orgFixture struct {
	svc         *Service
	orgs        *fakeOrgRepo
	memberships *fakeMembershipRepo
	users       *fakeUserRepo
}

func newOrgFixture() *orgFixture {
	orgs := newFakeOrgRepo()
	memberships := newFakeMembershipRepo()
	users := &fakeUserRepo{byEmail: map[string]*model.User{}}
	return &orgFixture{
		svc:         NewService(orgs, memberships, users, audit.NewService(noopAuditRepo{})),
		orgs:        orgs,
		memberships: memberships,
		users:       users,
	}
}

func TestOnboardCreatesOwnerMembership(t *testing.T) {
	f := newOrgFixture()
	userID := uuid.New()

	org, err := f.svc.Onboard(context.Background(), userID, &model.CreateOrganizationRequest{
		Name: "Juba Family Clinic",
		Slug: "juba-family-clinic",
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrganizationStatusActive, org.Status)
	assert.True(t, org.Settings.TriageRequired, "defaults applied")
	assert.Equal(t, model.CurrencySSP, org.Settings.DefaultCurrency)

	m, err := f.memberships.Get(context.Background(), org.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOwner, m.Role)
}

func TestOnboardRejectsBadSlug(t *testing.T) {
	f := newOrgFixture()
	for _, slug := range []string{"Juba Clinic", "juba_clinic", "-juba", "juba-", "JUBA"} {
		_, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{
			Name: "Clinic",
			Slug: slug,
		})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok, "slug %q", slug)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	}
}

func TestOnboardDuplicateSlugConflicts(t *testing.T) {
	f := newOrgFixture()
	_, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	_, err = f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "B", Slug: "clinic"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestUpdateSettingsPartialMerge(t *testing.T) {
	f := newOrgFixture()
	org, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	enabled := true
	updated, err := f.svc.UpdateSettings(context.Background(), org.ID, &model.UpdateOrganizationSettingsRequest{
		WhatsappEnabled:    &enabled,
		EnabledDepartments: map[string]bool{model.DepartmentLaboratory: true},
	})
	require.NoError(t, err)
	assert.True(t, updated.Settings.WhatsappEnabled)
	assert.True(t, updated.Settings.TriageRequired, "untouched field survives")
	assert.True(t, updated.Settings.DepartmentEnabled(model.DepartmentLaboratory))
}

func TestUpdateSettingsRejectsUnknownCurrency(t *testing.T) {
	f := newOrgFixture()
	org, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	bad := model.Currency("EUR")
	_, err = f.svc.UpdateSettings(context.Background(), org.ID, &model.UpdateOrganizationSettingsRequest{
		DefaultCurrency: &bad,
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestAddMemberCanonicalizesRole(t *testing.T) {
	f := newOrgFixture()
	org, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	doctorID := uuid.New()
	f.users.byEmail["doc@example.com"] = &model.User{Base: model.Base{ID: doctorID}, Email: "doc@example.com"}

	m, err := f.svc.AddMember(context.Background(), org.ID, "doc@example.com", "Doctor")
	require.NoError(t, err)
	assert.Equal(t, model.RoleDoctor, m.Role)

	_, err = f.svc.AddMember(context.Background(), org.ID, "doc@example.com", "astronaut")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	f := newOrgFixture()
	org, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	f.users.byEmail["nurse@example.com"] = &model.User{Base: model.Base{ID: uuid.New()}, Email: "nurse@example.com"}
	_, err = f.svc.AddMember(context.Background(), org.ID, "nurse@example.com", "nurse")
	require.NoError(t, err)

	_, err = f.svc.AddMember(context.Background(), org.ID, "nurse@example.com", "nurse")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestRemoveMemberKeepsLastOwner(t *testing.T) {
	f := newOrgFixture()
	ownerID := uuid.New()
	org, err := f.svc.Onboard(context.Background(), ownerID, &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	err = f.svc.RemoveMember(context.Background(), org.ID, ownerID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	// With a second owner the first one can leave.
	secondOwner := uuid.New()
	f.users.byEmail["co@example.com"] = &model.User{Base: model.Base{ID: secondOwner}, Email: "co@example.com"}
	_, err = f.svc.AddMember(context.Background(), org.ID, "co@example.com", "owner")
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveMember(context.Background(), org.ID, ownerID))
	_, err = f.memberships.Get(context.Background(), org.ID, ownerID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestArchiveRetiresTenant(t *testing.T) {
	f := newOrgFixture()
	org, err := f.svc.Onboard(context.Background(), uuid.New(), &model.CreateOrganizationRequest{Name: "A", Slug: "clinic"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Archive(context.Background(), org.ID))
	stored, err := f.orgs.Get(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrganizationStatusArchived, stored.Status)
}
