package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/repository/postgres"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Service struct {
	orgs        repository.OrganizationRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
	auditor     *audit.Service
}

func NewService(orgs repository.OrganizationRepository, memberships repository.MembershipRepository, users repository.UserRepository, auditor *audit.Service) *Service {
	return &Service{
		orgs:        orgs,
		memberships: memberships,
		users:       users,
		auditor:     auditor,
	}
}

// Onboard creates the organization with default settings and makes the
// creating user its owner in one step, so a tenant never exists without at
// least one owner.
func (s *Service) Onboard(ctx context.Context, userID uuid.UUID, req *model.CreateOrganizationRequest) (*model.Organization, error) {
	if !slugPattern.MatchString(req.Slug) {
		return nil, apperrors.BadRequest("slug must be lowercase letters, digits and hyphens", nil)
	}

	org := &model.Organization{
		Name:     req.Name,
		Slug:     req.Slug,
		Status:   model.OrganizationStatusActive,
		Settings: model.DefaultOrganizationSettings(),
	}
	org.ID = uuid.New()

	if err := s.orgs.Create(ctx, org); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("slug already taken", err)
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	membership := &model.Membership{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           model.RoleOwner,
	}
	membership.ID = uuid.New()
	if err := s.memberships.Create(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	s.auditor.Log(ctx, org.ID, model.AuditActionCreate, model.AuditEntityOrganization, org.ID, &audit.LogOptions{Changes: org})
	return org, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Organization, error) {
	org, err := s.orgs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("organization", err)
		}
		return nil, err
	}
	return org, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Organization, error) {
	return s.orgs.ListForUser(ctx, userID)
}

// UpdateSettings applies partial changes onto the current document and
// writes the whole document back. Last write wins.
func (s *Service) UpdateSettings(ctx context.Context, orgID uuid.UUID, req *model.UpdateOrganizationSettingsRequest) (*model.Organization, error) {
	org, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	settings := org.Settings
	if req.TriageRequired != nil {
		settings.TriageRequired = *req.TriageRequired
	}
	if req.DefaultCurrency != nil {
		if *req.DefaultCurrency != model.CurrencyUSD && *req.DefaultCurrency != model.CurrencySSP {
			return nil, apperrors.BadRequest("unsupported currency", nil)
		}
		settings.DefaultCurrency = *req.DefaultCurrency
	}
	if req.WhatsappEnabled != nil {
		settings.WhatsappEnabled = *req.WhatsappEnabled
	}
	if req.EnabledDepartments != nil {
		settings.EnabledDepartments = req.EnabledDepartments
	}
	if req.DepartmentServices != nil {
		settings.DepartmentServices = req.DepartmentServices
	}

	if err := s.orgs.UpdateSettings(ctx, orgID, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	org.Settings = settings

	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityOrganization, orgID, &audit.LogOptions{Changes: settings})
	return org, nil
}

// Archive soft-retires the tenant. Data is retained; logins into the
// organization stop resolving.
func (s *Service) Archive(ctx context.Context, orgID uuid.UUID) error {
	if err := s.orgs.Archive(ctx, orgID); err != nil {
		return fmt.Errorf("failed to archive organization: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionDelete, model.AuditEntityOrganization, orgID, nil)
	return nil
}

func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID) ([]*model.Membership, error) {
	return s.memberships.List(ctx, orgID)
}

// AddMember attaches an existing user to the organization under a role. The
// role string is canonicalized once here; an unknown role is rejected, never
// stored.
func (s *Service) AddMember(ctx context.Context, orgID uuid.UUID, email, roleStr string) (*model.Membership, error) {
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, err
	}

	membership := &model.Membership{
		OrganizationID: orgID,
		UserID:         user.ID,
		Role:           role,
	}
	membership.ID = uuid.New()
	if err := s.memberships.Create(ctx, membership); err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperrors.Conflict("user is already a member", err)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityMembership, membership.ID, &audit.LogOptions{Changes: membership})
	return membership, nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, roleStr string) error {
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return apperrors.BadRequest(err.Error(), nil)
	}
	if err := s.memberships.UpdateRole(ctx, orgID, userID, role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityMembership, userID, &audit.LogOptions{Changes: map[string]string{"role": string(role)}})
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	m, err := s.memberships.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("membership", err)
		}
		return err
	}
	if m.Role == model.RoleOwner {
		members, err := s.memberships.List(ctx, orgID)
		if err != nil {
			return err
		}
		owners := 0
		for _, member := range members {
			if member.Role == model.RoleOwner {
				owners++
			}
		}
		if owners <= 1 {
			return apperrors.BadRequest("cannot remove the last owner", nil)
		}
	}

	if err := s.memberships.Delete(ctx, orgID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionDelete, model.AuditEntityMembership, userID, nil)
	return nil
}
