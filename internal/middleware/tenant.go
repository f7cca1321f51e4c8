package middleware

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/tenant"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

const HeaderOrganizationID = "X-Organization-ID"

// TenantMiddleware resolves the organization named by the request header and
// the caller's membership in it, and attaches both to the request context as
// one unit. Organization rows are cached briefly; memberships are checked on
// every request so a revoked role takes effect immediately.
type TenantMiddleware struct {
	orgs        repository.OrganizationRepository
	memberships repository.MembershipRepository
	cache       *gocache.Cache
}

func NewTenantMiddleware(orgs repository.OrganizationRepository, memberships repository.MembershipRepository) *TenantMiddleware {
	return &TenantMiddleware{
		orgs:        orgs,
		memberships: memberships,
		cache:       gocache.New(30*time.Second, time.Minute),
	}
}

func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.GetHeader(HeaderOrganizationID))
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("missing or invalid X-Organization-ID header", err))
			c.Abort()
			return
		}

		raw, exists := c.Get(ContextUserID)
		userID, ok := raw.(uuid.UUID)
		if !exists || !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		org, err := m.organization(c, orgID)
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}
		if org.Status != model.OrganizationStatusActive {
			httputil.RespondWithError(c, apperrors.Forbidden("organization is archived", nil))
			c.Abort()
			return
		}

		membership, err := m.memberships.Get(c.Request.Context(), orgID, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				httputil.RespondWithError(c, apperrors.Forbidden("not a member of this organization", nil))
			} else {
				httputil.RespondWithError(c, err)
			}
			c.Abort()
			return
		}

		tc := &tenant.Context{Organization: org, Membership: membership}
		c.Request = c.Request.WithContext(tenant.With(c.Request.Context(), tc))
		c.Next()
	}
}

// RequireRole gates a route group to a role set. Owner passes everywhere.
func (m *TenantMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		tc, ok := tenant.From(c.Request.Context())
		if !ok {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}
		role := tc.Role()
		if role == model.RoleOwner {
			c.Next()
			return
		}
		if _, ok := allowed[role]; !ok {
			httputil.RespondWithError(c, apperrors.Forbidden("insufficient role", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (m *TenantMiddleware) organization(c *gin.Context, orgID uuid.UUID) (*model.Organization, error) {
	key := orgID.String()
	if cached, ok := m.cache.Get(key); ok {
		return cached.(*model.Organization), nil
	}

	org, err := m.orgs.Get(c.Request.Context(), orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("organization", err)
		}
		return nil, err
	}
	m.cache.SetDefault(key, org)
	return org, nil
}

// Invalidate drops a cached organization, called after settings updates so
// the next request sees the new document.
func (m *TenantMiddleware) Invalidate(orgID uuid.UUID) {
	m.cache.Delete(orgID.String())
}
