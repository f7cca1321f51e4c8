package organization

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/access"
	"github.com/omniclinic/clinic-api/internal/service/organization"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *organization.Service
	tenants *middleware.TenantMiddleware
}

func NewHandler(service *organization.Service, tenants *middleware.TenantMiddleware) *Handler {
	return &Handler{service: service, tenants: tenants}
}

// RegisterOnboardingRoutes are authenticated but not tenant-scoped: they
// exist before the caller has an organization.
func (h *Handler) RegisterOnboardingRoutes(r *gin.RouterGroup) {
	r.POST("/organizations", h.Onboard)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	org := r.Group("/organization")
	{
		org.GET("", h.Get)
		org.GET("/navigation", h.Navigation)
		org.GET("/services/:department", h.DepartmentServices)

		admin := org.Group("", h.tenants.RequireRole(model.RoleAdmin))
		{
			admin.PATCH("/settings", h.UpdateSettings)
			admin.GET("/members", h.ListMembers)
			admin.POST("/members", h.AddMember)
			admin.PUT("/members/:userId/role", h.UpdateMemberRole)
			admin.DELETE("/members/:userId", h.RemoveMember)
		}

		owner := org.Group("", h.tenants.RequireRole())
		{
			owner.DELETE("", h.Archive)
		}
	}
}

func (h *Handler) Onboard(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		return
	}

	var req model.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	org, err := h.service.Onboard(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, org)
}

func (h *Handler) Get(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, tc.Organization)
}

// Navigation returns the menu entries visible to the caller in this tenant.
func (h *Handler) Navigation(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, access.Visible(tc.Role(), tc.Settings()))
}

// DepartmentServices returns the configured service catalog for one
// department, e.g. lab test names or drug categories, for the consultation
// screen pickers.
func (h *Handler) DepartmentServices(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	dept := c.Param("department")
	httputil.RespondWithSuccess(c, gin.H{
		"department": dept,
		"services":   tc.Settings().Services(dept),
	})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.UpdateOrganizationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	org, err := h.service.UpdateSettings(c.Request.Context(), tc.OrganizationID(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.tenants.Invalidate(tc.OrganizationID())
	httputil.RespondWithSuccess(c, org)
}

func (h *Handler) Archive(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	if tc.Role() != model.RoleOwner {
		httputil.RespondWithError(c, apperrors.Forbidden("only the owner can archive", nil))
		return
	}
	if err := h.service.Archive(c.Request.Context(), tc.OrganizationID()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.tenants.Invalidate(tc.OrganizationID())
	httputil.RespondWithSuccess(c, gin.H{"archived": true})
}

func (h *Handler) ListMembers(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	members, err := h.service.ListMembers(c.Request.Context(), tc.OrganizationID())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, members)
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

func (h *Handler) AddMember(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	member, err := h.service.AddMember(c.Request.Context(), tc.OrganizationID(), req.Email, req.Role)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, member)
}

type updateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *Handler) UpdateMemberRole(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	userID, ok := handler.ParseID(c, "userId")
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	if err := h.service.UpdateMemberRole(c.Request.Context(), tc.OrganizationID(), userID, req.Role); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"updated": true})
}

func (h *Handler) RemoveMember(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	userID, ok := handler.ParseID(c, "userId")
	if !ok {
		return
	}
	if err := h.service.RemoveMember(c.Request.Context(), tc.OrganizationID(), userID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"removed": true})
}
