package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/auth"
	"github.com/omniclinic/clinic-api/internal/service/organization"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *auth.Service
	orgs    *organization.Service
}

func NewHandler(service *auth.Service, orgs *organization.Service) *Handler {
	return &Handler{service: service, orgs: orgs}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
	r.GET("/auth/organizations", h.MyOrganizations)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	token, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, token)
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, user)
}

// MyOrganizations lists the organizations the caller belongs to, for the
// workspace switcher.
func (h *Handler) MyOrganizations(c *gin.Context) {
	userID, ok := handler.UserID(c)
	if !ok {
		return
	}
	orgs, err := h.orgs.ListForUser(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, orgs)
}
