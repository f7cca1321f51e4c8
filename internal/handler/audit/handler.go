package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.List)
}

func (h *Handler) List(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid pagination", err))
		return
	}

	logs, err := h.service.List(c.Request.Context(), tc.OrganizationID(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}
