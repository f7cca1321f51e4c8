package ai

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/service/ai"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *ai.Service
}

func NewHandler(service *ai.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ai/assist", h.Assist)
}

func (h *Handler) Assist(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req ai.AssistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	resp, err := h.service.Assist(c.Request.Context(), tc.OrganizationID(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}
