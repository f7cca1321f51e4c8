package inventory

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/inventory"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *inventory.Service
}

func NewHandler(service *inventory.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/inventory")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/low-stock", h.LowStock)
		items.GET("/:id", h.Get)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
		items.POST("/:id/restock", h.Restock)
	}
}

func (h *Handler) Create(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	item, err := h.service.Create(c.Request.Context(), tc.OrganizationID(), tc.Settings(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, item)
}

func (h *Handler) Get(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, item)
}

func (h *Handler) Update(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	item, err := h.service.Update(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, item)
}

func (h *Handler) Delete(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), tc.OrganizationID(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) List(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), tc.OrganizationID(), c.Query("department"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) LowStock(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	items, err := h.service.LowStock(c.Request.Context(), tc.OrganizationID())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) Restock(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	item, err := h.service.Restock(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, item)
}
