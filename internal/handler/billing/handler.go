package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/billing"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	invoices := r.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id/status", h.UpdateStatus)
		invoices.GET("/:id/pdf", h.PDF)
	}
}

func (h *Handler) Create(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), tc.OrganizationID(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, invoice)
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

	invoice, err := h.service.Get(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoice)
}

func (h *Handler) List(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	filters := &model.InvoiceFilters{
		OrganizationID: tc.OrganizationID(),
		Status:         model.InvoiceStatus(c.Query("status")),
		SearchTerm:     c.Query("search"),
	}
	invoices, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoices)
}

type updateStatusRequest struct {
	Status model.InvoiceStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	invoice, err := h.service.UpdateStatus(c.Request.Context(), tc.OrganizationID(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, invoice)
}

func (h *Handler) PDF(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.RenderPDF(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", doc)
}
