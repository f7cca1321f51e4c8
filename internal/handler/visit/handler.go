package visit

import (
	"github.com/gin-gonic/gin"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/visit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service *visit.Service
	tenants *middleware.TenantMiddleware
}

func NewHandler(service *visit.Service, tenants *middleware.TenantMiddleware) *Handler {
	return &Handler{service: service, tenants: tenants}
}

// RegisterRoutes wires the workflow endpoints. Each stage action is gated to
// the roles of the department that performs it.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.tenants.RequireRole(model.RoleAdmin, model.RoleNurse, model.RoleDoctor), h.Start)
		visits.GET("/queue/:status", h.Queue)
		visits.GET("/:id", h.Get)
		visits.GET("/:id/events", h.Timeline)

		visits.POST("/:id/vitals", h.tenants.RequireRole(model.RoleAdmin, model.RoleNurse), h.RecordVitals)
		visits.POST("/:id/consultation", h.tenants.RequireRole(model.RoleAdmin, model.RoleDoctor), h.FinalizeConsultation)
		visits.POST("/:id/lab-results", h.tenants.RequireRole(model.RoleAdmin, model.RoleLab), h.ForwardLabResults)
		visits.POST("/:id/dispense", h.tenants.RequireRole(model.RoleAdmin, model.RolePharmacy), h.Dispense)
	}
}

func (h *Handler) Start(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.StartVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	v, err := h.service.Start(c.Request.Context(), tc.OrganizationID(), tc.Settings(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, v)
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

	v, err := h.service.Get(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}

// Queue serves the department worklists: /visits/queue/triage and friends.
func (h *Handler) Queue(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	status := model.VisitStatus(c.Param("status"))
	switch status {
	case model.VisitStatusTriage, model.VisitStatusConsultation, model.VisitStatusLab,
		model.VisitStatusPharmacy, model.VisitStatusCompleted:
	default:
		httputil.RespondWithError(c, apperrors.BadRequest("unknown queue", nil))
		return
	}

	visits, err := h.service.Queue(c.Request.Context(), tc.OrganizationID(), status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, visits)
}

func (h *Handler) Timeline(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	events, err := h.service.Timeline(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, events)
}

func (h *Handler) RecordVitals(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.RecordVitalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	v, err := h.service.RecordVitals(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}

func (h *Handler) FinalizeConsultation(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.FinalizeConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	v, err := h.service.FinalizeConsultation(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}

func (h *Handler) ForwardLabResults(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.ForwardLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	v, err := h.service.ForwardLabResults(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}

func (h *Handler) Dispense(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	var req model.DispenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	v, err := h.service.Dispense(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, v)
}
