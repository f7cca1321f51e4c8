package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/service/appointment"
	"github.com/omniclinic/clinic-api/internal/service/reminder"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

type Handler struct {
	service   *appointment.Service
	reminders *reminder.Service
	tenants   *middleware.TenantMiddleware
}

func NewHandler(service *appointment.Service, reminders *reminder.Service, tenants *middleware.TenantMiddleware) *Handler {
	return &Handler{service: service, reminders: reminders, tenants: tenants}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.DELETE("/:id", h.Cancel)
	}
	// Manual trigger for the reminder batch, in addition to the worker's
	// schedule.
	r.POST("/reminders/run", h.tenants.RequireRole(model.RoleAdmin), h.RunReminders)
}

func (h *Handler) Create(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	a, err := h.service.Create(c.Request.Context(), tc.OrganizationID(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, a)
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

	a, err := h.service.Get(c.Request.Context(), tc.OrganizationID(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
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

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	a, err := h.service.Update(c.Request.Context(), tc.OrganizationID(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

func (h *Handler) Cancel(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), tc.OrganizationID(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"cancelled": true})
}

func (h *Handler) List(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}

	filters := &model.AppointmentFilters{
		OrganizationID: tc.OrganizationID(),
		Status:         model.AppointmentStatus(c.Query("status")),
		DateFrom:       c.Query("from"),
		DateTo:         c.Query("to"),
	}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient_id", err))
			return
		}
		filters.PatientID = id
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

// RunReminders executes the reminder batch for this tenant and returns the
// counts and per-appointment log lines.
func (h *Handler) RunReminders(c *gin.Context) {
	tc, ok := handler.Tenant(c)
	if !ok {
		return
	}
	result := h.reminders.Process(c.Request.Context(), tc.OrganizationID())
	httputil.RespondWithSuccess(c, result)
}
