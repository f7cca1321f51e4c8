package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/internal/tenant"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/httputil"
)

// Handler serves the operational endpoints.
type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now(),
	})
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// Tenant pulls the resolved tenant from the request, aborting with 401 when
// the middleware has not run.
func Tenant(c *gin.Context) (*tenant.Context, bool) {
	tc, ok := tenant.From(c.Request.Context())
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		c.Abort()
	}
	return tc, ok
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.ContextUserID)
	id, ok := raw.(uuid.UUID)
	if !exists || !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}

// ParseID parses a uuid path parameter, responding 400 on garbage.
func ParseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name, err))
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}
