package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/omniclinic/clinic-api/internal/handler"
	"github.com/omniclinic/clinic-api/internal/handler/auth"
	"github.com/omniclinic/clinic-api/internal/handler/organization"
	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/pkg/metrics"
)

// Handler registers tenant-scoped routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Timeout   time.Duration
	CORS      middleware.CORSConfig
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	tenants *middleware.TenantMiddleware
	authH   *auth.Handler
	orgH    *organization.Handler
	scoped  []Handler
	h       *handler.Handler
}

func New(
	logger zerolog.Logger,
	m *metrics.Metrics,
	authMW *middleware.AuthMiddleware,
	tenantMW *middleware.TenantMiddleware,
	authH *auth.Handler,
	orgH *organization.Handler,
	h *handler.Handler,
	cfg Config,
	scoped ...Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.Timeout}),
		middleware.CORS(cfg.CORS),
	)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  cfg.RateLimit,
		Burst: cfg.RateBurst,
	})
	engine.Use(limiter.RateLimit())

	return &Router{
		engine:  engine,
		auth:    authMW,
		tenants: tenantMW,
		authH:   authH,
		orgH:    orgH,
		scoped:  scoped,
		h:       h,
	}
}

// Setup wires three route tiers: public (register/login), authenticated
// (profile, onboarding) and tenant-scoped (everything clinical, behind the
// organization header).
func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)
	r.authH.RegisterRoutes(api)

	authed := api.Group("", r.auth.Authenticate())
	r.authH.RegisterProtectedRoutes(authed)
	r.orgH.RegisterOnboardingRoutes(authed)

	scoped := authed.Group("", r.tenants.Resolve())
	r.orgH.RegisterRoutes(scoped)
	for _, h := range r.scoped {
		h.RegisterRoutes(scoped)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine { return r.engine }
