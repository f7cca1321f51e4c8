package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/omniclinic/clinic-api/internal/config"
	"github.com/omniclinic/clinic-api/internal/email"
	"github.com/omniclinic/clinic-api/internal/handler"
	aiHandler "github.com/omniclinic/clinic-api/internal/handler/ai"
	appointmentHandler "github.com/omniclinic/clinic-api/internal/handler/appointment"
	auditHandler "github.com/omniclinic/clinic-api/internal/handler/audit"
	authHandler "github.com/omniclinic/clinic-api/internal/handler/auth"
	billingHandler "github.com/omniclinic/clinic-api/internal/handler/billing"
	inventoryHandler "github.com/omniclinic/clinic-api/internal/handler/inventory"
	organizationHandler "github.com/omniclinic/clinic-api/internal/handler/organization"
	patientHandler "github.com/omniclinic/clinic-api/internal/handler/patient"
	visitHandler "github.com/omniclinic/clinic-api/internal/handler/visit"
	"github.com/omniclinic/clinic-api/internal/middleware"
	"github.com/omniclinic/clinic-api/internal/repository/postgres"
	"github.com/omniclinic/clinic-api/internal/router"
	aiService "github.com/omniclinic/clinic-api/internal/service/ai"
	appointmentService "github.com/omniclinic/clinic-api/internal/service/appointment"
	auditService "github.com/omniclinic/clinic-api/internal/service/audit"
	authService "github.com/omniclinic/clinic-api/internal/service/auth"
	billingService "github.com/omniclinic/clinic-api/internal/service/billing"
	documentService "github.com/omniclinic/clinic-api/internal/service/document"
	inventoryService "github.com/omniclinic/clinic-api/internal/service/inventory"
	notificationService "github.com/omniclinic/clinic-api/internal/service/notification"
	organizationService "github.com/omniclinic/clinic-api/internal/service/organization"
	patientService "github.com/omniclinic/clinic-api/internal/service/patient"
	reminderService "github.com/omniclinic/clinic-api/internal/service/reminder"
	visitService "github.com/omniclinic/clinic-api/internal/service/visit"
	"github.com/omniclinic/clinic-api/pkg/auth"
	"github.com/omniclinic/clinic-api/pkg/logger"
	"github.com/omniclinic/clinic-api/pkg/metrics"
	"github.com/omniclinic/clinic-api/pkg/pdf"
	"github.com/omniclinic/clinic-api/pkg/security"
	"github.com/omniclinic/clinic-api/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.New(&logger.Config{
		Level:   level,
		Pretty:  cfg.Logger.Pretty,
		Service: "clinic-api",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	store, err := storage.NewFilesystemStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal(err, "failed to initialize storage")
	}

	m := metrics.New("clinic")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	visitRepo := postgres.NewVisitRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	auditor := auditService.NewService(auditRepo)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(userRepo, hasher, jwtSvc)
	orgSvc := organizationService.NewService(orgRepo, membershipRepo, userRepo, auditor)
	patientSvc := patientService.NewService(patientRepo, outboxRepo, auditor)
	visitSvc := visitService.NewService(visitRepo, patientRepo, inventoryRepo, outboxRepo, auditor, m)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, auditor)
	inventorySvc := inventoryService.NewService(inventoryRepo, auditor)
	billingSvc := billingService.NewService(invoiceRepo, orgRepo, pdf.NewInvoiceGenerator(), store, auditor)
	documentSvc := documentService.NewService(documentRepo, patientRepo, store, auditor)

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}
	notifier := notificationService.NewService(
		notificationRepo,
		notificationService.NewLoggingGateway(log.ZL),
		emailSvc,
	)
	reminderSvc := reminderService.NewService(orgRepo, appointmentRepo, notifier, m, log.ZL)
	aiSvc := aiService.NewService(aiService.NoopCompleter{})

	// Middleware
	authMW := middleware.NewAuthMiddleware(jwtSvc)
	tenantMW := middleware.NewTenantMiddleware(orgRepo, membershipRepo)

	// Handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc, orgSvc)
	orgH := organizationHandler.NewHandler(orgSvc, tenantMW)

	r := router.New(
		log.ZL,
		m,
		authMW,
		tenantMW,
		authH,
		orgH,
		h,
		router.Config{
			RateLimit: rate.Limit(100),
			RateBurst: 200,
			Timeout:   time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORS:      middleware.DefaultCORSConfig(),
		},
		patientHandler.NewHandler(patientSvc, documentSvc),
		visitHandler.NewHandler(visitSvc, tenantMW),
		appointmentHandler.NewHandler(appointmentSvc, reminderSvc, tenantMW),
		billingHandler.NewHandler(billingSvc),
		inventoryHandler.NewHandler(inventorySvc),
		auditHandler.NewHandler(auditor),
		aiHandler.NewHandler(aiSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.ZL.Info().Int("port", cfg.Server.Port).Msg("starting api server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down api server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
