package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/omniclinic/clinic-api/internal/config"
	"github.com/omniclinic/clinic-api/internal/email"
	"github.com/omniclinic/clinic-api/internal/repository/postgres"
	notificationService "github.com/omniclinic/clinic-api/internal/service/notification"
	reminderService "github.com/omniclinic/clinic-api/internal/service/reminder"
	"github.com/omniclinic/clinic-api/pkg/logger"
	messagingredis "github.com/omniclinic/clinic-api/pkg/messaging/redis"
	"github.com/omniclinic/clinic-api/pkg/metrics"
	"github.com/omniclinic/clinic-api/pkg/worker"
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
		Service: "clinic-worker",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := messagingredis.NewBroker(messagingredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.New("clinic_worker")

	orgRepo := postgres.NewOrganizationRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	notifier := notificationService.NewService(
		notificationRepo,
		notificationService.NewLoggingGateway(log.ZL),
		email.NoopService{},
	)
	reminderSvc := reminderService.NewService(orgRepo, appointmentRepo, notifier, m, log.ZL)

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.MaxRetries,
		Channel:       cfg.Outbox.Channel,
	}, log, m)

	reminderRunner := worker.NewReminderRunner(orgRepo, reminderSvc, worker.ReminderRunnerConfig{
		Interval: cfg.Reminder.Interval,
	}, log, m)

	auditCleanup := worker.NewAuditCleanupWorker(auditRepo, cfg.Audit.RetentionDays, 24*time.Hour, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); outboxProcessor.Start(ctx) }()
	go func() { defer wg.Done(); reminderRunner.Start(ctx) }()
	go func() { defer wg.Done(); auditCleanup.Start(ctx) }()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	healthSrv := &http.Server{Addr: ":8081", Handler: mux}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "health server failed")
		}
	}()

	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "health server shutdown")
	}
}
