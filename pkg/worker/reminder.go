package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/pkg/logger"
	"github.com/omniclinic/clinic-api/pkg/metrics"
)

// ReminderProcessor is the batch contract: it always returns a result,
// never an error, per-item failures included in the counts.
type ReminderProcessor interface {
	Process(ctx context.Context, organizationID uuid.UUID) *model.ReminderResult
}

type ReminderRunnerConfig struct {
	Interval time.Duration
}

// ReminderRunner invokes the appointment-reminder batch for every active
// organization on a fixed interval. A batch run cannot be cancelled once it
// has started for an organization; cancellation applies between tenants.
type ReminderRunner struct {
	orgs      repository.OrganizationRepository
	processor ReminderProcessor
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewReminderRunner(
	orgs repository.OrganizationRepository,
	processor ReminderProcessor,
	cfg ReminderRunnerConfig,
	logger *logger.Logger,
	m *metrics.Metrics,
) *ReminderRunner {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &ReminderRunner{
		orgs:      orgs,
		processor: processor,
		interval:  cfg.Interval,
		logger:    logger,
		metrics:   m,
	}
}

func (r *ReminderRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("starting reminder runner")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down reminder runner")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *ReminderRunner) runOnce(ctx context.Context) {
	orgs, err := r.orgs.ListActive(ctx)
	if err != nil {
		r.logger.Error(err, "failed to list organizations for reminders")
		return
	}

	for _, org := range orgs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := r.processor.Process(ctx, org.ID)
		r.metrics.ReminderRuns.Inc()
		r.metrics.RemindersSent.Add(float64(result.SentCount))
		r.metrics.RemindersFailed.Add(float64(result.FailedCount))

		r.logger.WithFields(map[string]interface{}{
			"organization_id": org.ID.String(),
			"sent":            result.SentCount,
			"failed":          result.FailedCount,
		}).Info("reminder batch finished")
	}
}
