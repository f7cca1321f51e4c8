package worker

import (
	"context"
	"time"

	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/pkg/logger"
)

// AuditCleanupWorker purges audit rows older than the retention window.
type AuditCleanupWorker struct {
	repo          repository.AuditRepository
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retentionDays int, interval time.Duration, logger *logger.Logger) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -w.retentionDays)
			if err := w.repo.DeleteBefore(ctx, cutoff); err != nil {
				w.logger.Error(err, "audit cleanup failed")
			}
		}
	}
}
