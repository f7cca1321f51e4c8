package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/tenant"
)

type Service struct {
	repo repository.AuditRepository
}

func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

type LogOptions struct {
	Changes   interface{}
	Metadata  interface{}
	IPAddress string
}

// Log creates an audit log entry. Audit failures are returned but callers
// generally log and continue; losing an audit row must not roll back the
// action itself.
func (s *Service) Log(ctx context.Context, orgID uuid.UUID, action, entityType string, entityID uuid.UUID, opts *LogOptions) error {
	var changes, metadata json.RawMessage
	var ipAddress string
	var err error

	if opts != nil {
		if opts.Changes != nil {
			changes, err = json.Marshal(opts.Changes)
			if err != nil {
				return err
			}
		}
		if opts.Metadata != nil {
			metadata, err = json.Marshal(opts.Metadata)
			if err != nil {
				return err
			}
		}
		ipAddress = opts.IPAddress
	}

	log := &model.AuditLog{
		ID:             uuid.New(),
		UserID:         tenant.UserID(ctx),
		OrganizationID: orgID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		Changes:        changes,
		Metadata:       metadata,
		IPAddress:      ipAddress,
		CreatedAt:      time.Now(),
	}
	return s.repo.Create(ctx, log)
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, p model.Pagination) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, orgID, p)
}

func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) error {
	return s.repo.DeleteBefore(ctx, cutoff)
}
