package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
)

type Service struct {
	repo    repository.InventoryRepository
	auditor *audit.Service
}

func NewService(repo repository.InventoryRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// Create adds a stock line for a department. The department must be enabled
// in the tenant settings; a missing key counts as disabled.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, settings model.OrganizationSettings, req *model.CreateInventoryItemRequest) (*model.InventoryItem, error) {
	if !settings.DepartmentEnabled(req.Department) {
		return nil, apperrors.BadRequest(fmt.Sprintf("department %s is not enabled", req.Department), nil)
	}

	item := &model.InventoryItem{
		OrganizationID: orgID,
		Department:     req.Department,
		Name:           req.Name,
		Category:       req.Category,
		Unit:           req.Unit,
		Stock:          req.Stock,
		ReorderLevel:   req.ReorderLevel,
		Price:          req.Price,
	}
	item.ID = uuid.New()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create inventory item: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityInventory, item.ID, &audit.LogOptions{Changes: item})
	return item, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("inventory item", err)
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req *model.UpdateInventoryItemRequest) (*model.InventoryItem, error) {
	item, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	if req.Price != nil {
		item.Price = *req.Price
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityInventory, item.ID, &audit.LogOptions{Changes: req})
	return item, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.Get(ctx, orgID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionDelete, model.AuditEntityInventory, id, nil)
	return nil
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, department string) ([]*model.InventoryItem, error) {
	return s.repo.List(ctx, orgID, department)
}

// LowStock returns items at or below their reorder level.
func (s *Service) LowStock(ctx context.Context, orgID uuid.UUID) ([]*model.InventoryItem, error) {
	items, err := s.repo.List(ctx, orgID, "")
	if err != nil {
		return nil, err
	}
	low := make([]*model.InventoryItem, 0)
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}

// Restock adds stock. Decrements happen only through dispensing.
func (s *Service) Restock(ctx context.Context, orgID, id uuid.UUID, req *model.RestockRequest) (*model.InventoryItem, error) {
	if err := s.repo.IncrementStock(ctx, orgID, id, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to restock: %w", err)
	}
	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityInventory, id, &audit.LogOptions{
		Changes: map[string]int{"quantity": req.Quantity},
	})
	return s.Get(ctx, orgID, id)
}
