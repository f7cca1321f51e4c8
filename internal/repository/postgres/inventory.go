package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
)

type inventoryRepository struct {
	db *sqlx.DB
}

func NewInventoryRepository(db *sqlx.DB) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, organization_id, department, name, category, unit, stock, reorder_level, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.OrganizationID,
		item.Department,
		item.Name,
		item.Category,
		item.Unit,
		item.Stock,
		item.ReorderLevel,
		item.Price,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (r *inventoryRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.InventoryItem, error) {
	query := `SELECT * FROM inventory_items WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	var item model.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, orgID, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET name = $1, category = $2, unit = $3, reorder_level = $4, price = $5, updated_at = $6
		WHERE organization_id = $7 AND id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		item.Name,
		item.Category,
		item.Unit,
		item.ReorderLevel,
		item.Price,
		time.Now(),
		item.OrganizationID,
		item.ID,
	)
	return err
}

func (r *inventoryRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `UPDATE inventory_items SET deleted_at = $1 WHERE organization_id = $2 AND id = $3`
	_, err := r.db.ExecContext(ctx, query, time.Now(), orgID, id)
	return err
}

func (r *inventoryRepository) List(ctx context.Context, orgID uuid.UUID, department string) ([]*model.InventoryItem, error) {
	query := `SELECT * FROM inventory_items WHERE organization_id = $1 AND deleted_at IS NULL`
	args := []interface{}{orgID}
	if department != "" {
		args = append(args, department)
		query += fmt.Sprintf(` AND department = $%d`, len(args))
	}
	query += ` ORDER BY name`

	var items []*model.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}
	return items, nil
}

// DecrementStock subtracts qty only when enough stock remains. The stock
// floor check lives in the WHERE clause so concurrent dispenses cannot
// drive the level negative. Returns false when the guard rejects the row.
func (r *inventoryRepository) DecrementStock(ctx context.Context, orgID, id uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE inventory_items
		SET stock = stock - $1, updated_at = $2
		WHERE organization_id = $3 AND id = $4 AND deleted_at IS NULL AND stock >= $1
	`
	result, err := r.db.ExecContext(ctx, query, qty, time.Now(), orgID, id)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *inventoryRepository) IncrementStock(ctx context.Context, orgID, id uuid.UUID, qty int) error {
	query := `
		UPDATE inventory_items
		SET stock = stock + $1, updated_at = $2
		WHERE organization_id = $3 AND id = $4 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, qty, time.Now(), orgID, id)
	if err != nil {
		return fmt.Errorf("failed to restock item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("inventory item not found")
	}
	return nil
}
