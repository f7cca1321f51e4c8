package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItem is a tenant-scoped medication stock line. Stock is only ever
// changed through atomic conditional updates at the repository; two
// concurrent dispenses can never both succeed past the floor.
type InventoryItem struct {
	Base
	OrganizationID uuid.UUID       `db:"organization_id" json:"organization_id"`
	Department     string          `db:"department" json:"department"`
	Name           string          `db:"name" json:"name"`
	Category       string          `db:"category" json:"category"`
	Unit           string          `db:"unit" json:"unit"`
	Stock          int             `db:"stock" json:"stock"`
	ReorderLevel   int             `db:"reorder_level" json:"reorder_level"`
	Price          decimal.Decimal `db:"price" json:"price"`
}

// LowStock reports whether the item has fallen to its reorder level.
func (i *InventoryItem) LowStock() bool {
	return i.Stock <= i.ReorderLevel
}

type CreateInventoryItemRequest struct {
	Department   string          `json:"department" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Stock        int             `json:"stock" binding:"gte=0"`
	ReorderLevel int             `json:"reorder_level" binding:"gte=0"`
	Price        decimal.Decimal `json:"price"`
}

type UpdateInventoryItemRequest struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	Unit         *string          `json:"unit"`
	ReorderLevel *int             `json:"reorder_level"`
	Price        *decimal.Decimal `json:"price"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}
