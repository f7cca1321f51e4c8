package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusVoid    InvoiceStatus = "Void"
)

type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Category    string          `json:"category"`
}

// Amount is quantity times unit price for one line.
func (i InvoiceItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

type InvoiceItems []InvoiceItem

func (v InvoiceItems) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *InvoiceItems) Scan(src interface{}) error {
	switch b := src.(type) {
	case []byte:
		return json.Unmarshal(b, v)
	case string:
		return json.Unmarshal([]byte(b), v)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("unsupported type for invoice items: %T", src)
	}
}

// Total is the sum invariant: Σ quantity × unit price. Recomputing is
// idempotent; the stored total is always derived from the items.
func (v InvoiceItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range v {
		total = total.Add(item.Amount())
	}
	return total
}

type Invoice struct {
	Base
	OrganizationID uuid.UUID       `db:"organization_id" json:"organization_id"`
	Number         string          `db:"number" json:"number"`
	PatientName    string          `db:"patient_name" json:"patient_name"`
	Date           string          `db:"date" json:"date"`
	Items          InvoiceItems    `db:"items" json:"items"`
	Total          decimal.Decimal `db:"total" json:"total"`
	Currency       Currency        `db:"currency" json:"currency"`
	Status         InvoiceStatus   `db:"status" json:"status"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
}

// Recompute refreshes the derived total from the line items.
func (inv *Invoice) Recompute() {
	inv.Total = inv.Items.Total()
}

type CreateInvoiceRequest struct {
	PatientName   string        `json:"patient_name" binding:"required"`
	Date          string        `json:"date" binding:"required"`
	Items         []InvoiceItem `json:"items" binding:"required,min=1"`
	Currency      Currency      `json:"currency" binding:"required,oneof=USD SSP"`
	Status        InvoiceStatus `json:"status" binding:"omitempty,oneof=Paid Unpaid Partial Void"`
	PaymentMethod string        `json:"payment_method"`
}

type InvoiceFilters struct {
	OrganizationID uuid.UUID
	Status         InvoiceStatus
	SearchTerm     string
}
