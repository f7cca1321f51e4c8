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

type invoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (id, organization_id, number, patient_name, date, items, total, currency, status, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.OrganizationID,
		invoice.Number,
		invoice.PatientName,
		invoice.Date,
		invoice.Items,
		invoice.Total,
		invoice.Currency,
		invoice.Status,
		invoice.PaymentMethod,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Invoice, error) {
	query := `SELECT * FROM invoices WHERE organization_id = $1 AND id = $2 AND deleted_at IS NULL`
	var invoice model.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, orgID, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status model.InvoiceStatus) error {
	query := `UPDATE invoices SET status = $1, updated_at = $2 WHERE organization_id = $3 AND id = $4 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), orgID, id)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("invoice not found")
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	query := `SELECT * FROM invoices WHERE organization_id = $1 AND deleted_at IS NULL`
	args := []interface{}{filters.OrganizationID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		query += fmt.Sprintf(` AND (patient_name ILIKE $%d OR number ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY created_at DESC`

	var invoices []*model.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// NextNumber allocates the next sequential invoice number for the
// organization and year, e.g. INV-2026-0001.
func (r *invoiceRepository) NextNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", year)
	query := `SELECT COUNT(*) FROM invoices WHERE organization_id = $1 AND number LIKE $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, orgID, prefix+"%"); err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}
