package billing

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/omniclinic/clinic-api/internal/model"
	"github.com/omniclinic/clinic-api/internal/repository"
	"github.com/omniclinic/clinic-api/internal/service/audit"
	apperrors "github.com/omniclinic/clinic-api/pkg/errors"
	"github.com/omniclinic/clinic-api/pkg/pdf"
	"github.com/omniclinic/clinic-api/pkg/storage"
)

type Service struct {
	invoices repository.InvoiceRepository
	orgs     repository.OrganizationRepository
	pdfs     *pdf.InvoiceGenerator
	store    storage.Storage
	auditor  *audit.Service
}

func NewService(
	invoices repository.InvoiceRepository,
	orgs repository.OrganizationRepository,
	pdfs *pdf.InvoiceGenerator,
	store storage.Storage,
	auditor *audit.Service,
) *Service {
	return &Service{
		invoices: invoices,
		orgs:     orgs,
		pdfs:     pdfs,
		store:    store,
		auditor:  auditor,
	}
}

// Create writes the invoice with a derived total. The stored total is always
// recomputed from the line items, never taken from the request.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	number, err := s.invoices.NextNumber(ctx, orgID, time.Now().Year())
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceStatusUnpaid
	}

	invoice := &model.Invoice{
		OrganizationID: orgID,
		Number:         number,
		PatientName:    req.PatientName,
		Date:           req.Date,
		Items:          req.Items,
		Currency:       req.Currency,
		Status:         status,
		PaymentMethod:  req.PaymentMethod,
	}
	invoice.ID = uuid.New()
	invoice.Recompute()

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.auditor.Log(ctx, orgID, model.AuditActionCreate, model.AuditEntityInvoice, invoice.ID, &audit.LogOptions{Changes: invoice})
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("invoice", err)
		}
		return nil, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	return s.invoices.List(ctx, filters)
}

func (s *Service) UpdateStatus(ctx context.Context, orgID, id uuid.UUID, status model.InvoiceStatus) (*model.Invoice, error) {
	switch status {
	case model.InvoiceStatusPaid, model.InvoiceStatusUnpaid, model.InvoiceStatusPartial, model.InvoiceStatusVoid:
	default:
		return nil, apperrors.BadRequest("unknown invoice status", nil)
	}

	if err := s.invoices.UpdateStatus(ctx, orgID, id, status); err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, orgID, model.AuditActionUpdate, model.AuditEntityInvoice, id, &audit.LogOptions{
		Changes: map[string]string{"status": string(status)},
	})
	return s.Get(ctx, orgID, id)
}

// RenderPDF generates the invoice document, caches it in the invoice bucket
// and returns the bytes. Regeneration overwrites the cached copy.
func (s *Service) RenderPDF(ctx context.Context, orgID, id uuid.UUID) ([]byte, error) {
	invoice, err := s.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}

	doc, err := s.pdfs.Generate(org, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}

	path := fmt.Sprintf("%s/%s.pdf", orgID, invoice.Number)
	if _, err := s.store.Upload(ctx, storage.BucketInvoices, path, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to store invoice pdf: %w", err)
	}
	return doc, nil
}

// CachedPDF returns the previously rendered document when present.
func (s *Service) CachedPDF(ctx context.Context, orgID uuid.UUID, number string) ([]byte, error) {
	path := fmt.Sprintf("%s/%s.pdf", orgID, number)
	rc, err := s.store.Download(ctx, storage.BucketInvoices, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
