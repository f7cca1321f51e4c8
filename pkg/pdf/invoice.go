// Package pdf renders printable invoices with Maroto v2.
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/omniclinic/clinic-api/internal/model"
)

var (
	colorPrimary = &props.Color{Red: 49, Green: 46, Blue: 129}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// InvoiceGenerator renders an invoice to PDF bytes.
type InvoiceGenerator struct{}

func NewInvoiceGenerator() *InvoiceGenerator { return &InvoiceGenerator{} }

func (g *InvoiceGenerator) Generate(org *model.Organization, inv *model.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Invoice %s", inv.Number), true).
		WithAuthor(org.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(org, inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(patientRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, item := range inv.Items {
		m.AddRows(itemRow(item, inv.Currency))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(inv))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: failed to generate invoice: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(org *model.Organization, inv *model.Invoice) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(org.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Clinic Invoice", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("INV %s", inv.Number), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 2,
			}),
			text.New("Date: "+inv.Date, props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func patientRow(inv *model.Invoice) core.Row {
	return row.New(10).Add(
		col.New(8).Add(
			text.New("BILLED TO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.PatientName, props.Text{Size: 9, Top: 6}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%s  •  %s", inv.PaymentMethod, inv.Status), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		col.New(6).Add(text.New("Description", props.Text{Style: fontstyle.Bold, Size: 8})),
		col.New(2).Add(text.New("Qty", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right})),
		col.New(2).Add(text.New("Unit Price", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right})),
		col.New(2).Add(text.New("Amount", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right})),
	)
}

func itemRow(item model.InvoiceItem, currency model.Currency) core.Row {
	return row.New(6).Add(
		col.New(6).Add(text.New(item.Description, props.Text{Size: 8})),
		col.New(2).Add(text.New(fmt.Sprintf("%d", item.Quantity), props.Text{Size: 8, Align: align.Right})),
		col.New(2).Add(text.New(item.UnitPrice.StringFixed(2), props.Text{Size: 8, Align: align.Right})),
		col.New(2).Add(text.New(fmt.Sprintf("%s %s", currency, item.Amount().StringFixed(2)), props.Text{Size: 8, Align: align.Right})),
	)
}

func totalRow(inv *model.Invoice) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(4).Add(
			text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1}),
			text.New(fmt.Sprintf("%s %s", inv.Currency, inv.Total.StringFixed(2)), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 5, Color: colorPrimary,
			}),
		),
	)
}
