package pdf

import (
	"context"
	"errors"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrEmptyInvoice = errors.New("invoice has no items")

// InvoiceData carries preformatted strings; the PDF layer does no arithmetic.
type InvoiceData struct {
	BusinessName    string
	BusinessAddress string
	BusinessEmail   string
	BusinessPhone   string
	LogoPath        string

	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Status        string

	BillToName    string
	BillToAddress string
	BillToEmail   string
	BillToPhone   string

	Items []InvoiceItem

	Subtotal  string
	TaxLabel  string
	Tax       string
	Total     string
	AmountDue string

	BankDetails string
	Notes       string
}

type InvoiceItem struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	return maroto.New(cfg)
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) ([]byte, error) {
	if len(invoice.Items) == 0 {
		return nil, ErrEmptyInvoice
	}

	m := newDocument()

	if invoice.LogoPath != "" {
		m.AddRow(30,
			image.NewFromFileCol(3, invoice.LogoPath, props.Rect{Percent: 80}),
			col.New(9),
		)
	}

	m.AddRow(12,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, invoice.Status, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
			Top:   3,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.IssueDate, props.Text{Top: 5}),
			text.New("Date due: "+invoice.DueDate, props.Text{Top: 10}),
		),
		col.New(6),
	)

	m.AddRow(32,
		col.New(6).Add(
			text.New(invoice.BusinessName, props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BusinessAddress, props.Text{Top: 5}),
			text.New(invoice.BusinessPhone, props.Text{Top: 15}),
			text.New(invoice.BusinessEmail, props.Text{Top: 20}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BillToName, props.Text{Top: 5}),
			text.New(invoice.BillToAddress, props.Text{Top: 10}),
			text.New(invoice.BillToPhone, props.Text{Top: 20}),
			text.New(invoice.BillToEmail, props.Text{Top: 25}),
		),
	)

	m.AddRow(12,
		text.NewCol(12, invoice.AmountDue+" due "+invoice.DueDate, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(8,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, strconv.FormatInt(item.Qty, 10), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	totalRow(m, "Subtotal", invoice.Subtotal, false)
	totalRow(m, invoice.TaxLabel, invoice.Tax, false)
	totalRow(m, "Total", invoice.Total, false)
	totalRow(m, "Amount due", invoice.AmountDue, true)

	if invoice.BankDetails != "" {
		m.AddRow(20,
			text.NewCol(12, invoice.BankDetails, props.Text{Size: 9, Top: 5}),
		)
	}
	if invoice.Notes != "" {
		m.AddRow(15,
			text.NewCol(12, invoice.Notes, props.Text{Size: 9, Top: 2}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func totalRow(m core.Maroto, label, value string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}
