package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	"github.com/smallbiznis/rechargedesk/internal/invoice/render"
	"github.com/smallbiznis/rechargedesk/internal/money"
	"github.com/smallbiznis/rechargedesk/internal/providers/email"
	"github.com/smallbiznis/rechargedesk/internal/providers/pdf"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func (s *Service) RenderPDF(ctx context.Context, id string) (domain.Document, error) {
	invoice, err := s.load(ctx, s.db, id)
	if err != nil {
		return domain.Document{}, err
	}
	customer := s.billTo(ctx, *invoice)
	return s.renderPDF(ctx, *invoice, customer)
}

func (s *Service) renderPDF(ctx context.Context, invoice domain.Invoice, customer customerdomain.Customer) (domain.Document, error) {
	data := s.invoiceData(invoice, customer)
	out, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{
		Filename:    invoice.Number + ".pdf",
		ContentType: "application/pdf",
		Data:        out,
	}, nil
}

// Send emails the invoice summary to the customer with the PDF attached.
func (s *Service) Send(ctx context.Context, id string) error {
	invoice, err := s.load(ctx, s.db, id)
	if err != nil {
		return err
	}

	customer, err := s.customerSvc.GetByID(ctx, invoice.CustomerID.String())
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) {
			return domain.ErrMissingEmail
		}
		return err
	}
	if strings.TrimSpace(customer.Email) == "" {
		return domain.ErrMissingEmail
	}

	doc, err := s.renderPDF(ctx, *invoice, customer)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	body, err := s.renderer.RenderHTML(s.view(*invoice, customer, domain.DisplayStatus(*invoice, now)))
	if err != nil {
		return err
	}

	data := map[string]any{
		"customer_name":  customer.Name,
		"invoice_number": invoice.Number,
		"total":          s.format(invoice.Total),
		"due_date":       invoice.DueDate.Format(dateLayout),
		"body_html":      body,
		"business_name":  s.cfg.Business.Name,
		"business_phone": s.cfg.Business.Phone,
	}
	attachment := email.Attachment{Filename: doc.Filename, ContentType: doc.ContentType, Data: doc.Data}
	if err := s.email.SendTemplate(ctx, []string{customer.Email}, email.TemplateInvoiceNew, data, attachment); err != nil {
		s.log.Error("invoice email failed", zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
		return err
	}

	if err := s.repo.MarkSent(ctx, s.db, invoice.ID, now); err != nil {
		return err
	}
	s.log.Info("invoice sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)
	return nil
}

func (s *Service) billTo(ctx context.Context, invoice domain.Invoice) customerdomain.Customer {
	customer, err := s.customerSvc.GetByID(ctx, invoice.CustomerID.String())
	if err != nil {
		return customerdomain.Customer{ID: invoice.CustomerID, Name: customerdomain.UnknownName}
	}
	return customer
}

func (s *Service) invoiceData(invoice domain.Invoice, customer customerdomain.Customer) pdf.InvoiceData {
	items := make([]pdf.InvoiceItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, pdf.InvoiceItem{
			Description: item.Description,
			Qty:         item.Quantity,
			UnitPrice:   s.format(item.UnitPrice),
			Amount:      s.format(item.Total),
		})
	}

	amountDue := invoice.Total
	if invoice.Status == domain.StatusPaid {
		amountDue = decimal.Zero
	}

	return pdf.InvoiceData{
		BusinessName:    s.cfg.Business.Name,
		BusinessAddress: s.cfg.Business.Address,
		BusinessEmail:   s.cfg.Business.Email,
		BusinessPhone:   s.cfg.Business.Phone,
		InvoiceNumber:   invoice.Number,
		IssueDate:       invoice.Date.Format(dateLayout),
		DueDate:         invoice.DueDate.Format(dateLayout),
		Status:          strings.ToUpper(string(domain.DisplayStatus(invoice, s.clock.Now()))),
		BillToName:      customer.Name,
		BillToAddress:   customer.Address,
		BillToEmail:     customer.Email,
		BillToPhone:     customer.Phone,
		Items:           items,
		Subtotal:        s.format(invoice.Subtotal),
		TaxLabel:        taxLabel(invoice),
		Tax:             s.format(invoice.Tax),
		Total:           s.format(invoice.Total),
		AmountDue:       s.format(amountDue),
		BankDetails:     s.cfg.Business.BankDetails,
		Notes:           invoice.Notes,
	}
}

func (s *Service) view(invoice domain.Invoice, customer customerdomain.Customer, status domain.Status) render.View {
	items := make([]render.ItemView, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, render.ItemView{
			Description: item.Description,
			Quantity:    render.FormatQuantity(item.Quantity),
			UnitPrice:   s.format(item.UnitPrice),
			Amount:      s.format(item.Total),
		})
	}
	return render.View{
		Number:       invoice.Number,
		Status:       strings.ToUpper(string(status)),
		IssueDate:    invoice.Date.Format(dateLayout),
		DueDate:      invoice.DueDate.Format(dateLayout),
		BusinessName: s.cfg.Business.Name,
		CustomerName: customer.Name,
		Items:        items,
		Subtotal:     s.format(invoice.Subtotal),
		TaxLabel:     taxLabel(invoice),
		Tax:          s.format(invoice.Tax),
		Total:        s.format(invoice.Total),
		BankDetails:  s.cfg.Business.BankDetails,
	}
}

func (s *Service) format(v decimal.Decimal) string {
	return money.Format(s.cfg.Business.CurrencySymbol, v)
}

func taxLabel(invoice domain.Invoice) string {
	if invoice.TaxOverridden {
		return "Tax"
	}
	return "Tax (" + invoice.TaxRate.Mul(decimal.NewFromInt(100)).String() + "%)"
}
