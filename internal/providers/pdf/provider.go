package pdf

import "context"

// Provider renders the documents rechargedesk hands out: customer invoices
// and the sales report export.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
	GenerateReport(ctx context.Context, data ReportData) ([]byte, error)
}
