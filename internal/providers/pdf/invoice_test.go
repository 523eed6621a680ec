package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoice(t *testing.T) {
	provider := New()

	doc, err := provider.GenerateInvoice(context.Background(), InvoiceData{
		BusinessName:  "Corner Recharge",
		InvoiceNumber: "INV-202406-0001",
		IssueDate:     "2024-06-01",
		DueDate:       "2024-06-15",
		Status:        "UNPAID",
		BillToName:    "Maria Lopez",
		Items: []InvoiceItem{
			{Description: "Prepaid refill", Qty: 2, UnitPrice: "$10.00", Amount: "$20.00"},
		},
		Subtotal:  "$20.00",
		TaxLabel:  "Tax (9%)",
		Tax:       "$1.80",
		Total:     "$21.80",
		AmountDue: "$21.80",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestGenerateInvoiceRequiresItems(t *testing.T) {
	_, err := New().GenerateInvoice(context.Background(), InvoiceData{InvoiceNumber: "INV-1"})
	assert.ErrorIs(t, err, ErrEmptyInvoice)
}

func TestGenerateReport(t *testing.T) {
	doc, err := New().GenerateReport(context.Background(), ReportData{
		BusinessName: "Corner Recharge",
		Title:        "Business report",
		Period:       "2024-06-01 to 2024-06-07",
		Summary:      []ReportLine{{Label: "Total revenue", Value: "$120.00"}},
		Daily:        []ReportDay{{Date: "2024-06-01", Revenue: "$20.00", Profit: "$0.00"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}
