// Package export writes report metrics and their underlying sales to files.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/internal/money"
	"github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
)

const dateLayout = "2006-01-02"

var saleHeader = []string{
	"date", "sale_id", "customer", "business_type", "description",
	"amount", "amount_paid", "payment_status", "order_status", "profit",
}

// CSV writes one row per sale followed by a blank line and the metrics summary.
func CSV(metrics domain.Metrics, sales []saledomain.Sale, directory customerdomain.Directory) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(saleHeader); err != nil {
		return nil, err
	}
	for _, row := range saleRows(sales, directory) {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	if err := w.Write(nil); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"metric", "value"}); err != nil {
		return nil, err
	}
	for _, line := range SummaryRows(metrics) {
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryRows flattens the headline metrics into label/value pairs.
func SummaryRows(m domain.Metrics) [][]string {
	return [][]string{
		{"period_start", m.Filter.Start.Format(dateLayout)},
		{"period_end", m.Filter.End.Format(dateLayout)},
		{"business_type", businessTypeLabel(m.Filter.BusinessTypePrefix)},
		{"total_revenue", m.TotalRevenue.StringFixed(2)},
		{"total_profit", m.TotalProfit.StringFixed(2)},
		{"profit_margin", m.ProfitMargin.StringFixed(2)},
		{"previous_revenue", m.PreviousRevenue.StringFixed(2)},
		{"revenue_growth", m.RevenueGrowth.StringFixed(2)},
		{"order_count", strconv.Itoa(m.OrderCount)},
		{"unique_customers", strconv.Itoa(m.UniqueCustomers)},
		{"new_customers", strconv.Itoa(m.NewCustomers)},
		{"average_order_value", m.AverageOrderValue.StringFixed(2)},
	}
}

func saleRows(sales []saledomain.Sale, directory customerdomain.Directory) [][]string {
	rows := make([][]string, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, []string{
			sale.Date.UTC().Format(time.RFC3339),
			sale.ID.String(),
			directory.NameOf(sale.CustomerID),
			sale.BusinessType.Bucket(),
			sale.Description,
			sale.Amount.StringFixed(2),
			sale.AmountPaid.StringFixed(2),
			string(sale.PaymentStatus),
			string(sale.OrderStatus),
			money.OrZero(sale.Profit).StringFixed(2),
		})
	}
	return rows
}

func businessTypeLabel(prefix string) string {
	if prefix == "" {
		return "all"
	}
	return prefix
}
