package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/internal/money"
)

var (
	ErrInvalidItems       = errors.New("invalid_items")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidDueDate     = errors.New("invalid_due_date")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidTax         = errors.New("invalid_tax")
)

// ItemError reports which line of an invoice failed validation.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("items[%d]: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Build derives item totals, subtotal, tax and total for a new unpaid invoice.
// Applying Build to its own output yields the same totals.
func Build(customerID snowflake.ID, date, dueDate time.Time, items []InvoiceItem, taxRate decimal.Decimal) (Invoice, error) {
	if dueDate.Before(date) {
		return Invoice{}, ErrInvalidDueDate
	}

	inv := Invoice{
		CustomerID: customerID,
		Date:       date,
		DueDate:    dueDate,
		Items:      make([]InvoiceItem, len(items)),
		Status:     StatusUnpaid,
	}
	copy(inv.Items, items)

	if err := Recompute(&inv, taxRate); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// Recompute reruns every derived field after items or the rate change. A
// previous tax override is discarded.
func Recompute(inv *Invoice, taxRate decimal.Decimal) error {
	if taxRate.IsNegative() {
		return ErrInvalidTaxRate
	}
	if len(inv.Items) == 0 {
		return ErrInvalidItems
	}

	totals := make([]decimal.Decimal, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Description = strings.TrimSpace(item.Description)
		if item.Description == "" {
			return &ItemError{Index: i, Err: ErrInvalidDescription}
		}
		total, err := money.LineTotal(item.Quantity, item.UnitPrice)
		if err != nil {
			return &ItemError{Index: i, Err: err}
		}
		item.Total = total
		item.Position = i
		totals[i] = total
	}

	inv.Subtotal = money.Sum(totals...)
	inv.TaxRate = taxRate
	inv.Tax = money.Round2(inv.Subtotal.Mul(taxRate))
	inv.TaxOverridden = false
	inv.Total = inv.Subtotal.Add(inv.Tax)
	return nil
}

// OverrideTax replaces the computed tax with a hand-entered amount and re-derives the total.
func OverrideTax(inv *Invoice, tax decimal.Decimal) error {
	if tax.IsNegative() {
		return ErrInvalidTax
	}
	inv.Tax = money.Round2(tax)
	inv.TaxOverridden = true
	inv.Total = inv.Subtotal.Add(inv.Tax)
	return nil
}

// DisplayStatus reports overdue for unpaid invoices past their due date. It never
// changes the stored status.
func DisplayStatus(inv Invoice, now time.Time) Status {
	if inv.Status == StatusUnpaid && inv.DueDate.Before(now) {
		return StatusOverdue
	}
	return inv.Status
}
