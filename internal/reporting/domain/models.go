// Package domain turns a snapshot of sales and customers into period metrics.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// TopCustomerLimit bounds the top customers list.
const TopCustomerLimit = 5

var ErrInvalidDateRange = errors.New("invalid_date_range")

// Filter selects sales by business type prefix and an inclusive day range.
type Filter struct {
	BusinessTypePrefix string    `json:"business_type,omitempty"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
}

type ServiceShare struct {
	BusinessType string          `json:"business_type"`
	Amount       decimal.Decimal `json:"amount"`
	Share        decimal.Decimal `json:"share"`
	Orders       int             `json:"orders"`
}

type CustomerRevenue struct {
	CustomerID snowflake.ID    `json:"customer_id"`
	Name       string          `json:"name"`
	Revenue    decimal.Decimal `json:"revenue"`
	Orders     int             `json:"orders"`
}

type DailyPoint struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Profit decimal.Decimal `json:"profit"`
}

// Metrics is already rounded for display: money to cents, percentages to two places.
type Metrics struct {
	Filter Filter `json:"filter"`

	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalProfit       decimal.Decimal `json:"total_profit"`
	ProfitMargin      decimal.Decimal `json:"profit_margin"`
	PreviousRevenue   decimal.Decimal `json:"previous_revenue"`
	RevenueGrowth     decimal.Decimal `json:"revenue_growth"`
	OrderCount        int             `json:"order_count"`
	UniqueCustomers   int             `json:"unique_customers"`
	NewCustomers      int             `json:"new_customers"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`

	ServiceDistribution []ServiceShare    `json:"service_distribution"`
	TopCustomers        []CustomerRevenue `json:"top_customers"`
	Daily               []DailyPoint      `json:"daily"`
}
