// Package domain contains the invoice model and its totals arithmetic.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the stored payment status of an invoice.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusUnpaid  Status = "unpaid"
	StatusOverdue Status = "overdue"
)

type Invoice struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	InvoiceNumber int64             `json:"-" gorm:"not null;uniqueIndex:ux_invoices_number"`
	Number        string            `json:"number" gorm:"type:text;not null"`
	CustomerID    snowflake.ID      `json:"customer_id" gorm:"not null;index"`
	SaleID        *snowflake.ID     `json:"sale_id,omitempty" gorm:"index"`
	Date          time.Time         `json:"date" gorm:"not null"`
	DueDate       time.Time         `json:"due_date" gorm:"not null"`
	Subtotal      decimal.Decimal   `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	TaxRate       decimal.Decimal   `json:"tax_rate" gorm:"type:numeric(6,4);not null"`
	Tax           decimal.Decimal   `json:"tax" gorm:"type:numeric(12,2);not null"`
	TaxOverridden bool              `json:"tax_overridden" gorm:"not null;default:false"`
	Total         decimal.Decimal   `json:"total" gorm:"type:numeric(12,2);not null"`
	Status        Status            `json:"status" gorm:"type:text;not null"`
	Notes         string            `json:"notes,omitempty" gorm:"type:text"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	SentAt        *time.Time        `json:"sent_at,omitempty"`
	Items         []InvoiceItem     `json:"items" gorm:"foreignKey:InvoiceID"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is a line on an invoice. Total is always derived from Quantity and UnitPrice.
type InvoiceItem struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceID   snowflake.ID    `json:"-" gorm:"not null;index"`
	Position    int             `json:"position" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,4);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
