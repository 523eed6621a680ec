package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
)

type ItemRequest struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateRequest struct {
	CustomerID string        `json:"customer_id"`
	SaleID     string        `json:"sale_id,omitempty"`
	Date       *time.Time    `json:"date,omitempty"`
	DueDate    *time.Time    `json:"due_date,omitempty"`
	Items      []ItemRequest `json:"items"`
	Notes      string        `json:"notes,omitempty"`
}

type UpdateDatesRequest struct {
	Date    *time.Time `json:"date,omitempty"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type ListRequest struct {
	CustomerID string
	Status     string
	From       *time.Time
	To         *time.Time
	PageToken  string
	PageSize   int32
}

// Response is a stored invoice with its derived display status.
type Response struct {
	Invoice
	DisplayStatus Status `json:"display_status"`
	CustomerName  string `json:"customer_name"`
}

type ListResponse struct {
	pagination.PageInfo
	Invoices []Response `json:"invoices"`
}

// Document is a rendered invoice file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service interface {
	Create(context.Context, CreateRequest) (Response, error)
	CreateFromSale(ctx context.Context, saleID string) (Response, error)
	Get(ctx context.Context, id string) (Response, error)
	List(context.Context, ListRequest) (ListResponse, error)
	UpdateItems(ctx context.Context, id string, items []ItemRequest) (Response, error)
	UpdateDates(ctx context.Context, id string, req UpdateDatesRequest) (Response, error)
	SetStatus(ctx context.Context, id string, status string) (Response, error)
	OverrideTax(ctx context.Context, id string, tax decimal.Decimal) (Response, error)
	Delete(ctx context.Context, id string) error

	RenderPDF(ctx context.Context, id string) (Document, error)
	Send(ctx context.Context, id string) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer_id")
	ErrInvalidSale     = errors.New("invalid_sale_id")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvoicePaid     = errors.New("invoice_paid")
	ErrMissingEmail    = errors.New("missing_customer_email")
	ErrNotFound        = errors.New("invoice_not_found")
)
