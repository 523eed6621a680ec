package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
)

type CreateRequest struct {
	CustomerID    string           `json:"customer_id"`
	PlanID        string           `json:"plan_id,omitempty"`
	Description   string           `json:"description,omitempty"`
	PhoneNumber   string           `json:"phone_number,omitempty"`
	Carrier       string           `json:"carrier,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	AmountPaid    *decimal.Decimal `json:"amount_paid,omitempty"`
	Date          *time.Time       `json:"date,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	PaymentStatus string           `json:"payment_status,omitempty"`
	OrderStatus   string           `json:"order_status,omitempty"`
	BusinessType  string           `json:"business_type,omitempty"`
	Profit        *decimal.Decimal `json:"profit,omitempty"`
	CustomerFare  *decimal.Decimal `json:"customer_fare,omitempty"`
	OurFare       *decimal.Decimal `json:"our_fare,omitempty"`
	Origin        string           `json:"origin,omitempty"`
	Destination   string           `json:"destination,omitempty"`
	DepartureDate *time.Time       `json:"departure_date,omitempty"`
}

type ListRequest struct {
	CustomerID    string
	BusinessType  string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	PageToken     string
	PageSize      int32
}

type ListResponse struct {
	pagination.PageInfo
	Sales []Sale `json:"sales"`
}

// RechargeReminder is a recharge sale due for a reminder, with its window.
type RechargeReminder struct {
	Sale         Sale   `json:"sale"`
	Window       Window `json:"window"`
	CustomerName string `json:"customer_name"`
}

type Service interface {
	Create(context.Context, CreateRequest) (Sale, error)
	Get(ctx context.Context, id string) (Sale, error)
	List(context.Context, ListRequest) (ListResponse, error)
	// Between returns every sale dated in [from, to), optionally limited to a business type prefix.
	Between(ctx context.Context, from, to time.Time, businessTypePrefix string) ([]Sale, error)
	RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (Sale, error)
	UpdateOrderStatus(ctx context.Context, id string, status string) (Sale, error)
	Delete(ctx context.Context, id string) error

	RechargeWindow(ctx context.Context, id string) (Window, error)
	RechargeReminders(ctx context.Context) ([]RechargeReminder, error)
	// ClaimReminder marks the reminder sent before it is delivered. It fails
	// with ErrReminderAlreadySent when another run got there first.
	ClaimReminder(ctx context.Context, id string) error
	// ReleaseReminder undoes a claim whose delivery failed.
	ReleaseReminder(ctx context.Context, id string) error
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomer      = errors.New("invalid_customer_id")
	ErrInvalidPlan          = errors.New("invalid_plan_id")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidAmountPaid    = errors.New("invalid_amount_paid")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidOrderStatus   = errors.New("invalid_order_status")
	ErrInvalidBusinessType  = errors.New("invalid_business_type")
	ErrInvalidFare          = errors.New("invalid_fare")
	ErrInvalidDateRange     = errors.New("invalid_date_range")
	ErrNotRecharge          = errors.New("not_recharge")
	ErrNotFound             = errors.New("sale_not_found")
	ErrReminderAlreadySent  = errors.New("reminder_already_sent")
)
