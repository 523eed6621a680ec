// Package domain contains sales and recharge transactions.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

type OrderStatus string

const (
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
	OrderStatusProcessing OrderStatus = "processing"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileWallet PaymentMethod = "mobile_wallet"
	PaymentMethodOther        PaymentMethod = "other"
)

// BusinessType tags a sale as a telecom or travel sub-category.
type BusinessType string

const (
	BusinessTypeTelecomRecharge     BusinessType = "telecom_recharge"
	BusinessTypeTelecomPhone        BusinessType = "telecom_phone"
	BusinessTypeTelecomAccessory    BusinessType = "telecom_accessory"
	BusinessTypeTravelDomestic      BusinessType = "travel_domestic"
	BusinessTypeTravelInternational BusinessType = "travel_international"

	PrefixTelecom = "telecom_"
	PrefixTravel  = "travel_"

	// OtherBusinessType buckets sales that carry no tag.
	OtherBusinessType = "other"
)

func (b BusinessType) IsTravel() bool {
	return strings.HasPrefix(string(b), PrefixTravel)
}

func (b BusinessType) IsTelecom() bool {
	return strings.HasPrefix(string(b), PrefixTelecom)
}

// Bucket returns the tag used when grouping, defaulting to OtherBusinessType.
func (b BusinessType) Bucket() string {
	if strings.TrimSpace(string(b)) == "" {
		return OtherBusinessType
	}
	return string(b)
}

// NormalizePrefix accepts "telecom" and "travel" as shorthands for their prefixes.
// An empty value or "all" disables prefix filtering.
func NormalizePrefix(value string) string {
	prefix := strings.ToLower(strings.TrimSpace(value))
	switch prefix {
	case "", "all":
		return ""
	case "telecom":
		return PrefixTelecom
	case "travel":
		return PrefixTravel
	default:
		return prefix
	}
}

type Sale struct {
	ID            snowflake.ID      `json:"id" gorm:"primaryKey"`
	CustomerID    snowflake.ID      `json:"customer_id" gorm:"not null;index"`
	PlanID        *snowflake.ID     `json:"plan_id,omitempty" gorm:"index"`
	Description   string            `json:"description,omitempty" gorm:"type:text"`
	PhoneNumber   string            `json:"phone_number,omitempty" gorm:"type:text"`
	Carrier       string            `json:"carrier,omitempty" gorm:"type:text"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	AmountPaid    decimal.Decimal   `json:"amount_paid" gorm:"type:numeric(12,2);not null"`
	Date          time.Time         `json:"date" gorm:"not null;index"`
	PaymentMethod PaymentMethod     `json:"payment_method" gorm:"type:text;not null"`
	PaymentStatus PaymentStatus     `json:"payment_status" gorm:"type:text;not null"`
	OrderStatus   OrderStatus       `json:"order_status" gorm:"type:text;not null"`
	BusinessType  BusinessType      `json:"business_type,omitempty" gorm:"type:text;index"`
	Profit        *decimal.Decimal  `json:"profit,omitempty" gorm:"type:numeric(12,2)"`
	CustomerFare  *decimal.Decimal  `json:"customer_fare,omitempty" gorm:"type:numeric(12,2)"`
	OurFare       *decimal.Decimal  `json:"our_fare,omitempty" gorm:"type:numeric(12,2)"`
	Origin        string            `json:"origin,omitempty" gorm:"type:text"`
	Destination   string            `json:"destination,omitempty" gorm:"type:text"`
	DepartureDate *time.Time        `json:"departure_date,omitempty"`
	ReminderSent  bool              `json:"reminder_sent" gorm:"not null;default:false"`
	Metadata      datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Sale) TableName() string { return "sales" }

func (s Sale) IsRecharge() bool {
	return s.BusinessType == BusinessTypeTelecomRecharge
}

// DerivePaymentStatus classifies how much of amount has been collected.
func DerivePaymentStatus(amount, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}
