// Package domain contains the customer plan subscription model and its lifecycle rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Status is the stored lifecycle state of a customer plan.
type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusPending  Status = "pending"
	StatusCanceled Status = "canceled"
)

// CustomerPlan binds one customer to one catalog plan for [StartDate, EndDate].
type CustomerPlan struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	CustomerID     snowflake.ID      `json:"customer_id" gorm:"not null;index"`
	PlanID         snowflake.ID      `json:"plan_id" gorm:"not null;index"`
	StartDate      time.Time         `json:"start_date" gorm:"not null"`
	EndDate        time.Time         `json:"end_date" gorm:"not null;index"`
	Status         Status            `json:"status" gorm:"type:text;not null"`
	Price          decimal.Decimal   `json:"price" gorm:"type:numeric(12,2);not null"`
	ReminderSent   bool              `json:"reminder_sent" gorm:"not null;default:false"`
	ReminderSentAt *time.Time        `json:"reminder_sent_at,omitempty"`
	CanceledAt     *time.Time        `json:"canceled_at,omitempty"`
	Notes          string            `json:"notes,omitempty" gorm:"type:text"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomerPlan) TableName() string { return "customer_plans" }
