package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan is a catalog offering sold to customers as a subscription.
type Plan struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	Code         string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_plans_code"`
	Name         string            `json:"name" gorm:"type:text;not null"`
	Carrier      string            `json:"carrier,omitempty" gorm:"type:text"`
	Description  string            `json:"description,omitempty" gorm:"type:text"`
	Price        decimal.Decimal   `json:"price" gorm:"type:numeric(12,2);not null"`
	DurationDays int               `json:"duration_days" gorm:"not null"`
	Data         string            `json:"data,omitempty" gorm:"type:text"`
	Calls        string            `json:"calls,omitempty" gorm:"type:text"`
	Texts        string            `json:"texts,omitempty" gorm:"type:text"`
	Active       bool              `json:"active" gorm:"not null;default:true"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "plans" }
