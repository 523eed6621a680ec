package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Plan, error)
	Get(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, req ListRequest) ([]Plan, error)
	Update(ctx context.Context, req UpdateRequest) (*Plan, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	Carrier         string
	IncludeInactive bool
}

type CreateRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Carrier      string          `json:"carrier"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
	Data         string          `json:"data"`
	Calls        string          `json:"calls"`
	Texts        string          `json:"texts"`
}

type UpdateRequest struct {
	ID           string           `json:"-"`
	Name         *string          `json:"name"`
	Carrier      *string          `json:"carrier"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	DurationDays *int             `json:"duration_days"`
	Data         *string          `json:"data"`
	Calls        *string          `json:"calls"`
	Texts        *string          `json:"texts"`
	Active       *bool            `json:"active"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidDuration = errors.New("invalid_duration_days")
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrNotFound        = errors.New("plan_not_found")
)
