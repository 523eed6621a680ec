package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken  string
	PageSize   int32
	Name       string
	Phone      string
	Email      string
	JoinedFrom *time.Time
	JoinedTo   *time.Time
}

type ListCustomerFilter struct {
	Name       string
	Phone      string
	Email      string
	JoinedFrom *time.Time
	JoinedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Carrier  string
	Notes    string
	JoinDate *time.Time
}

type UpdateCustomerRequest struct {
	ID      string
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Carrier *string
	Notes   *string
}

type AddNumberRequest struct {
	CustomerID string
	Phone      string
	Carrier    string
	Label      string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	All(ctx context.Context) ([]Customer, error)

	AddNumber(context.Context, AddNumberRequest) (CustomerNumber, error)
	ListNumbers(ctx context.Context, customerID string) ([]CustomerNumber, error)
	RemoveNumber(ctx context.Context, customerID, numberID string) error
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPhone = errors.New("invalid_phone")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("customer_not_found")
)
