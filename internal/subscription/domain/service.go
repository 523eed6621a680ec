package domain

import (
	"context"
	"errors"
	"time"
)

type SubscribeRequest struct {
	CustomerID string     `json:"customer_id"`
	PlanID     string     `json:"plan_id"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

type ListRequest struct {
	CustomerID string
	PlanID     string
	Status     string
}

// Record is a stored customer plan together with its read-time classification.
type Record struct {
	CustomerPlan
	Classification Classification `json:"classification"`
	CustomerName   string         `json:"customer_name"`
	PlanName       string         `json:"plan_name"`
}

type Service interface {
	Subscribe(context.Context, SubscribeRequest) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(context.Context, ListRequest) ([]Record, error)
	Activate(ctx context.Context, id string) (Record, error)
	Cancel(ctx context.Context, id string) (Record, error)
	// ClaimReminder marks the reminder sent before it is delivered. It fails
	// with ErrReminderAlreadySent when another run got there first.
	ClaimReminder(ctx context.Context, id string) error
	// ReleaseReminder undoes a claim whose delivery failed.
	ReleaseReminder(ctx context.Context, id string) error
	ExpiringSoon(ctx context.Context) ([]Record, error)
	ReminderCandidates(ctx context.Context) ([]Record, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCustomer     = errors.New("invalid_customer_id")
	ErrInvalidPlan         = errors.New("invalid_plan_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrNotFound            = errors.New("subscription_not_found")
	ErrReminderAlreadySent = errors.New("reminder_already_sent")
)
