package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID         *snowflake.ID
	BusinessTypePrefix string
	PaymentStatus      PaymentStatus
	From               *time.Time
	// To is exclusive.
	To              *time.Time
	RechargesOnly   bool
	ReminderPending bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Sale, error)
	FindAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Sale, error)
	UpdatePayment(ctx context.Context, db *gorm.DB, sale *Sale) error
	UpdateOrderStatus(ctx context.Context, db *gorm.DB, sale *Sale) error
	SetReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent bool, at time.Time) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
