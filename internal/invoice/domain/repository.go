package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter selects invoices. Status matches the display status, so unpaid
// and overdue are split at Now by due date.
type ListFilter struct {
	CustomerID *snowflake.ID
	SaleID     *snowflake.ID
	Status     Status
	Now        time.Time
	From       *time.Time
	To         *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)
	NextInvoiceNumber(ctx context.Context, db *gorm.DB) (int64, error)
	ReplaceItems(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	UpdateTotals(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	UpdateStatus(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
