package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID *snowflake.ID
	PlanID     *snowflake.ID
	Statuses   []Status
	EndFrom    *time.Time
	EndTo      *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *CustomerPlan) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CustomerPlan, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CustomerPlan, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]CustomerPlan, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, plan *CustomerPlan) error
	SetReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent bool, at time.Time) (bool, error)
}
