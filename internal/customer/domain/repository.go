package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
	All(ctx context.Context, db *gorm.DB) ([]Customer, error)

	InsertNumber(ctx context.Context, db *gorm.DB, number *CustomerNumber) error
	ListNumbers(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]CustomerNumber, error)
	DeleteNumber(ctx context.Context, db *gorm.DB, customerID, numberID snowflake.ID) error
}
