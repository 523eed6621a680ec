package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/customer/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/option"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":       customer.Name,
			"phone":      customer.Phone,
			"email":      customer.Email,
			"address":    customer.Address,
			"carrier":    customer.Carrier,
			"notes":      customer.Notes,
			"updated_at": customer.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&domain.CustomerNumber{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Customer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var customers []domain.Customer
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&customers).Error
	return customers, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if filter.Name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Phone != "" {
		stmt = stmt.Where("phone LIKE ?", "%"+filter.Phone+"%")
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if filter.JoinedFrom != nil {
		stmt = stmt.Where("join_date >= ?", *filter.JoinedFrom)
	}
	if filter.JoinedTo != nil {
		stmt = stmt.Where("join_date <= ?", *filter.JoinedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) All(ctx context.Context, db *gorm.DB) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := db.WithContext(ctx).Order("join_date asc, id asc").Find(&customers).Error
	return customers, err
}

func (r *repo) InsertNumber(ctx context.Context, db *gorm.DB, number *domain.CustomerNumber) error {
	return db.WithContext(ctx).Create(number).Error
}

func (r *repo) ListNumbers(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.CustomerNumber, error) {
	var numbers []domain.CustomerNumber
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc, id asc").
		Find(&numbers).Error
	return numbers, err
}

func (r *repo) DeleteNumber(ctx context.Context, db *gorm.DB, customerID, numberID snowflake.ID) error {
	res := db.WithContext(ctx).
		Where("customer_id = ? AND id = ?", customerID, numberID).
		Delete(&domain.CustomerNumber{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
