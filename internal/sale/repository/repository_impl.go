package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/sale/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/option"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	return findOne(db.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	stmt := db.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return findOne(stmt, id)
}

func findOne(stmt *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	if err := stmt.Where("id = ?", id).First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	stmt := option.ApplyPagination(page).Apply(applyFilter(db.WithContext(ctx).Model(&domain.Sale{}), filter))
	if err := stmt.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Sale, error) {
	var sales []domain.Sale
	stmt := applyFilter(db.WithContext(ctx).Model(&domain.Sale{}), filter).Order("date asc, id asc")
	if err := stmt.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BusinessTypePrefix != "" {
		stmt = stmt.Where("business_type LIKE ?", filter.BusinessTypePrefix+"%")
	}
	if filter.PaymentStatus != "" {
		stmt = stmt.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.From != nil {
		stmt = stmt.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("date < ?", *filter.To)
	}
	if filter.RechargesOnly {
		stmt = stmt.Where("business_type = ?", domain.BusinessTypeTelecomRecharge)
	}
	if filter.ReminderPending {
		stmt = stmt.Where("reminder_sent = ?", false)
	}
	return stmt
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"amount_paid":    sale.AmountPaid,
			"payment_status": sale.PaymentStatus,
			"updated_at":     sale.UpdatedAt,
		}).Error
}

func (r *repo) UpdateOrderStatus(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]any{
			"order_status": sale.OrderStatus,
			"updated_at":   sale.UpdatedAt,
		}).Error
}

// SetReminderSent flips reminder_sent only when it currently holds the
// opposite value and reports whether this call changed the row.
func (r *repo) SetReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent bool, at time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ? AND reminder_sent = ?", id, !sent).
		Updates(map[string]any{
			"reminder_sent": sent,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
