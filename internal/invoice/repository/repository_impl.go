package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	"github.com/smallbiznis/rechargedesk/pkg/db/option"
	"github.com/smallbiznis/rechargedesk/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	return findOne(db.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	stmt := db.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "invoices"}})
	}
	return findOne(stmt, id)
}

func findOne(stmt *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := stmt.Preload("Items", preloadItems).Where("id = ?", id).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{}).Preload("Items", preloadItems)
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SaleID != nil {
		stmt = stmt.Where("sale_id = ?", *filter.SaleID)
	}
	switch filter.Status {
	case "":
	case domain.StatusOverdue:
		stmt = stmt.Where("(status = ? OR (status = ? AND due_date < ?))",
			domain.StatusOverdue, domain.StatusUnpaid, filter.Now)
	case domain.StatusUnpaid:
		stmt = stmt.Where("status = ? AND due_date >= ?", domain.StatusUnpaid, filter.Now)
	default:
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		stmt = stmt.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("date < ?", *filter.To)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)

	var invoices []*domain.Invoice
	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) NextInvoiceNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(invoice_number), 0) + 1 FROM invoices`,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	return tx.Create(&invoice.Items).Error
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"date":           invoice.Date,
			"due_date":       invoice.DueDate,
			"subtotal":       invoice.Subtotal,
			"tax_rate":       invoice.TaxRate,
			"tax":            invoice.Tax,
			"tax_overridden": invoice.TaxOverridden,
			"total":          invoice.Total,
			"updated_at":     invoice.UpdatedAt,
		}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"status":     invoice.Status,
			"paid_at":    invoice.PaidAt,
			"updated_at": invoice.UpdatedAt,
		}).Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{"sent_at": at, "updated_at": at}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
