package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, plan *domain.CustomerPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CustomerPlan, error) {
	return r.findByID(db.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CustomerPlan, error) {
	stmt := db.WithContext(ctx)
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findByID(stmt, id)
}

func (r *repo) findByID(stmt *gorm.DB, id snowflake.ID) (*domain.CustomerPlan, error) {
	var plan domain.CustomerPlan
	err := stmt.Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.CustomerPlan, error) {
	stmt := db.WithContext(ctx).Model(&domain.CustomerPlan{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PlanID != nil {
		stmt = stmt.Where("plan_id = ?", *filter.PlanID)
	}
	if len(filter.Statuses) > 0 {
		stmt = stmt.Where("status IN ?", filter.Statuses)
	}
	if filter.EndFrom != nil {
		stmt = stmt.Where("end_date >= ?", *filter.EndFrom)
	}
	if filter.EndTo != nil {
		stmt = stmt.Where("end_date <= ?", *filter.EndTo)
	}

	var plans []domain.CustomerPlan
	if err := stmt.Order("end_date asc, id asc").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, plan *domain.CustomerPlan) error {
	return db.WithContext(ctx).
		Model(&domain.CustomerPlan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]any{
			"status":      plan.Status,
			"canceled_at": plan.CanceledAt,
			"updated_at":  plan.UpdatedAt,
		}).Error
}

// SetReminderSent flips reminder_sent only when it currently holds the
// opposite value and reports whether this call changed the row.
func (r *repo) SetReminderSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sent bool, at time.Time) (bool, error) {
	var sentAt *time.Time
	if sent {
		sentAt = &at
	}
	res := db.WithContext(ctx).
		Model(&domain.CustomerPlan{}).
		Where("id = ? AND reminder_sent = ?", id, !sent).
		Updates(map[string]any{
			"reminder_sent":    sent,
			"reminder_sent_at": sentAt,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
