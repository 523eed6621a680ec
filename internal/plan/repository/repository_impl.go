package repository

import (
	"github.com/smallbiznis/rechargedesk/internal/plan/domain"
	"github.com/smallbiznis/rechargedesk/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) domain.Repository {
	return repository.ProvideStore[domain.Plan](db)
}
