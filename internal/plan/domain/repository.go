package domain

import "github.com/smallbiznis/rechargedesk/pkg/repository"

type Repository = repository.Repository[Plan]
