// Package bootstrap groups the infrastructure every rechargedesk binary needs.
package bootstrap

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargedesk/internal/cache"
	"github.com/smallbiznis/rechargedesk/internal/clock"
	"github.com/smallbiznis/rechargedesk/internal/config"
	"github.com/smallbiznis/rechargedesk/internal/customer"
	"github.com/smallbiznis/rechargedesk/internal/logger"
	"github.com/smallbiznis/rechargedesk/internal/migration"
	"github.com/smallbiznis/rechargedesk/internal/observability"
	"github.com/smallbiznis/rechargedesk/internal/plan"
	"github.com/smallbiznis/rechargedesk/internal/providers"
	"github.com/smallbiznis/rechargedesk/internal/sale"
	"github.com/smallbiznis/rechargedesk/internal/subscription"
	"github.com/smallbiznis/rechargedesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Core wires config, logging, storage and the shared domain services.
var Core = fx.Options(
	config.Module,
	logger.Module,
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}),
	observability.Module,
	fx.Provide(RegisterSnowflake),
	db.Module,
	migration.Module,
	clock.Module,
	cache.Module,
	providers.Module,

	customer.Module,
	plan.Module,
	subscription.Module,
	sale.Module,
)

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
