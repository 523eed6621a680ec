package logger

import (
	"context"

	"github.com/smallbiznis/rechargedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("logger",
	fx.Provide(NewFromConfig),
	fx.Invoke(syncOnStop),
)

func NewFromConfig(cfg config.Config) (*zap.Logger, error) {
	return New(Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     cfg.AppName,
		Version:     cfg.AppVersion,
		Environment: cfg.Environment,
	})
}

func syncOnStop(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stdout/stderr return EINVAL on Sync under some platforms.
			_ = log.Sync()
			return nil
		},
	})
}
