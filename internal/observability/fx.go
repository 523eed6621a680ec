package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/rechargedesk/internal/config"
	"github.com/smallbiznis/rechargedesk/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideMetricsConfig,
		provideHTTPMetrics,
		metrics.JobsWithConfig,
	),
)

func provideMetricsConfig(cfg config.Config) metrics.Config {
	return metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	}
}

func provideHTTPMetrics(cfg metrics.Config) (*metrics.HTTPMetrics, error) {
	return metrics.NewHTTPMetrics(prometheus.DefaultRegisterer, cfg)
}
