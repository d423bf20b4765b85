package tracing

import (
	"context"

	"go.uber.org/fx"

	"momentum_bot/internal/modules/config"
	"momentum_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeFn, err := InitTracer(Config{Host: cfg.Tracing.Host, Port: cfg.Tracing.Port})
			if err != nil {
				return err
			}
			if cfg.Tracing.Host != "" {
				logger.Info("jaeger tracer -> %s:%d", cfg.Tracing.Host, cfg.Tracing.Port)
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeFn()
					return nil
				},
			})
			return nil
		}),
	)
}
