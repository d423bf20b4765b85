package bootstrap

import (
	"context"
	"time"

	"go.uber.org/fx"

	bootstrap "momentum_bot/internal/modules/bootstrap/service"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

const warmupTimeout = 30 * time.Second

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(o *runner.Orchestrator) bootstrap.Statuser { return o },
			bootstrap.NewWarmuper,
		),
		fx.Invoke(func(lc fx.Lifecycle, wu *bootstrap.Warmuper) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					// старт не блокируем, биржа может тупить
					go func() {
						ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
						defer cancel()
						if err := wu.Warmup(ctx); err != nil {
							logger.Error("[BOOT] warmup error: %v", err)
							return
						}
						logger.Info("[BOOT] warmup done")
					}()
					return nil
				},
			})
		}),
	)
}
