package runner

import (
	"go.uber.org/fx"

	"momentum_bot/internal/exchange"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(c *exchange.Client) Exchange { return c },
			NewOrchestrator,
		),
	)
}
