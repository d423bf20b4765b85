package telegram

import (
	"context"

	"go.uber.org/fx"

	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/modules/telegram_bot/service"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

// Module — команды в Telegram. Включается TELEGRAM_COMMANDS=true при заданных токене и чате.
func Module() fx.Option {
	return fx.Module("telegram",
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, o *runner.Orchestrator) {
				tc := cfg.Telegram
				if !tc.Commands || tc.Token == "" || tc.ChatID == 0 {
					return
				}
				t, err := service.NewTelegram(tc.Token, tc.ChatID, cfg.Exchange.Pair, cfg.Service.LogDir, o)
				if err != nil {
					logger.Error("telegram commands disabled: %v", err)
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						// контекст хука живёт только на старте
						t.Start(context.Background())
						return nil
					},
					OnStop: func(ctx context.Context) error {
						return t.Stop(ctx)
					},
				})
			},
		),
	)
}
