package notify

import (
	"go.uber.org/fx"

	"momentum_bot/internal/modules/config"
	"momentum_bot/pkg/logger"
)

// NewNotifier: если TELEGRAM_* нет — используем stdout.
func NewNotifier(cfg *config.Config) Notifier {
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err == nil {
			return tg
		}
		logger.Error("telegram init failed, fallback to stdout: %v", err)
	}
	return NewStdout()
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(NewNotifier),
	)
}
