package main

import (
	"context"

	"go.uber.org/fx"

	"momentum_bot/internal/exchange"
	"momentum_bot/internal/modules/bootstrap"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/modules/scheduler"
	"momentum_bot/internal/modules/server"
	telegram "momentum_bot/internal/modules/telegram_bot"
	"momentum_bot/internal/notify"
	"momentum_bot/internal/runner"
	"momentum_bot/internal/strategy"
	"momentum_bot/internal/streak"
	"momentum_bot/pkg/logger"
	"momentum_bot/pkg/tracing"
)

const serviceName = "momentum_bot"

func main() {
	logger.SetServiceName(serviceName)
	tracing.SetServiceName(serviceName)

	app := fx.New(
		config.Module(),
		fx.Invoke(initLogger),
		tracing.Module(),
		exchange.Module(),
		strategy.Module(),
		streak.Module(),
		notify.Module(),
		runner.Module(),
		server.Module(),
		scheduler.Module(),
		telegram.Module(),
		bootstrap.Module(),
	)
	app.Run()
}

// initLogger — до остальных Invoke, чтобы дневной лог писался с первого цикла.
func initLogger(lc fx.Lifecycle, cfg *config.Config) error {
	closeFn, err := logger.Init(logger.Config{
		Level: cfg.Service.LogLevel,
		Dir:   cfg.Service.LogDir,
	})
	if err != nil {
		return err
	}
	logger.Info("starting %s: pair=%s interval=%s strategy=%s trade=%s testnet=%v",
		serviceName, cfg.Exchange.Pair, cfg.Exchange.Interval, cfg.Strategy.Name, cfg.Trade.Mode, cfg.Exchange.Testnet)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("shutting down")
			closeFn()
			return nil
		},
	})
	return nil
}
