package service

import (
	"context"
	"fmt"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/notify"
	"momentum_bot/internal/strategy"
)

type Statuser interface {
	Status(ctx context.Context) (*models.MarketStatus, error)
}

// Warmuper — пробный прогон при старте: ключи, связь с биржей, хватает ли свечей.
type Warmuper struct {
	st     Statuser
	engine strategy.Engine
	n      notify.Notifier
	cfg    *config.Config
}

func NewWarmuper(st Statuser, engine strategy.Engine, n notify.Notifier, cfg *config.Config) *Warmuper {
	return &Warmuper{
		st:     st,
		engine: engine,
		n:      n,
		cfg:    cfg,
	}
}

// CheckLimit — CANDLE_LIMIT должен покрывать прогрев стратегии, иначе все циклы будут no_signal.
func (w *Warmuper) CheckLimit() error {
	need := w.engine.MinBars()
	if w.cfg.Exchange.CandleLimit < need {
		return fmt.Errorf("CANDLE_LIMIT=%d < %d bars needed by %s", w.cfg.Exchange.CandleLimit, need, w.engine.Name())
	}
	return nil
}

func (w *Warmuper) Warmup(ctx context.Context) error {
	if err := w.CheckLimit(); err != nil {
		w.n.Send("⚠️ warmup: " + err.Error())
		return err
	}

	st, err := w.st.Status(ctx)
	if err != nil {
		w.n.Send("⚠️ warmup finished with error: " + err.Error())
		return fmt.Errorf("warmup status: %w", err)
	}

	rsi := "n/a"
	if st.RSI != nil {
		rsi = fmt.Sprintf("%.2f", *st.RSI)
	}
	w.n.Sendf("✅ %s started: %s %s @ %.4f RSI=%s positions=%d mode=%s",
		w.engine.Name(), st.Symbol, w.cfg.Exchange.Interval, st.Price, rsi, len(st.OpenPositions), w.cfg.Trade.Mode)
	return nil
}
