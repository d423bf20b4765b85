package strategy

import (
	"fmt"

	"momentum_bot/internal/models"
)

type ThresholdConfig struct {
	RSIPeriod int
	Buy       float64 // RSI ниже — BUY
	Sell      float64 // RSI выше — SELL
}

// Threshold — RSI по порогам, без памяти между циклами.
type Threshold struct {
	cfg ThresholdConfig
}

func NewThreshold(cfg ThresholdConfig) *Threshold {
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.Buy == 0 && cfg.Sell == 0 {
		cfg.Buy, cfg.Sell = 30, 70
	}
	return &Threshold{cfg: cfg}
}

func (t *Threshold) Name() models.StrategyType { return models.StrategyRSI }

func (t *Threshold) MinBars() int { return t.cfg.RSIPeriod + 1 }

func (t *Threshold) Evaluate(series models.PriceSeries) Evaluation {
	ev := Evaluation{Side: models.SideNone}
	if last, ok := series.Last(); ok {
		ev.Price = last.Close
	}

	rsi, ok := LastRSI(series.Closes(), t.cfg.RSIPeriod)
	if !ok {
		ev.Reason = fmt.Sprintf("warmup: %d/%d bars", series.Len(), t.MinBars())
		return ev
	}
	ev.Ready = true
	ev.Current.RSI = ptr(rsi)
	ev.Side = t.Decide(rsi)
	if ev.Side != models.SideNone {
		ev.Reason = fmt.Sprintf("RSI=%.2f vs %.0f/%.0f", rsi, t.cfg.Buy, t.cfg.Sell)
	}
	return ev
}

// Decide — чистое правило порогов.
func (t *Threshold) Decide(rsi float64) models.Side {
	switch {
	case rsi < t.cfg.Buy:
		return models.SideBuy
	case rsi > t.cfg.Sell:
		return models.SideSell
	default:
		return models.SideNone
	}
}
