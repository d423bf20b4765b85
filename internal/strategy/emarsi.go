package strategy

import (
	"fmt"

	"momentum_bot/internal/models"
)

type EMARSIConfig struct {
	EMAFast       int
	EMASlow       int
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
}

// EMARSI — пересечение EMA(fast)/EMA(slow) с фильтром по RSI.
// Смотрит на два последних бара, между вызовами ничего не хранит.
type EMARSI struct {
	cfg EMARSIConfig
}

func NewEMARSI(cfg EMARSIConfig) *EMARSI {
	if cfg.EMAFast <= 0 {
		cfg.EMAFast = 9
	}
	if cfg.EMASlow <= 0 {
		cfg.EMASlow = 21
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	if cfg.RSIOverbought == 0 && cfg.RSIOversold == 0 {
		cfg.RSIOverbought, cfg.RSIOversold = 70, 30
	}
	return &EMARSI{cfg: cfg}
}

func (e *EMARSI) Name() models.StrategyType { return models.StrategyEMARSI }

// MinBars — max(slow, rsi) + 2: нужен предыдущий бар для пересечения.
func (e *EMARSI) MinBars() int {
	n := e.cfg.EMASlow
	if e.cfg.RSIPeriod > n {
		n = e.cfg.RSIPeriod
	}
	return n + 2
}

func (e *EMARSI) Evaluate(series models.PriceSeries) Evaluation {
	ev := Evaluation{Side: models.SideNone}
	if last, ok := series.Last(); ok {
		ev.Price = last.Close
	}
	if series.Len() < e.MinBars() {
		ev.Reason = fmt.Sprintf("warmup: %d/%d bars", series.Len(), e.MinBars())
		return ev
	}

	closes := series.Closes()
	fast := EMA(closes, e.cfg.EMAFast)
	slow := EMA(closes, e.cfg.EMASlow)
	rsi := RSI(closes, e.cfg.RSIPeriod)

	cur, prev := len(closes)-1, len(closes)-2
	ev.Ready = true
	ev.Current = models.IndicatorSnapshot{EMAFast: ptr(fast[cur]), EMASlow: ptr(slow[cur]), RSI: ptr(rsi[cur])}
	ev.Prev = models.IndicatorSnapshot{EMAFast: ptr(fast[prev]), EMASlow: ptr(slow[prev]), RSI: ptr(rsi[prev])}

	ev.Side = e.Decide(fast[prev], slow[prev], fast[cur], slow[cur], rsi[cur])
	switch ev.Side {
	case models.SideBuy:
		ev.Reason = fmt.Sprintf("EMA%d crossed above EMA%d, RSI=%.2f", e.cfg.EMAFast, e.cfg.EMASlow, rsi[cur])
	case models.SideSell:
		ev.Reason = fmt.Sprintf("EMA%d crossed below EMA%d, RSI=%.2f", e.cfg.EMAFast, e.cfg.EMASlow, rsi[cur])
	}
	return ev
}

// Decide — правило пересечения по предыдущему и текущему бару.
func (e *EMARSI) Decide(prevFast, prevSlow, fast, slow, rsi float64) models.Side {
	crossedUp := prevFast <= prevSlow && fast > slow
	crossedDown := prevFast >= prevSlow && fast < slow

	switch {
	case crossedUp && rsi < e.cfg.RSIOverbought:
		return models.SideBuy
	case crossedDown && rsi > e.cfg.RSIOversold:
		return models.SideSell
	default:
		return models.SideNone
	}
}
