package runner

import (
	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
)

type SimParams struct {
	NotionalUSDT float64
	Slippage     float64
	Move         float64
	FeeRate      float64
}

func NewSimParams(cfg *config.Config) SimParams {
	return SimParams{
		NotionalUSDT: cfg.Trade.SimNotionalUSDT,
		Slippage:     cfg.Trade.SimSlippage,
		Move:         cfg.Trade.SimMove,
		FeeRate:      cfg.Trade.SimFeeRate,
	}
}

// ExitPrice — выход через один "ход" рынка, проскальзывание всегда против нас.
func ExitPrice(side models.Side, entry float64, p SimParams) float64 {
	switch side {
	case models.SideBuy:
		return entry * (1 + p.Move - p.Slippage)
	case models.SideSell:
		return entry * (1 - p.Move + p.Slippage)
	}
	return entry
}

func Simulate(side models.Side, entry float64, p SimParams) models.SimulatedTrade {
	return SimulateAt(side, entry, ExitPrice(side, entry, p), p)
}

// SimulateAt — PnL сделки на notional с комиссией на обе ноги.
func SimulateAt(side models.Side, entry, exit float64, p SimParams) models.SimulatedTrade {
	qty := p.NotionalUSDT / entry

	var gross float64
	switch side {
	case models.SideBuy:
		gross = (exit - entry) * qty
	case models.SideSell:
		gross = (entry - exit) * qty
	}
	fees := (entry*qty + exit*qty) * p.FeeRate

	return models.SimulatedTrade{
		Entry: entry,
		Exit:  exit,
		Qty:   qty,
		Gross: gross,
		Fees:  fees,
		PnL:   gross - fees,
	}
}
