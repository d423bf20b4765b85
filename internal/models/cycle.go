package models

import "time"

type CycleStatus string

const (
	CycleExecuted CycleStatus = "executed"
	CycleNoSignal CycleStatus = "no_signal"
	CycleSkipped  CycleStatus = "skipped"
	CycleError    CycleStatus = "error"
)

// SimulatedTrade — результат симуляции входа/выхода.
type SimulatedTrade struct {
	Entry float64 `json:"entry"`
	Exit  float64 `json:"exit"`
	Qty   float64 `json:"qty"`
	Gross float64 `json:"gross"`
	Fees  float64 `json:"fees"`
	PnL   float64 `json:"pnl"`
}

// CycleResult — единственный результат одного прогона.
type CycleResult struct {
	Status        CycleStatus     `json:"status"`
	Price         float64         `json:"price"`
	RSI           *float64        `json:"rsi"`
	EMAFast       *float64        `json:"ema_fast,omitempty"`
	EMASlow       *float64        `json:"ema_slow,omitempty"`
	Signal        Side            `json:"signal,omitempty"`
	Qty           string          `json:"qty,omitempty"`
	Order         *OrderResult    `json:"order"`
	Simulation    *SimulatedTrade `json:"simulation,omitempty"`
	PnL           *float64        `json:"pnl,omitempty"`
	LossStreak    int             `json:"loss_streak"`
	Reason        string          `json:"reason,omitempty"`
	Error         string          `json:"error,omitempty"`
	OpenPositions []Position      `json:"open_positions"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}

// MarketStatus — ответ /status, без торговли.
type MarketStatus struct {
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	RSI           *float64   `json:"rsi"`
	EMAFast       *float64   `json:"ema_fast,omitempty"`
	EMASlow       *float64   `json:"ema_slow,omitempty"`
	Signal        Side       `json:"signal"`
	StopLoss      float64    `json:"stop_loss"`
	TakeProfit    float64    `json:"take_profit"`
	OpenPositions []Position `json:"open_positions"`
}
