package models

type StrategyType string

const (
	StrategyRSI    StrategyType = "rsi"
	StrategyEMARSI StrategyType = "emarsi"
)

// Side — дискретный сигнал стратегии.
type Side string

const (
	SideNone Side = "NO_SIGNAL"
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Journal — как сигнал пишется в дневной лог (señal=buy|sell|no_signal).
func (s Side) Journal() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "no_signal"
	}
}

// OrderSide — сторона ордера в терминах Bybit.
func (s Side) OrderSide() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return ""
	}
}

// IndicatorSnapshot — значения индикаторов на одном баре. nil пока не прогрелись.
type IndicatorSnapshot struct {
	EMAFast *float64 `json:"ema_fast,omitempty"`
	EMASlow *float64 `json:"ema_slow,omitempty"`
	RSI     *float64 `json:"rsi,omitempty"`
}
