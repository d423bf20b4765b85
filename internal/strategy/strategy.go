package strategy

import "momentum_bot/internal/models"

// Evaluation — ответ стратегии на серию свечей.
type Evaluation struct {
	Side    models.Side
	Ready   bool // false — серия короче MinBars
	Price   float64
	Current models.IndicatorSnapshot
	Prev    models.IndicatorSnapshot
	Reason  string
}

// Engine — то, что дергает оркестратор. Состояния между вызовами нет.
type Engine interface {
	Name() models.StrategyType
	MinBars() int
	Evaluate(series models.PriceSeries) Evaluation
}

func ptr(v float64) *float64 { return &v }
