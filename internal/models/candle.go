package models

import "time"

// Candle — свеча, как пришла с биржи.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries — свечи одного символа/таймфрейма, от старой к новой.
type PriceSeries struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

func (p PriceSeries) Len() int { return len(p.Candles) }

func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		out[i] = c.Close
	}
	return out
}

// Last — последняя свеча; ok=false для пустой серии.
func (p PriceSeries) Last() (Candle, bool) {
	if len(p.Candles) == 0 {
		return Candle{}, false
	}
	return p.Candles[len(p.Candles)-1], true
}
