package strategy

import "math"

// RSI по Уайлдеру. Первые period значений — NaN (прогрев).
// avgLoss == 0 даёт 100, совсем плоская серия (нет ни роста, ни падения) — 50.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		g, l := gainLoss(closes[i] - closes[i-1])
		avgGain += g
		avgLoss += l
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		g, l := gainLoss(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + g) / p
		avgLoss = (avgLoss*(p-1) + l) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

// LastRSI — последнее значение; ok=false если данных меньше period+1.
func LastRSI(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period+1 {
		return 0, false
	}
	r := RSI(closes, period)
	return r[len(r)-1], true
}

func gainLoss(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
