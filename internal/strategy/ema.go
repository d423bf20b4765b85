package strategy

// EMA — экспоненциальная средняя, alpha = 2/(span+1), старт с первого значения.
// Значение на индексе i зависит только от closes[0..i].
func EMA(closes []float64, span int) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	if span < 1 {
		span = 1
	}
	alpha := 2.0 / (float64(span) + 1)

	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}
