package helper

import (
	"strings"
)

// NormInterval приводит таймфрейм к виду Bybit v5: "1m" -> "1", "1h" -> "60", "1d" -> "D".
// Неизвестное возвращается как есть, проверяет ValidInterval.
func NormInterval(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "1m", "1min":
		return "1"
	case "3m":
		return "3"
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "60m", "1h":
		return "60"
	case "2h":
		return "120"
	case "4h":
		return "240"
	case "6h":
		return "360"
	case "12h":
		return "720"
	case "d", "1d":
		return "D"
	case "w", "1w":
		return "W"
	case "m", "1mo":
		return "M"
	default:
		return s
	}
}

var bybitIntervals = map[string]struct{}{
	"1": {}, "3": {}, "5": {}, "15": {}, "30": {}, "60": {}, "120": {}, "240": {},
	"360": {}, "720": {}, "D": {}, "W": {}, "M": {},
}

func ValidInterval(s string) bool {
	_, ok := bybitIntervals[s]
	return ok
}
