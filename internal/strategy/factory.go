package strategy

import (
	"strings"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
)

func NewEngine(cfg *config.Config) Engine {
	s := cfg.Strategy
	switch models.StrategyType(strings.ToLower(s.Name)) {
	case models.StrategyEMARSI:
		return NewEMARSI(EMARSIConfig{
			EMAFast:       s.EMAFast,
			EMASlow:       s.EMASlow,
			RSIPeriod:     s.RSIPeriod,
			RSIOverbought: s.RSIOverbought,
			RSIOversold:   s.RSIOversold,
		})

	case models.StrategyRSI, "":
		fallthrough
	default:
		return NewThreshold(ThresholdConfig{
			RSIPeriod: s.RSIPeriod,
			Buy:       s.RSIBuy,
			Sell:      s.RSISell,
		})
	}
}
