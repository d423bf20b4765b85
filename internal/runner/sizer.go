package runner

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"momentum_bot/internal/modules/config"
	"momentum_bot/pkg/logger"
)

type BalanceSource interface {
	CoinBalance(ctx context.Context, coin string) (float64, error)
}

// Sizer считает количество для ордера. "0" — не торгуем.
type Sizer struct {
	mode string
	qty  string
	pct  float64
	bal  BalanceSource
}

func NewSizer(cfg *config.Config, bal BalanceSource) *Sizer {
	return &Sizer{
		mode: cfg.Sizing.Mode,
		qty:  cfg.Sizing.Qty,
		pct:  cfg.Sizing.PctBalance,
		bal:  bal,
	}
}

// BaseCoin: BNBUSDT -> BNB.
func BaseCoin(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(symbol), "USDT")
}

// Size возвращает количество строкой для биржи. Ошибка только для журнала:
// количество в этом случае "0".
func (s *Sizer) Size(ctx context.Context, symbol string) (string, error) {
	if s.mode != config.SizingPercent {
		return s.qty, nil
	}

	coin := BaseCoin(symbol)
	bal, err := s.bal.CoinBalance(ctx, coin)
	if err != nil {
		logger.Error("sizer: balance %s: %v", coin, err)
		return "0", &BalanceQueryError{Coin: coin, Err: err}
	}
	if bal <= 0 {
		return "0", nil
	}

	q := decimal.NewFromFloat(bal).Mul(decimal.NewFromFloat(s.pct)).Round(6)
	if !q.IsPositive() {
		return "0", nil
	}
	return q.String(), nil
}

// IsZeroQty — пустое или нулевое количество.
func IsZeroQty(qty string) bool {
	if qty == "" {
		return true
	}
	d, err := decimal.NewFromString(qty)
	if err != nil {
		logger.Error("sizer: bad qty %q: %v", qty, errors.WithStack(err))
		return true
	}
	return !d.IsPositive()
}
