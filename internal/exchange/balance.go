package exchange

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// CoinBalance — доступный баланс монеты на unified-аккаунте.
// availableToWithdraw у UTA бывает пустым, тогда walletBalance - locked.
func (c *Client) CoinBalance(ctx context.Context, coin string) (float64, error) {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return 0, errors.New("empty coin")
	}

	q := url.Values{}
	q.Set("accountType", "UNIFIED")
	q.Set("coin", coin)

	raw, err := c.get(ctx, "/v5/account/wallet-balance", q, true)
	if err != nil {
		return 0, errors.Wrap(err, "get wallet balance")
	}
	var res walletBalanceResult
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return 0, errors.Wrap(err, "decode wallet balance")
	}

	for _, acc := range res.List {
		for _, cb := range acc.Coin {
			if !strings.EqualFold(cb.Coin, coin) {
				continue
			}
			if cb.AvailableToWithdraw != "" {
				return strconv.ParseFloat(cb.AvailableToWithdraw, 64)
			}
			wallet, err := strconv.ParseFloat(cb.WalletBalance, 64)
			if err != nil {
				return 0, errors.Wrap(err, "walletBalance")
			}
			locked, _ := strconv.ParseFloat(cb.Locked, 64)
			return wallet - locked, nil
		}
	}
	return 0, errors.Errorf("coin %s not found in wallet", coin)
}
