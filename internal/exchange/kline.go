package exchange

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"momentum_bot/internal/models"
)

// Klines — последние limit свечей, от старой к новой.
// Bybit отдаёт новые первыми, разворачиваем.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("category", c.category)
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	raw, err := c.get(ctx, "/v5/market/kline", q, false)
	if err != nil {
		return nil, errors.Wrap(err, "get kline")
	}
	var res klineResult
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrap(err, "decode kline")
	}

	out := make([]models.Candle, 0, len(res.List))
	for i := len(res.List) - 1; i >= 0; i-- {
		row := res.List[i]
		if len(row) < 6 {
			return nil, errors.Errorf("kline row %d: %d fields", i, len(row))
		}
		c, err := parseKline(row)
		if err != nil {
			return nil, errors.Wrapf(err, "kline row %d", i)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseKline(row []string) (models.Candle, error) {
	ms, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, errors.Wrap(err, "startTime")
	}
	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return models.Candle{}, errors.Wrapf(err, "field %d", i+1)
		}
		vals[i] = v
	}
	return models.Candle{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
