package exchange

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"momentum_bot/internal/models"
)

// OpenPositions вытаскивает позиции по символу и мапит в упрощённую структуру.
// Bybit в one-way режиме отдаёт пустую запись с size=0, такие пропускаем.
func (c *Client) OpenPositions(ctx context.Context, symbol string) ([]models.Position, error) {
	q := url.Values{}
	q.Set("category", c.category)
	q.Set("symbol", symbol)

	raw, err := c.get(ctx, "/v5/position/list", q, true)
	if err != nil {
		return nil, errors.Wrap(err, "get positions")
	}
	var res positionListResult
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrap(err, "decode positions")
	}

	out := make([]models.Position, 0, len(res.List))
	for _, p := range res.List {
		size, _ := strconv.ParseFloat(p.Size, 64)
		if size == 0 {
			continue
		}
		pos := models.Position{Symbol: p.Symbol, Side: p.Side, Size: size}
		if avg, err := strconv.ParseFloat(p.AvgPrice, 64); err == nil && avg > 0 {
			pos.EntryPrice = &avg
		}
		out = append(out, pos)
	}
	return out, nil
}
