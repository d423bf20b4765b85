package exchange

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"momentum_bot/internal/models"
)

// PlaceMarket — рыночный ордер. Ответ биржи возвращаем как есть.
func (c *Client) PlaceMarket(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error) {
	side := req.Side.OrderSide()
	if side == "" {
		return nil, errors.Errorf("unsupported side %q", req.Side)
	}
	if req.Qty == "" {
		return nil, errors.New("empty qty")
	}
	orderType := req.Type
	if orderType == "" {
		orderType = models.OrderTypeMarket
	}

	body := map[string]string{
		"category":  c.category,
		"symbol":    req.Symbol,
		"side":      side,
		"orderType": orderType,
		"qty":       req.Qty,
	}
	raw, err := c.post(ctx, "/v5/order/create", body)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	var res orderCreateResult
	if err := sonic.Unmarshal(raw, &res); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return &models.OrderResult{
		OrderID:     res.OrderID,
		OrderLinkID: res.OrderLinkID,
		Raw:         append([]byte(nil), raw...),
	}, nil
}
