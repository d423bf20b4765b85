package runner

import (
	"context"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/pkg/logger"
)

type PositionSource interface {
	OpenPositions(ctx context.Context, symbol string) ([]models.Position, error)
}

// Guard не даёт открыть вторую позицию по тому же символу.
type Guard struct {
	src    PositionSource
	policy string
}

func NewGuard(src PositionSource, policy string) *Guard {
	return &Guard{src: src, policy: policy}
}

// HasOpenPosition: при ошибке запроса решает POSITION_FAIL_POLICY.
// allow — считаем, что позиций нет; block — что есть.
func (g *Guard) HasOpenPosition(ctx context.Context, symbol string) (bool, []models.Position, error) {
	ps, err := g.src.OpenPositions(ctx, symbol)
	if err != nil {
		qerr := &PositionQueryError{Symbol: symbol, Err: err}
		logger.Error("guard: %v (policy=%s)", qerr, g.policy)
		return g.policy == config.PositionFailBlock, nil, qerr
	}
	return len(ps) > 0, ps, nil
}
