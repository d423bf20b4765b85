package streak

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"momentum_bot/internal/modules/config"
	"momentum_bot/pkg/db"
	"momentum_bot/pkg/logger"
)

// NewStore выбирает бэкенд по LOSS_STREAK_STORE.
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	s := cfg.Store
	switch s.Backend {
	case config.StoreMemory:
		return NewMemoryStore(), nil

	case config.StoreRedis:
		return NewRedisStore(ctx, RedisConfig{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB})

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: s.DSN})
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(ctx, db.NewPgTxManager(pool))

	case config.StoreSQLite:
		if s.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required for sqlite store")
		}
		return NewSQLiteStore(ctx, s.SQLitePath)

	case config.StoreCycle, "":
		return NewCycleStore(), nil
	}
	return nil, fmt.Errorf("unknown loss streak store %q", s.Backend)
}

func Module() fx.Option {
	return fx.Module("streak",
		fx.Provide(
			func(lc fx.Lifecycle, cfg *config.Config) (Store, error) {
				st, err := NewStore(context.Background(), cfg)
				if err != nil {
					return nil, err
				}
				logger.Info("loss streak store: %s", cfg.Store.Backend)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error { return st.Close() },
				})
				return st, nil
			},
		),
	)
}
