package streak

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"momentum_bot/pkg/db"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS loss_streaks (
	key        TEXT PRIMARY KEY,
	streak     INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const pgRecord = `INSERT INTO loss_streaks (key, streak, updated_at)
VALUES ($1, CASE WHEN $2 THEN 0 ELSE 1 END, now())
ON CONFLICT (key) DO UPDATE
SET streak = CASE WHEN $2 THEN 0 ELSE loss_streaks.streak + 1 END,
    updated_at = now()
RETURNING streak`

type PostgresStore struct {
	tx *db.PgTxManager
}

func NewPostgresStore(ctx context.Context, tx *db.PgTxManager) (*PostgresStore, error) {
	if _, err := tx.Conn().Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("migrate loss_streaks: %w", err)
	}
	return &PostgresStore{tx: tx}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (int, error) {
	var n int
	err := p.tx.Conn().QueryRow(ctx, `SELECT streak FROM loss_streaks WHERE key = $1`, key).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select streak: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) Record(ctx context.Context, key string, win bool) (int, error) {
	var n int
	err := p.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		return tx.QueryRow(ctxTx, pgRecord, key, win).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("record streak: %w", err)
	}
	return n, nil
}

func (p *PostgresStore) Close() error {
	p.tx.Close()
	return nil
}
