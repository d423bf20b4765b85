package streak

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore — счётчик в локальном файле, для запуска без внешних сервисов.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// один коннект: иначе :memory: у каждого соединения своя
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS loss_streaks (
		key        TEXT PRIMARY KEY,
		streak     INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT streak FROM loss_streaks WHERE key = ?`, key).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select streak: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Record(ctx context.Context, key string, win bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := `INSERT INTO loss_streaks (key, streak, updated_at) VALUES (?, 1, strftime('%s','now'))
		ON CONFLICT(key) DO UPDATE SET streak = streak + 1, updated_at = strftime('%s','now')`
	if win {
		q = `INSERT INTO loss_streaks (key, streak, updated_at) VALUES (?, 0, strftime('%s','now'))
		ON CONFLICT(key) DO UPDATE SET streak = 0, updated_at = strftime('%s','now')`
	}
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return 0, fmt.Errorf("record streak: %w", err)
	}
	return s.Get(ctx, key)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
