// Package streak хранит счётчик убыточных сделок подряд.
//
// Бэкенд выбирается конфигом: cycle (сброс каждый цикл, старое поведение),
// memory (пока жив процесс), redis, postgres, sqlite.
package streak

import "context"

type Store interface {
	// Get — текущая серия убытков по ключу.
	Get(ctx context.Context, key string) (int, error)
	// Record — учесть исход сделки: убыток +1, иначе сброс в 0. Возвращает новую серию.
	Record(ctx context.Context, key string, win bool) (int, error)
	Close() error
}

// Key — ключ счётчика для символа.
func Key(symbol string) string { return "loss_streak:" + symbol }

// CycleStore ничего не помнит между циклами.
type CycleStore struct{}

func NewCycleStore() *CycleStore { return &CycleStore{} }

func (CycleStore) Get(context.Context, string) (int, error) { return 0, nil }

func (CycleStore) Record(_ context.Context, _ string, win bool) (int, error) {
	if win {
		return 0, nil
	}
	return 1, nil
}

func (CycleStore) Close() error { return nil }
