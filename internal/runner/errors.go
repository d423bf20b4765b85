package runner

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCycleBusy — цикл уже идёт, второй не запускаем.
var ErrCycleBusy = errors.New("cycle already running")

// FetchError — свечи так и не получили за все попытки.
type FetchError struct {
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch klines failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type BalanceQueryError struct {
	Coin string
	Err  error
}

func (e *BalanceQueryError) Error() string {
	return fmt.Sprintf("balance query %s: %v", e.Coin, e.Err)
}

func (e *BalanceQueryError) Unwrap() error { return e.Err }

type PositionQueryError struct {
	Symbol string
	Err    error
}

func (e *PositionQueryError) Error() string {
	return fmt.Sprintf("position query %s: %v", e.Symbol, e.Err)
}

func (e *PositionQueryError) Unwrap() error { return e.Err }

// OrderPlacementError — биржа отказала или не ответила. Повторов нет.
type OrderPlacementError struct {
	Symbol string
	Side   string
	Qty    string
	Err    error
}

func (e *OrderPlacementError) Error() string {
	return fmt.Sprintf("place %s %s qty=%s: %v", e.Side, e.Symbol, e.Qty, e.Err)
}

func (e *OrderPlacementError) Unwrap() error { return e.Err }
