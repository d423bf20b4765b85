package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"

	"momentum_bot/internal/models"
	"momentum_bot/pkg/logger"
)

type KlineSource interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// Fetcher тянет свечи с фиксированной паузой между попытками.
type Fetcher struct {
	src        KlineSource
	retries    int
	delay      time.Duration
	minCandles int
}

func NewFetcher(src KlineSource, retries int, delay time.Duration, minCandles int) *Fetcher {
	if retries < 1 {
		retries = 1
	}
	return &Fetcher{src: src, retries: retries, delay: delay, minCandles: minCandles}
}

func (f *Fetcher) Fetch(ctx context.Context, symbol, interval string, limit int) (models.PriceSeries, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.fetch")
	defer span.Finish()

	var last error
	for attempt := 1; attempt <= f.retries; attempt++ {
		candles, err := f.src.Klines(ctx, symbol, interval, limit)
		switch {
		case err != nil:
			last = err
		case len(candles) < f.minCandles:
			last = fmt.Errorf("got %d candles, need at least %d", len(candles), f.minCandles)
		default:
			span.SetTag("candles", len(candles))
			return models.PriceSeries{Symbol: symbol, Interval: interval, Candles: candles}, nil
		}

		logger.Warn("fetch %s attempt %d/%d failed: %v", symbol, attempt, f.retries, last)
		if attempt == f.retries {
			break
		}

		t := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			span.SetTag("error", true)
			return models.PriceSeries{}, &FetchError{Attempts: attempt, Err: ctx.Err()}
		case <-t.C:
		}
	}

	span.SetTag("error", true)
	return models.PriceSeries{}, &FetchError{Attempts: f.retries, Err: last}
}
