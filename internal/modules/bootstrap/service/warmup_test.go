package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/strategy"
)

type stubStatus struct {
	st  *models.MarketStatus
	err error
}

func (s stubStatus) Status(context.Context) (*models.MarketStatus, error) { return s.st, s.err }

type recNotifier struct{ msgs []string }

func (r *recNotifier) Send(msg string)                  { r.msgs = append(r.msgs, msg) }
func (r *recNotifier) Sendf(format string, args ...any) { r.Send(format) }

func TestWarmup(t *testing.T) {
	cfg := config.Default()
	rsi := 48.0

	n := &recNotifier{}
	wu := NewWarmuper(stubStatus{st: &models.MarketStatus{Symbol: "BNBUSDT", Price: 600, RSI: &rsi}}, strategy.NewEngine(&cfg), n, &cfg)
	if err := wu.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}
	if len(n.msgs) != 1 || !strings.HasPrefix(n.msgs[0], "✅") {
		t.Fatalf("msgs = %v", n.msgs)
	}

	n = &recNotifier{}
	wu = NewWarmuper(stubStatus{err: errors.New("401 invalid key")}, strategy.NewEngine(&cfg), n, &cfg)
	if err := wu.Warmup(context.Background()); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Strategy.Name = "emarsi"
	cfg.Exchange.CandleLimit = 20 // emarsi 9/21/14 хочет 23

	wu := NewWarmuper(stubStatus{}, strategy.NewEngine(&cfg), &recNotifier{}, &cfg)
	if err := wu.CheckLimit(); err == nil || !strings.Contains(err.Error(), "23") {
		t.Fatalf("err = %v", err)
	}

	cfg.Exchange.CandleLimit = 100
	if err := wu.CheckLimit(); err != nil {
		t.Fatalf("err = %v", err)
	}
}
