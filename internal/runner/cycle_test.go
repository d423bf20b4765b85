package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"momentum_bot/internal/journal"
	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/strategy"
	"momentum_bot/internal/streak"
)

type stubExchange struct {
	mu sync.Mutex

	closes    []float64
	klineErrs []error // ошибки по номерам попыток, nil — отдать свечи
	klineHook func()
	panicOn   bool

	balance    float64
	balanceErr error

	positions []models.Position
	posErr    error

	orderErr error
	orders   []models.OrderRequest

	klineCalls int
}

func (s *stubExchange) Klines(_ context.Context, _, _ string, _ int) ([]models.Candle, error) {
	if s.klineHook != nil {
		s.klineHook()
	}
	if s.panicOn {
		panic("kaboom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	call := s.klineCalls
	s.klineCalls++
	if call < len(s.klineErrs) && s.klineErrs[call] != nil {
		return nil, s.klineErrs[call]
	}
	return candles(s.closes), nil
}

func (s *stubExchange) CoinBalance(context.Context, string) (float64, error) {
	return s.balance, s.balanceErr
}

func (s *stubExchange) OpenPositions(context.Context, string) ([]models.Position, error) {
	return s.positions, s.posErr
}

func (s *stubExchange) PlaceMarket(_ context.Context, req models.OrderRequest) (*models.OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	s.orders = append(s.orders, req)
	return &models.OrderResult{OrderID: fmt.Sprintf("ord-%d", len(s.orders))}, nil
}

type nopNotifier struct{}

func (nopNotifier) Send(string)          {}
func (nopNotifier) Sendf(string, ...any) {}

func candles(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return out
}

func series(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

var (
	flatCloses    = series(100, 100, 0)
	fallingCloses = series(100, 300, -1) // RSI=0 -> BUY
	risingCloses  = series(100, 200, 1)  // RSI=100 -> SELL
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Fetch.RetryDelay = time.Millisecond
	return &cfg
}

func newTestOrchestrator(cfg *config.Config, ex *stubExchange, st streak.Store) *Orchestrator {
	if st == nil {
		st = streak.NewCycleStore()
	}
	return NewOrchestrator(cfg, ex, strategy.NewEngine(cfg), st, nopNotifier{})
}

func TestRun_FlatSeriesNoSignal(t *testing.T) {
	ex := &stubExchange{closes: flatCloses}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != models.CycleNoSignal {
		t.Fatalf("status = %s, want no_signal", res.Status)
	}
	if len(ex.orders) != 0 {
		t.Fatalf("orders placed: %v", ex.orders)
	}
	if res.RSI == nil || *res.RSI != 50 {
		t.Fatalf("rsi = %v, want 50", res.RSI)
	}
	if !strings.Contains(JournalLine(res), "señal=no_signal") {
		t.Fatalf("journal line: %s", JournalLine(res))
	}
	if o.Last() != res {
		t.Fatal("Last() must return the finished cycle")
	}
}

func TestRun_BuyPlacesMarketOrder(t *testing.T) {
	ex := &stubExchange{closes: fallingCloses}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleExecuted {
		t.Fatalf("status = %s (%s %s)", res.Status, res.Reason, res.Error)
	}
	if len(ex.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(ex.orders))
	}
	got := ex.orders[0]
	if got.Side != models.SideBuy || got.Qty != "0.1" || got.Type != models.OrderTypeMarket || got.Symbol != "BNBUSDT" {
		t.Fatalf("order = %+v", got)
	}
	if res.Order == nil || res.Order.OrderID != "ord-1" {
		t.Fatalf("order result = %+v", res.Order)
	}
	line := JournalLine(res)
	if !strings.Contains(line, "señal=buy") || !strings.Contains(line, "orden=ord-1") || !strings.Contains(line, "RSI=0.00") {
		t.Fatalf("journal line: %s", line)
	}
}

func TestRun_ShortSeriesNoSignalWithNullIndicators(t *testing.T) {
	ex := &stubExchange{closes: series(12, 100, -1)}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleNoSignal || res.RSI != nil {
		t.Fatalf("status=%s rsi=%v", res.Status, res.RSI)
	}
	if len(ex.orders) != 0 {
		t.Fatal("no order expected")
	}
}

func TestRun_OpenPositionBlocksEntry(t *testing.T) {
	ex := &stubExchange{
		closes:    fallingCloses,
		positions: []models.Position{{Symbol: "BNBUSDT", Side: "Buy", Size: 0.1}},
	}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleSkipped {
		t.Fatalf("status = %s", res.Status)
	}
	if len(ex.orders) != 0 {
		t.Fatal("order placed despite open position")
	}
	if len(res.OpenPositions) != 1 {
		t.Fatalf("open positions = %v", res.OpenPositions)
	}
}

func TestRun_PositionQueryFailPolicy(t *testing.T) {
	tests := []struct {
		policy string
		want   models.CycleStatus
		orders int
	}{
		{config.PositionFailAllow, models.CycleExecuted, 1},
		{config.PositionFailBlock, models.CycleSkipped, 0},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := testConfig()
			cfg.Risk.PositionFailPolicy = tt.policy
			ex := &stubExchange{closes: fallingCloses, posErr: errors.New("category not supported")}
			o := newTestOrchestrator(cfg, ex, nil)

			res, _ := o.Run(context.Background())
			if res.Status != tt.want {
				t.Fatalf("status = %s, want %s", res.Status, tt.want)
			}
			if len(ex.orders) != tt.orders {
				t.Fatalf("orders = %d, want %d", len(ex.orders), tt.orders)
			}
		})
	}
}

func TestRun_FetchRetriesThenSucceeds(t *testing.T) {
	cfg := testConfig()
	cfg.Fetch.Retries = 3
	ex := &stubExchange{
		closes:    flatCloses,
		klineErrs: []error{errors.New("timeout 1"), errors.New("timeout 2")},
	}
	o := newTestOrchestrator(cfg, ex, nil)

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleNoSignal {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}
	if ex.klineCalls != 3 {
		t.Fatalf("kline calls = %d, want 3", ex.klineCalls)
	}
}

func TestFetch_ExhaustedKeepsLastCause(t *testing.T) {
	ex := &stubExchange{
		klineErrs: []error{errors.New("boom 1"), errors.New("boom 2"), errors.New("boom 3")},
	}
	f := NewFetcher(ex, 3, time.Millisecond, 10)

	_, err := f.Fetch(context.Background(), "BNBUSDT", "1", 100)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want *FetchError, got %T %v", err, err)
	}
	if fe.Attempts != 3 || fe.Err.Error() != "boom 3" {
		t.Fatalf("fetch error = %+v", fe)
	}
	if ex.klineCalls != 3 {
		t.Fatalf("kline calls = %d", ex.klineCalls)
	}
}

func TestFetch_TooFewCandlesIsAFailedAttempt(t *testing.T) {
	ex := &stubExchange{closes: series(5, 100, 0)}
	f := NewFetcher(ex, 2, time.Millisecond, 10)

	_, err := f.Fetch(context.Background(), "BNBUSDT", "1", 100)
	var fe *FetchError
	if !errors.As(err, &fe) || !strings.Contains(fe.Err.Error(), "got 5 candles") {
		t.Fatalf("err = %v", err)
	}
}

func TestFetch_DelayHonoursContext(t *testing.T) {
	ex := &stubExchange{klineErrs: []error{errors.New("down"), errors.New("down")}}
	f := NewFetcher(ex, 2, time.Hour, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, "BNBUSDT", "1", 100)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("fetch ignored context cancellation")
	}
}

func TestRun_FetchFailureIsCycleError(t *testing.T) {
	cfg := testConfig()
	cfg.Fetch.Retries = 2
	ex := &stubExchange{klineErrs: []error{errors.New("a"), errors.New("bybit down")}}
	o := newTestOrchestrator(cfg, ex, nil)

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Status != models.CycleError || !strings.Contains(res.Error, "bybit down") {
		t.Fatalf("result = %+v", res)
	}
}

func TestRun_OrderFailureIsCycleError(t *testing.T) {
	ex := &stubExchange{closes: risingCloses, orderErr: errors.New("insufficient balance")}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleError {
		t.Fatalf("status = %s", res.Status)
	}
	if !strings.Contains(res.Error, "Sell") || !strings.Contains(res.Error, "insufficient balance") {
		t.Fatalf("error = %q", res.Error)
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	ex := &stubExchange{panicOn: true}
	o := newTestOrchestrator(testConfig(), ex, nil)

	res, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != models.CycleError || !strings.Contains(res.Error, "kaboom") {
		t.Fatalf("result = %+v", res)
	}
	// мьютекс отпущен
	ex.panicOn = false
	ex.closes = flatCloses
	if _, err := o.Run(context.Background()); err != nil {
		t.Fatalf("second Run: %v", err)
	}
}

func TestRun_BusyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	ex := &stubExchange{closes: flatCloses}
	ex.klineHook = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	o := newTestOrchestrator(testConfig(), ex, nil)

	done := make(chan *models.CycleResult)
	go func() {
		res, _ := o.Run(context.Background())
		done <- res
	}()

	<-entered
	if _, err := o.Run(context.Background()); !errors.Is(err, ErrCycleBusy) {
		t.Fatalf("second Run err = %v, want ErrCycleBusy", err)
	}
	close(release)

	if res := <-done; res.Status != models.CycleNoSignal {
		t.Fatalf("first Run status = %s", res.Status)
	}
}

func TestRun_PercentSizer(t *testing.T) {
	cfg := testConfig()
	cfg.Sizing.Mode = config.SizingPercent
	cfg.Sizing.PctBalance = 0.01

	t.Run("balance", func(t *testing.T) {
		ex := &stubExchange{closes: fallingCloses, balance: 12.3456789}
		res, _ := newTestOrchestrator(cfg, ex, nil).Run(context.Background())
		if res.Status != models.CycleExecuted || ex.orders[0].Qty != "0.123457" {
			t.Fatalf("status=%s orders=%v", res.Status, ex.orders)
		}
	})

	t.Run("balance error means zero qty", func(t *testing.T) {
		ex := &stubExchange{closes: fallingCloses, balanceErr: errors.New("401")}
		res, _ := newTestOrchestrator(cfg, ex, nil).Run(context.Background())
		if res.Status != models.CycleSkipped || len(ex.orders) != 0 {
			t.Fatalf("status=%s orders=%v", res.Status, ex.orders)
		}
		if !strings.Contains(res.Reason, "balance query BNB") {
			t.Fatalf("reason = %q", res.Reason)
		}
	})

	t.Run("zero balance", func(t *testing.T) {
		ex := &stubExchange{closes: fallingCloses}
		res, _ := newTestOrchestrator(cfg, ex, nil).Run(context.Background())
		if res.Status != models.CycleSkipped || res.Qty != "0" {
			t.Fatalf("status=%s qty=%s", res.Status, res.Qty)
		}
	})
}

func TestRun_SimulateModeAndLossStreak(t *testing.T) {
	cfg := testConfig()
	cfg.Trade.Mode = config.TradeSimulate
	cfg.Trade.SimMove = 0 // выход хуже входа на проскальзывание, всегда убыток
	cfg.Risk.MaxLossStreak = 2

	ex := &stubExchange{closes: fallingCloses}
	o := newTestOrchestrator(cfg, ex, streak.NewMemoryStore())

	for i := 1; i <= 2; i++ {
		res, _ := o.Run(context.Background())
		if res.Status != models.CycleExecuted {
			t.Fatalf("run %d: status = %s (%s)", i, res.Status, res.Reason)
		}
		if res.PnL == nil || *res.PnL >= 0 {
			t.Fatalf("run %d: pnl = %v, want negative", i, res.PnL)
		}
		if res.LossStreak != i {
			t.Fatalf("run %d: streak = %d", i, res.LossStreak)
		}
		if !strings.Contains(JournalLine(res), "orden=simulada") {
			t.Fatalf("journal: %s", JournalLine(res))
		}
	}

	res, _ := o.Run(context.Background())
	if res.Status != models.CycleSkipped || res.LossStreak != 2 {
		t.Fatalf("third run: status=%s streak=%d", res.Status, res.LossStreak)
	}
	if len(ex.orders) != 0 {
		t.Fatal("simulate mode must not place orders")
	}
}

func TestSimulate(t *testing.T) {
	p := SimParams{NotionalUSDT: 100, Slippage: 0.0005, Move: 0.002, FeeRate: 0.001}

	buy := Simulate(models.SideBuy, 200, p)
	if math.Abs(buy.Exit-200*1.0015) > 1e-9 || math.Abs(buy.Qty-0.5) > 1e-12 {
		t.Fatalf("buy = %+v", buy)
	}
	wantFees := (200*0.5 + buy.Exit*0.5) * 0.001
	if math.Abs(buy.Fees-wantFees) > 1e-12 || math.Abs(buy.PnL-(buy.Gross-wantFees)) > 1e-12 {
		t.Fatalf("buy fees = %+v", buy)
	}

	sell := Simulate(models.SideSell, 200, p)
	if math.Abs(sell.Exit-200*0.9985) > 1e-9 || math.Abs(sell.Gross-buy.Gross) > 1e-9 {
		t.Fatalf("sell = %+v", sell)
	}

	// на нулевом движении PnL ровно минус комиссии
	zero := SimParams{NotionalUSDT: 100, FeeRate: 0.001}
	for _, side := range []models.Side{models.SideBuy, models.SideSell} {
		tr := Simulate(side, 612.5, zero)
		if tr.Exit != tr.Entry || tr.Fees <= 0 || tr.PnL != -tr.Fees {
			t.Fatalf("%s zero move = %+v", side, tr)
		}
	}
	flat := SimulateAt(models.SideBuy, 100, 100, p)
	if math.Abs(flat.PnL+0.2) > 1e-12 || math.Abs(flat.PnL+flat.Fees) > 1e-12 {
		t.Fatalf("flat = %+v", flat)
	}
}

func TestStatus(t *testing.T) {
	entry := 250.0
	ex := &stubExchange{
		closes:    fallingCloses,
		positions: []models.Position{{Symbol: "BNBUSDT", Side: "Sell", Size: 1, EntryPrice: &entry}},
	}
	o := newTestOrchestrator(testConfig(), ex, nil)

	st, err := o.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Price != 201 || st.RSI == nil || *st.RSI != 0 || len(st.OpenPositions) != 1 {
		t.Fatalf("status = %+v", st)
	}
	if st.Signal != models.SideBuy || st.StopLoss != 0.02 {
		t.Fatalf("status = %+v", st)
	}
	if len(ex.orders) != 0 {
		t.Fatal("status must not trade")
	}
}

func TestBaseCoin(t *testing.T) {
	for in, want := range map[string]string{"BNBUSDT": "BNB", "btcusdt": "BTC", "ETHBTC": "ETHBTC"} {
		if got := BaseCoin(in); got != want {
			t.Errorf("BaseCoin(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun_NoSignalStillReportsOpenPositions(t *testing.T) {
	ex := &stubExchange{
		closes:    flatCloses,
		positions: []models.Position{{Symbol: "BNBUSDT", Side: "Buy", Size: 0.1}},
	}
	res, _ := newTestOrchestrator(testConfig(), ex, nil).Run(context.Background())
	if res.Status != models.CycleNoSignal {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.OpenPositions) != 1 || res.OpenPositions[0].Symbol != "BNBUSDT" {
		t.Fatalf("open positions = %v", res.OpenPositions)
	}
}

func TestJournalLine_SummaryCountsOnlyTakenDecisions(t *testing.T) {
	// вход заблокирован позицией
	blocked := &stubExchange{
		closes:    fallingCloses,
		positions: []models.Position{{Symbol: "BNBUSDT", Side: "Buy", Size: 0.1}},
	}
	skipped, _ := newTestOrchestrator(testConfig(), blocked, nil).Run(context.Background())

	// свечей так и не дали
	cfg := testConfig()
	cfg.Fetch.Retries = 1
	failed, _ := newTestOrchestrator(cfg, &stubExchange{klineErrs: []error{errors.New("down")}}, nil).Run(context.Background())

	if skipped.Status != models.CycleSkipped || failed.Status != models.CycleError {
		t.Fatalf("statuses = %s / %s", skipped.Status, failed.Status)
	}

	skippedLine := JournalLine(skipped)
	if !strings.Contains(skippedLine, "señal=no_signal") || !strings.Contains(skippedLine, "intent=buy") {
		t.Fatalf("skipped line: %s", skippedLine)
	}
	failedLine := JournalLine(failed)
	if strings.Contains(failedLine, "señal=") || !strings.Contains(failedLine, "down") {
		t.Fatalf("error line: %s", failedLine)
	}

	var sum journal.Summary
	sum.Add(skippedLine)
	sum.Add(failedLine)
	if sum != (journal.Summary{NoSignal: 1, Total: 1}) {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestRun_SimulateRespectsZeroQty(t *testing.T) {
	cfg := testConfig()
	cfg.Trade.Mode = config.TradeSimulate
	cfg.Sizing.Mode = config.SizingPercent

	ex := &stubExchange{closes: fallingCloses, balanceErr: errors.New("401")}
	st := streak.NewMemoryStore()
	res, _ := newTestOrchestrator(cfg, ex, st).Run(context.Background())

	if res.Status != models.CycleSkipped || res.Simulation != nil || res.PnL != nil {
		t.Fatalf("result = %+v", res)
	}
	if n, _ := st.Get(context.Background(), streak.Key("BNBUSDT")); n != 0 {
		t.Fatalf("streak recorded for skipped cycle: %d", n)
	}
}
