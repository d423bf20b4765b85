package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/shopspring/decimal"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/notify"
	"momentum_bot/internal/strategy"
	"momentum_bot/internal/streak"
	"momentum_bot/pkg/logger"
)

// Exchange — всё, что циклу нужно от биржи.
type Exchange interface {
	KlineSource
	BalanceSource
	PositionSource
	PlaceMarket(ctx context.Context, req models.OrderRequest) (*models.OrderResult, error)
}

// Orchestrator прогоняет один цикл: свечи, индикаторы, сигнал, проверки, ордер.
// Циклы не пересекаются: второй вызов во время первого получает ErrCycleBusy.
type Orchestrator struct {
	mu sync.Mutex

	cfg      *config.Config
	ex       Exchange
	engine   strategy.Engine
	fetcher  *Fetcher
	sizer    *Sizer
	guard    *Guard
	streak   streak.Store
	notifier notify.Notifier
	sim      SimParams
	now      func() time.Time

	last atomic.Pointer[models.CycleResult]
}

func NewOrchestrator(
	cfg *config.Config,
	ex Exchange,
	engine strategy.Engine,
	st streak.Store,
	n notify.Notifier,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		ex:       ex,
		engine:   engine,
		fetcher:  NewFetcher(ex, cfg.Fetch.Retries, cfg.Fetch.RetryDelay, cfg.Fetch.MinCandles),
		sizer:    NewSizer(cfg, ex),
		guard:    NewGuard(ex, cfg.Risk.PositionFailPolicy),
		streak:   st,
		notifier: n,
		sim:      NewSimParams(cfg),
		now:      time.Now,
	}
}

// Last — результат последнего завершённого цикла, nil если циклов не было.
func (o *Orchestrator) Last() *models.CycleResult { return o.last.Load() }

// Run — один цикл. Ошибка только ErrCycleBusy, всё остальное внутри результата.
func (o *Orchestrator) Run(ctx context.Context) (*models.CycleResult, error) {
	if !o.mu.TryLock() {
		logger.Warn("cycle skipped: previous one still running")
		return nil, ErrCycleBusy
	}
	defer o.mu.Unlock()

	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.cycle")
	defer span.Finish()
	span.SetTag("symbol", o.cfg.Exchange.Pair)
	span.SetTag("strategy", string(o.engine.Name()))

	res := &models.CycleResult{
		Signal:        models.SideNone,
		OpenPositions: []models.Position{},
		StartedAt:     o.now(),
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("cycle panic: %v\n%s", r, debug.Stack())
				o.fail(res, fmt.Errorf("panic: %v", r))
			}
		}()
		o.cycle(ctx, res)
	}()

	res.FinishedAt = o.now()
	span.SetTag("status", string(res.Status))
	if res.Status == models.CycleError {
		span.SetTag("error", true)
	}

	o.journal(res)
	o.last.Store(res)
	notify.Notify(ctx, o.notifier, o.cfg.Exchange.Pair, res)

	return res, nil
}

func (o *Orchestrator) cycle(ctx context.Context, res *models.CycleResult) {
	symbol := o.cfg.Exchange.Pair

	series, err := o.fetcher.Fetch(ctx, symbol, o.cfg.Exchange.Interval, o.cfg.Exchange.CandleLimit)
	if err != nil {
		o.fail(res, err)
		return
	}

	ev := o.engine.Evaluate(series)
	res.Price = ev.Price

	// позиции отдаём в каждом результате, решение по ним только при сигнале
	has, positions, perr := o.guard.HasOpenPosition(ctx, symbol)
	if positions != nil {
		res.OpenPositions = positions
	}

	if !ev.Ready {
		res.Status = models.CycleNoSignal
		res.Reason = ev.Reason
		return
	}
	res.RSI = ev.Current.RSI
	res.EMAFast = ev.Current.EMAFast
	res.EMASlow = ev.Current.EMASlow
	res.Signal = ev.Side

	if ev.Side == models.SideNone {
		res.Status = models.CycleNoSignal
		return
	}

	if has {
		res.Status = models.CycleSkipped
		if perr != nil {
			res.Reason = perr.Error()
		} else {
			res.Reason = fmt.Sprintf("open position on %s", symbol)
		}
		return
	}

	key := streak.Key(symbol)
	if limit := o.cfg.Risk.MaxLossStreak; limit > 0 {
		n, err := o.streak.Get(ctx, key)
		if err != nil {
			logger.Error("loss streak get: %v", err)
		}
		res.LossStreak = n
		if n >= limit {
			res.Status = models.CycleSkipped
			res.Reason = fmt.Sprintf("loss streak %d >= %d", n, limit)
			return
		}
	}

	// нулевое количество — "не торгуем" и для живого ордера, и для симуляции
	qty, serr := o.sizer.Size(ctx, symbol)
	res.Qty = qty
	if IsZeroQty(qty) {
		res.Status = models.CycleSkipped
		res.Reason = "zero quantity"
		if serr != nil {
			res.Reason = serr.Error()
		}
		return
	}

	if o.cfg.Trade.Mode == config.TradeSimulate {
		o.simulate(ctx, res, key, ev.Side, ev.Price)
		return
	}

	order, err := o.ex.PlaceMarket(ctx, models.OrderRequest{
		Symbol: symbol,
		Side:   ev.Side,
		Type:   models.OrderTypeMarket,
		Qty:    qty,
	})
	if err != nil {
		o.fail(res, &OrderPlacementError{Symbol: symbol, Side: ev.Side.OrderSide(), Qty: qty, Err: err})
		return
	}
	res.Order = order
	res.Status = models.CycleExecuted
}

func (o *Orchestrator) simulate(ctx context.Context, res *models.CycleResult, key string, side models.Side, entry float64) {
	if entry <= 0 {
		o.fail(res, fmt.Errorf("simulate: bad entry price %v", entry))
		return
	}

	trade := Simulate(side, entry, o.sim)
	res.Simulation = &trade
	res.PnL = &trade.PnL
	res.Qty = decimal.NewFromFloat(trade.Qty).Round(6).String()

	n, err := o.streak.Record(ctx, key, trade.PnL >= 0)
	if err != nil {
		logger.Error("loss streak record: %v", err)
	}
	res.LossStreak = n
	res.Status = models.CycleExecuted
}

func (o *Orchestrator) fail(res *models.CycleResult, err error) {
	res.Status = models.CycleError
	res.Error = err.Error()
}

// journal — строка в дневной лог, по ней считается /resumen.
func (o *Orchestrator) journal(res *models.CycleResult) {
	line := JournalLine(res)
	if res.Status == models.CycleError {
		logger.Error("%s", line)
		return
	}
	logger.Info("%s", line)
}

// JournalLine: "señal=" пишется только для исполненных и пустых циклов.
// Заблокированный вход идёт как no_signal с intent=<сторона>, ошибка без "señal=" вовсе.
func JournalLine(res *models.CycleResult) string {
	rsi := "nan"
	if res.RSI != nil {
		rsi = fmt.Sprintf("%.2f", *res.RSI)
	}

	if res.Status == models.CycleError {
		return fmt.Sprintf("Error en ejecución: precio=%v, RSI=%s, estado=%s, error=%s",
			res.Price, rsi, res.Status, res.Error)
	}

	signal := res.Signal.Journal()
	if res.Status == models.CycleSkipped {
		signal = models.SideNone.Journal()
	}

	order := "None"
	switch {
	case res.Order != nil:
		order = res.Order.OrderID
	case res.Simulation != nil:
		order = "simulada"
	}

	line := fmt.Sprintf("Ejecutado: precio=%v, RSI=%s, señal=%s, orden=%s, estado=%s",
		res.Price, rsi, signal, order, res.Status)
	if res.Status == models.CycleSkipped && res.Signal != models.SideNone && res.Signal != "" {
		line += ", intent=" + res.Signal.Journal()
	}
	if res.PnL != nil {
		line += ", pnl=" + decimal.NewFromFloat(*res.PnL).StringFixed(4)
	}
	return line
}

// Status — срез рынка без торговли.
func (o *Orchestrator) Status(ctx context.Context) (*models.MarketStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runner.status")
	defer span.Finish()

	symbol := o.cfg.Exchange.Pair
	series, err := o.fetcher.Fetch(ctx, symbol, o.cfg.Exchange.Interval, o.cfg.Exchange.CandleLimit)
	if err != nil {
		return nil, err
	}
	ev := o.engine.Evaluate(series)

	st := &models.MarketStatus{
		Symbol:        symbol,
		Price:         ev.Price,
		RSI:           ev.Current.RSI,
		EMAFast:       ev.Current.EMAFast,
		EMASlow:       ev.Current.EMASlow,
		Signal:        ev.Side,
		StopLoss:      o.cfg.Risk.StopLoss,
		TakeProfit:    o.cfg.Risk.TakeProfit,
		OpenPositions: []models.Position{},
	}
	if _, ps, _ := o.guard.HasOpenPosition(ctx, symbol); ps != nil {
		st.OpenPositions = ps
	}
	return st, nil
}
