package scheduler

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"momentum_bot/internal/models"
	"momentum_bot/internal/modules/config"
	"momentum_bot/internal/runner"
	"momentum_bot/pkg/logger"
)

// Trigger — то же, что дёргает POST /ejecutar.
type Trigger interface {
	Run(ctx context.Context) (*models.CycleResult, error)
}

// Scheduler — встроенный триггер циклов по cron (с секундами).
// Делит с HTTP один мьютекс оркестратора, так что двойного входа нет.
type Scheduler struct {
	cron *cron.Cron
	t    Trigger
	ctx  context.Context
}

func NewScheduler(t Trigger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		t:    t,
		ctx:  context.Background(),
	}
}

func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return errors.Wrapf(err, "register cycle schedule %q", spec)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("scheduler started")
}

// Stop ждёт, пока текущий цикл доработает.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("scheduler stop: %v", ctx.Err())
	}
	logger.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	res, err := s.t.Run(s.ctx)
	if errors.Is(err, runner.ErrCycleBusy) {
		logger.Warn("scheduled cycle skipped: %v", err)
		return
	}
	if err != nil {
		logger.Error("scheduled cycle: %v", err)
		return
	}
	logger.Info("scheduled cycle finished: %s", res.Status)
}

func Module() fx.Option {
	return fx.Module("scheduler",
		fx.Provide(func(o *runner.Orchestrator) Trigger { return o }),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, t Trigger) error {
			spec := cfg.Service.Schedule
			if spec == "" {
				return nil
			}
			s := NewScheduler(t)
			if err := s.Register(spec); err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					s.Start()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					s.Stop(ctx)
					return nil
				},
			})
			return nil
		}),
	)
}
