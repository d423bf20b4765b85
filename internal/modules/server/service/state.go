package service

import (
	"sync/atomic"
	"time"
)

// State — живость процесса для /healthz.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	cycles atomic.Int64
	busy   atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// CycleDone — цикл отработал (любым исходом).
func (s *State) CycleDone()    { s.cycles.Add(1) }
func (s *State) Cycles() int64 { return s.cycles.Load() }

// CycleBusy — триггер отбит, предыдущий цикл ещё шёл.
func (s *State) CycleBusy()         { s.busy.Add(1) }
func (s *State) BusyRejects() int64 { return s.busy.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
