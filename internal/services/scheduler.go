package services

import (
	"context"
	"time"

	"github.com/google/logger"
)

// Scheduler drives an Engine in real time. It holds exactly one timer,
// re-armed from Engine.NextWake whenever the engine reports a change.
type Scheduler struct {
	engine *Engine
	kick   chan struct{}
}

// NewScheduler attaches a scheduler to e. Only one scheduler per engine.
func NewScheduler(e *Engine) *Scheduler {
	s := &Scheduler{
		engine: e,
		kick:   make(chan struct{}, 1),
	}
	e.setWakeHook(s.Kick)
	return s
}

// Kick asks the loop to re-read the engine's next wake-up. Never blocks.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. On exit the engine is reset so no draw is
// left half-finished with nobody to advance it.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if next, ok := s.engine.NextWake(); ok {
			timer.Reset(max(time.Until(next), 0))
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			s.engine.Reset()
			return
		case <-s.kick:
		case <-timer.C:
			if err := s.engine.Advance(ctx); err != nil {
				logger.Errorf("Draw advance failed: %v", err)
			}
		}
	}
}
