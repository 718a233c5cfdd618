package services

import (
	"math/rand/v2"
	"time"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand sets the random source used for every pick.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithClock replaces time.Now. Tests use it to step through a draw.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithListener registers fn to receive engine events. fn runs with the
// engine lock held and must not call back into the engine.
func WithListener(fn func(Event)) Option {
	return func(e *Engine) {
		e.listener = fn
	}
}

// WithSpinTick sets the period of the fast spin, which is also the base
// delay of the slowdown.
func WithSpinTick(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.spinTick = d
		}
	}
}

// WithRevealDelays sets how long the resolved winner is held before commit
// in normal and first-prize mode.
func WithRevealDelays(normal, firstPrize time.Duration) Option {
	return func(e *Engine) {
		if normal > 0 {
			e.revealDelay = normal
		}
		if firstPrize > 0 {
			e.firstPrizeRevealDelay = firstPrize
		}
	}
}
