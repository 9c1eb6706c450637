package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes expired session rows. It runs as a single
// background goroutine, fully independent of request handling: a sweep
// failure is logged and the next tick tries again — it is never fatal to
// the process.
//
// A sweep may race an in-flight request reading the same row. That's fine:
// reads are idempotent, and deleting a just-used session only affects the
// next request, which simply starts anonymous.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}
	stopped  chan struct{}
}

// NewSweeper creates a Sweeper; call Start to begin sweeping.
func NewSweeper(store Store, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start launches the background loop. One sweep runs immediately so a
// restart doesn't wait a full interval to clear backlog.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.stopped)

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it. Safe to call once during
// shutdown, after the HTTP server has drained and before the pool closes.
func (s *Sweeper) Stop() {
	close(s.done)
	<-s.stopped
}

func (s *Sweeper) sweep() {
	// Each sweep gets its own bounded context so a wedged store can't hang
	// the loop forever.
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.store.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Debug("session sweep completed", slog.Int64("deleted", n))
	}
}
