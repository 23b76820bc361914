// Package workers holds the background loops that run beside the HTTP
// server.
package workers

import (
	"context"
	"log"
	"time"
)

// GoalRoller is the slice of GoalService the worker needs.
type GoalRoller interface {
	RolloverAll(ctx context.Context) error
}

// RolloverWorker periodically resets daily and weekly goal progress.
// Rollover is idempotent per period, so the sweep interval only bounds
// how stale a lapsed goal can look, not correctness.
type RolloverWorker struct {
	goals    GoalRoller
	interval time.Duration
}

func NewRolloverWorker(goals GoalRoller, interval time.Duration) *RolloverWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RolloverWorker{goals: goals, interval: interval}
}

// Run blocks until ctx is cancelled. Start it in its own goroutine.
func (w *RolloverWorker) Run(ctx context.Context) {
	// Sweep once at startup to catch periods that lapsed while down.
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Goal rollover worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RolloverWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := w.goals.RolloverAll(sweepCtx); err != nil {
		log.Printf("Goal rollover sweep failed: %v", err)
	}
}
