package render

import (
	"context"
	"fmt"
	"time"
)

// SettleStrategy decides when a loaded page is stable enough to capture.
type SettleStrategy interface {
	Wait(ctx context.Context) error
}

// FixedDelay waits a constant duration after load completes. The target
// page runs open-ended client-side animation with no completion signal the
// pipeline can observe, so a fixed wait is the only robust option. Known
// fragility, kept deliberately simple; swap in a content-stability
// heuristic here without touching the session state machine.
type FixedDelay struct {
	Delay time.Duration
}

// Wait blocks for the configured delay or until ctx is done.
func (s FixedDelay) Wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("settle wait interrupted: %w", ctx.Err())
	}
}
