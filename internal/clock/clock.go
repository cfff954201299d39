// Package clock provides the fixed-duration pause used by every blocking step
// of the controller (unlock dwell, alert tick, tone length, main-loop cadence).
package clock

import (
	"context"
	"time"
)

// Sleep blocks for d. It returns ctx.Err() early only when ctx is cancelled,
// which the controller treats as shutdown.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
