// Package relay switches the USB relay from hand gestures.
//
// Any swipe turns the relay on and (re)arms a fixed window; the relay turns
// off on the first cycle after the window closes without another swipe.
package relay

import (
	"context"
	"time"

	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/repository/status"
)

// DefaultWindow is how long the relay stays on after the last swipe.
const DefaultWindow = 5 * time.Second

// Controller owns the relay deadline.
type Controller struct {
	sensor device.GestureSensor
	relay  device.Relay
	repo   status.Repository
	window time.Duration
	// deadline is zero when the timer is disarmed.
	deadline time.Time
}

// NewController creates a gesture relay controller; a non-positive window uses DefaultWindow.
func NewController(sensor device.GestureSensor, relay device.Relay, repo status.Repository, window time.Duration) *Controller {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Controller{
		sensor: sensor,
		relay:  relay,
		repo:   repo,
		window: window,
	}
}

// Deadline returns the armed deadline and whether the timer is armed.
func (c *Controller) Deadline() (time.Time, bool) {
	return c.deadline, !c.deadline.IsZero()
}

// Cycle reads one gesture, then checks the deadline. Both steps run every cycle.
func (c *Controller) Cycle(ctx context.Context) {
	ctx = logger.WithName(ctx, "relay")

	gesture, err := c.sensor.Read(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Gesture read failed", "error", err)

		gesture = access.GestureNone
	}

	if gesture.Directional() {
		c.arm(ctx, gesture)
	}

	if !c.deadline.IsZero() && time.Now().After(c.deadline) {
		c.expire(ctx)
	}
}

// arm turns the relay on and restarts the window.
func (c *Controller) arm(ctx context.Context, gesture access.Gesture) {
	if err := c.relay.SetOn(ctx, true); err != nil {
		logger.WarnKV(ctx, "Relay did not switch on", "error", err)
		return
	}

	c.deadline = time.Now().Add(c.window)
	c.publish(ctx, true)

	logger.InfoKV(ctx, "Gesture detected, USB relay ON", "gesture", gesture.String(), "until", c.deadline)
}

// expire turns the relay off and disarms the timer. A failed switch keeps the
// timer armed so the next cycle retries.
func (c *Controller) expire(ctx context.Context) {
	if err := c.relay.SetOn(ctx, false); err != nil {
		logger.WarnKV(ctx, "Relay did not switch off, retrying next cycle", "error", err)
		return
	}

	c.deadline = time.Time{}
	c.publish(ctx, false)

	logger.Info(ctx, "No gesture detected, USB relay OFF")
}

func (c *Controller) publish(ctx context.Context, on bool) {
	deadline := c.deadline

	err := c.repo.Update(ctx, func(s *access.Snapshot) {
		s.RelayOn = on
		s.RelayDeadline = deadline
	})
	if err != nil {
		logger.WarnKV(ctx, "Status update failed", "error", err)
	}
}
