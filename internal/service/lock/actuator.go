package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/door-guard/internal/clock"
	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/notify"
	"github.com/oshokin/door-guard/internal/repository/status"
)

const (
	// DefaultLockAngle is the servo position that bolts the door.
	DefaultLockAngle = 0
	// DefaultUnlockAngle is the servo position that releases the door.
	DefaultUnlockAngle = 90
	// DefaultDwell is how long the door stays unlocked after a grant.
	DefaultDwell = 5 * time.Second
)

// Options configures the actuator.
type Options struct {
	LockAngle   int
	UnlockAngle int
	Dwell       time.Duration
}

// Actuator drives the lock servo and its display, indicator, tone and notification.
type Actuator struct {
	devices  device.Set
	notifier notify.Notifier
	repo     status.Repository
	opts     Options
	// state is the last position the servo was commanded to.
	state access.LockState
}

// NewActuator creates an actuator that assumes the door starts locked.
func NewActuator(devices device.Set, notifier notify.Notifier, repo status.Repository, opts Options) *Actuator {
	if opts.Dwell <= 0 {
		opts.Dwell = DefaultDwell
	}

	return &Actuator{
		devices:  devices,
		notifier: notifier,
		repo:     repo,
		opts:     opts,
		state:    access.Locked,
	}
}

// State returns the current lock position.
func (a *Actuator) State() access.LockState {
	return a.state
}

// Grant unlocks for name, gives feedback, waits the dwell and relocks.
// Steps run in a fixed order: actuate, display, indicate, sound, notify, dwell, relock.
// Only an actuator fault is returned; once the servo has opened the relock always runs.
func (a *Actuator) Grant(ctx context.Context, name string) error {
	ctx = logger.WithName(ctx, "lock")

	if err := a.devices.Actuator.SetAngle(ctx, a.opts.UnlockAngle); err != nil {
		return fmt.Errorf("unlock for %s: %w", name, asFault(err))
	}

	a.setState(ctx, access.Unlocked, func(s *access.Snapshot) {
		s.LastGranted = name
		s.LastGrantedAt = time.Now()
	})

	if err := a.devices.Display.Render(ctx, "Access Granted", fmt.Sprintf("Hi %s!", name)); err != nil {
		logger.WarnKV(ctx, "Display failed", "error", err)
	}

	if err := a.devices.Indicator.SetColor(ctx, device.Green); err != nil {
		logger.WarnKV(ctx, "Indicator failed", "error", err)
	}

	if err := device.PlayMelody(ctx, a.devices.Tone, device.MelodyGranted); err != nil {
		logger.WarnKV(ctx, "Melody failed", "error", err)
	}

	if err := a.notifier.Send(ctx, name+" is home!!"); err != nil {
		logger.WarnKV(ctx, "Arrival notification not delivered", "name", name, "error", err)
	}

	logger.InfoKV(ctx, "Door Unlocked", "name", name, "dwell", a.opts.Dwell)

	if err := clock.Sleep(ctx, a.opts.Dwell); err != nil {
		logger.WarnKV(ctx, "Dwell interrupted, relocking now", "error", err)
	}

	return a.Lock(context.WithoutCancel(ctx))
}

// Lock moves the servo to the lock position, shows red and renders the locked text.
func (a *Actuator) Lock(ctx context.Context) error {
	ctx = logger.WithName(ctx, "lock")

	if err := a.devices.Actuator.SetAngle(ctx, a.opts.LockAngle); err != nil {
		return fmt.Errorf("lock: %w", asFault(err))
	}

	if err := a.devices.Indicator.SetColor(ctx, device.Red); err != nil {
		logger.WarnKV(ctx, "Indicator failed", "error", err)
	}

	if err := a.devices.Display.Render(ctx, "Door Locked", "Locked"); err != nil {
		logger.WarnKV(ctx, "Display failed", "error", err)
	}

	if a.state == access.Locked {
		logger.Debug(ctx, "Door Locked")
		return nil
	}

	a.setState(ctx, access.Locked, nil)
	logger.Info(ctx, "Door Locked")

	return nil
}

// setState records the new position locally and on the status board.
func (a *Actuator) setState(ctx context.Context, state access.LockState, extra func(*access.Snapshot)) {
	a.state = state

	err := a.repo.Update(ctx, func(s *access.Snapshot) {
		s.Lock = state
		if extra != nil {
			extra(s)
		}
	})
	if err != nil {
		logger.WarnKV(ctx, "Status update failed", "error", err)
	}
}

// asFault makes sure a servo error matches device.ErrActuatorFault.
func asFault(err error) error {
	if errors.Is(err, device.ErrActuatorFault) {
		return err
	}

	return fmt.Errorf("%w: %w", device.ErrActuatorFault, err)
}
