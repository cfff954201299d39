package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/door-guard/internal/clock"
	"github.com/oshokin/door-guard/internal/config"
	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/notify"
	"github.com/oshokin/door-guard/internal/repository/status"
	"github.com/oshokin/door-guard/internal/service/intruder"
	"github.com/oshokin/door-guard/internal/service/lock"
	"github.com/oshokin/door-guard/internal/service/presence"
	"github.com/oshokin/door-guard/internal/service/relay"
	"github.com/oshokin/door-guard/internal/service/security"
)

// Device is the assembled controller.
type Device struct {
	devices  device.Set
	repo     status.Repository
	security *security.Controller
	relay    *relay.Controller
	poll     time.Duration
}

// NewDevice wires the controllers for cfg. cfg must have passed config.Validate.
func NewDevice(cfg *config.Config, devices device.Set, notifier notify.Notifier, repo status.Repository) *Device {
	detector := presence.NewDetector(devices.Vision)

	actuator := lock.NewActuator(devices, notifier, repo, lock.Options{
		LockAngle:   cfg.LockAngle,
		UnlockAngle: *cfg.UnlockAngle,
		Dwell:       cfg.UnlockDwell,
	})

	alerts := intruder.NewLoop(detector, devices, notifier, repo, cfg.AlertTick)

	return &Device{
		devices:  devices,
		repo:     repo,
		security: security.NewController(detector, access.NewRegistry(cfg.Identities), actuator, alerts),
		relay:    relay.NewController(devices.Gesture, devices.Relay, repo, cfg.RelayWindow),
		poll:     cfg.PollInterval,
	}
}

// Cycle runs one main-loop iteration without the trailing pause.
// The security decision, including any dwell or alert, completes before the relay runs.
func (d *Device) Cycle(ctx context.Context) (security.Outcome, error) {
	outcome, err := d.security.Cycle(ctx)
	if err != nil {
		return outcome, fmt.Errorf("security cycle: %w", err)
	}

	d.relay.Cycle(ctx)

	err = d.repo.Update(ctx, func(s *access.Snapshot) { s.Cycles++ })
	if err != nil {
		logger.WarnKV(ctx, "Status update failed", "error", err)
	}

	logger.DebugKV(ctx, "Cycle complete", "outcome", outcome.String())

	return outcome, nil
}

// Run loops until ctx is cancelled (nil) or an actuator fault occurs (error).
func (d *Device) Run(ctx context.Context) error {
	d.resetOutputs(ctx)
	defer d.resetOutputs(context.WithoutCancel(ctx))

	for {
		if _, err := d.Cycle(ctx); err != nil {
			return err
		}

		if err := clock.Sleep(ctx, d.poll); err != nil {
			logger.Info(ctx, "Stopping main loop")
			return nil
		}
	}
}

// resetOutputs turns the indicator and the relay off.
func (d *Device) resetOutputs(ctx context.Context) {
	if err := d.devices.Indicator.SetColor(ctx, device.Off); err != nil {
		logger.WarnKV(ctx, "Indicator failed", "error", err)
	}

	if err := d.devices.Relay.SetOn(ctx, false); err != nil {
		logger.WarnKV(ctx, "Relay failed", "error", err)
	}
}
