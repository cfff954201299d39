// Package security runs one face-recognition decision cycle.
//
// A cycle samples the vision sensor, resolves the first registered face
// and either grants access, runs the intruder alert, or makes sure the door
// is locked.
package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/service/intruder"
)

// Outcome is how a cycle resolved.
type Outcome uint8

const (
	// OutcomeSkipped means the sensor was unavailable; nothing was actuated.
	OutcomeSkipped Outcome = iota
	// OutcomeIdle means no one was in view and the door was locked.
	OutcomeIdle
	// OutcomeGranted means a registered face was let in and the door relocked.
	OutcomeGranted
	// OutcomeAlerted means an intruder episode ran and the door was locked afterwards.
	OutcomeAlerted
	// OutcomeUnmatched means only unregistered classes were seen; the door was locked silently.
	OutcomeUnmatched
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeIdle:
		return "idle"
	case OutcomeGranted:
		return "granted"
	case OutcomeAlerted:
		return "alerted"
	case OutcomeUnmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Sampler reads the current detections.
type Sampler interface {
	Sample(ctx context.Context) ([]access.Detection, error)
}

// Lock grants access or ensures the door is locked.
type Lock interface {
	Grant(ctx context.Context, name string) error
	Lock(ctx context.Context) error
}

// Alerter runs one blocking intruder episode.
type Alerter interface {
	Run(ctx context.Context) (intruder.Episode, error)
}

// Controller wires detection, identity resolution and the lock.
type Controller struct {
	sampler  Sampler
	registry *access.Registry
	lock     Lock
	alerter  Alerter
}

// NewController creates a controller.
func NewController(sampler Sampler, registry *access.Registry, lock Lock, alerter Alerter) *Controller {
	return &Controller{
		sampler:  sampler,
		registry: registry,
		lock:     lock,
		alerter:  alerter,
	}
}

// Cycle runs one decision. It returns an error only when the lock cannot be
// moved; sensor failures skip the cycle.
func (c *Controller) Cycle(ctx context.Context) (Outcome, error) {
	ctx = logger.WithName(ctx, "security")

	detections, err := c.sampler.Sample(ctx)
	if err != nil {
		if errors.Is(err, device.ErrSensorUnavailable) {
			logger.WarnKV(ctx, "Skipping cycle", "error", err)
			return OutcomeSkipped, nil
		}

		return OutcomeSkipped, fmt.Errorf("sample: %w", err)
	}

	if match, name, ok := c.registry.Resolve(detections); ok {
		logger.InfoKV(ctx, "Face recognized", "id", match.ID, "name", name)

		return OutcomeGranted, c.lock.Grant(ctx, name)
	}

	outcome := OutcomeIdle

	switch {
	case access.HasUnrecognized(detections):
		outcome = OutcomeAlerted

		logger.Warn(ctx, "Intruder detected!")

		episode, err := c.alerter.Run(ctx)

		switch {
		case errors.Is(err, intruder.ErrAlertInProgress):
			logger.Debug(ctx, "Alert already running")
		case err != nil:
			logger.WarnKV(ctx, "Intruder alert failed", "error", err)
		default:
			logger.DebugKV(ctx, "Alert episode finished", "episode", episode.ID)
		}
	case len(detections) > 0:
		outcome = OutcomeUnmatched

		logger.DebugKV(ctx, "Unregistered faces", "count", len(detections))
	}

	return outcome, c.lock.Lock(ctx)
}
