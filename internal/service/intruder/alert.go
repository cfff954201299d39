// Package intruder runs the blocking alert sequence for an unrecognized face.
//
// One call to Run is one alert episode: the display shows the alert, the
// chat gets exactly one message, and the indicator and piezo keep flashing
// and beeping until the vision sensor no longer sees an unrecognized face.
package intruder

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/door-guard/internal/clock"
	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/notify"
	"github.com/oshokin/door-guard/internal/repository/status"
)

// DefaultTick is the dark pause between two alert flashes.
const DefaultTick = 200 * time.Millisecond

// AlertMessage is sent once per episode.
const AlertMessage = "Intruder Alert: Unrecognized face detected!"

// ErrAlertInProgress is returned when Run is called while an episode is active.
var ErrAlertInProgress = errors.New("intruder alert already active")

// Sampler re-polls the vision sensor between flashes.
type Sampler interface {
	Sample(ctx context.Context) ([]access.Detection, error)
}

// Episode summarizes one finished alert.
type Episode struct {
	// ID is unique per episode and appears in logs and the status snapshot.
	ID string
	// Flashes is the number of alert flash cycles played.
	Flashes int
	// Duration is the time from entry to exit.
	Duration time.Duration
}

// Loop owns the intruder-active flag.
type Loop struct {
	sampler  Sampler
	devices  device.Set
	notifier notify.Notifier
	repo     status.Repository
	tick     time.Duration
	active   atomic.Bool
}

// NewLoop creates an alert loop; a non-positive tick uses DefaultTick.
func NewLoop(
	sampler Sampler,
	devices device.Set,
	notifier notify.Notifier,
	repo status.Repository,
	tick time.Duration,
) *Loop {
	if tick <= 0 {
		tick = DefaultTick
	}

	return &Loop{
		sampler:  sampler,
		devices:  devices,
		notifier: notifier,
		repo:     repo,
		tick:     tick,
	}
}

// Active reports whether an episode is running.
func (l *Loop) Active() bool {
	return l.active.Load()
}

// Run blocks for one alert episode. It returns ErrAlertInProgress without any
// side effect if an episode is already active.
//
// The episode ends when a re-poll sees no unrecognized face, when the sensor
// becomes unavailable, or when ctx is cancelled.
func (l *Loop) Run(ctx context.Context) (Episode, error) {
	if !l.active.CompareAndSwap(false, true) {
		return Episode{}, ErrAlertInProgress
	}

	episode := Episode{ID: uuid.NewString()}
	started := time.Now()
	ctx = logger.WithKV(logger.WithName(ctx, "intruder"), "episode", episode.ID)

	l.publish(ctx, func(s *access.Snapshot) {
		s.IntruderActive = true
		s.EpisodeID = episode.ID
		s.Episodes++
	})

	defer func() {
		l.active.Store(false)
		l.publish(context.WithoutCancel(ctx), func(s *access.Snapshot) { s.IntruderActive = false })
	}()

	if err := l.devices.Display.Render(ctx, "Intruder!!!", "Alert!"); err != nil {
		logger.WarnKV(ctx, "Display failed", "error", err)
	}

	if err := l.notifier.Send(ctx, AlertMessage); err != nil {
		logger.WarnKV(ctx, "Intruder notification not delivered", "error", err)
	}

	logger.Warn(ctx, "Intruder alert started")

	for {
		episode.Flashes++

		if !l.flash(ctx) {
			break
		}

		detections, err := l.sampler.Sample(ctx)
		if err != nil {
			logger.WarnKV(ctx, "Cannot confirm intruder, ending alert", "error", err)
			break
		}

		if !access.HasUnrecognized(detections) {
			break
		}
	}

	episode.Duration = time.Since(started)

	logger.InfoKV(ctx, "Intruder alert cleared", "flashes", episode.Flashes, "duration", episode.Duration)

	return episode, nil
}

// flash plays one red flash with the alarm tone followed by a dark pause.
// It returns false once ctx is cancelled.
func (l *Loop) flash(ctx context.Context) bool {
	if err := l.devices.Indicator.SetColor(ctx, device.Red); err != nil {
		logger.WarnKV(ctx, "Indicator failed", "error", err)
	}

	if err := device.PlayMelody(ctx, l.devices.Tone, device.MelodyIntruder); err != nil && ctx.Err() == nil {
		logger.WarnKV(ctx, "Alarm tone failed", "error", err)
	}

	if err := l.devices.Indicator.SetColor(ctx, device.Off); err != nil {
		logger.WarnKV(ctx, "Indicator failed", "error", err)
	}

	return clock.Sleep(ctx, l.tick) == nil
}

func (l *Loop) publish(ctx context.Context, mutate func(*access.Snapshot)) {
	if err := l.repo.Update(ctx, mutate); err != nil {
		logger.WarnKV(ctx, "Status update failed", "error", err)
	}
}
