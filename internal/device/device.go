package device

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/door-guard/internal/domain/access"
)

var (
	// ErrSensorUnavailable is returned when the vision sensor cannot be read.
	// It is distinct from an empty detection list ("no one present").
	ErrSensorUnavailable = errors.New("vision sensor unavailable")
	// ErrActuatorFault is returned when the lock servo cannot be moved.
	ErrActuatorFault = errors.New("lock actuator fault")
)

// VisionSensor reports the faces seen in the current frame.
type VisionSensor interface {
	Detect(ctx context.Context) ([]access.Detection, error)
}

// Display renders up to two lines of status text. An empty line2 is not drawn.
type Display interface {
	Render(ctx context.Context, line1, line2 string) error
}

// Indicator drives the RGB status LEDs.
type Indicator interface {
	SetColor(ctx context.Context, color Color) error
}

// Tone plays one note and blocks for its duration. Frequency 0 is silence.
type Tone interface {
	Play(ctx context.Context, frequencyHz int, duration time.Duration) error
}

// Actuator positions the lock servo.
type Actuator interface {
	SetAngle(ctx context.Context, degrees int) error
}

// Relay switches the USB relay output.
type Relay interface {
	SetOn(ctx context.Context, on bool) error
}

// GestureSensor returns the most recent gesture, or GestureNone.
type GestureSensor interface {
	Read(ctx context.Context) (access.Gesture, error)
}

// Set bundles one of each peripheral.
type Set struct {
	Vision    VisionSensor
	Display   Display
	Indicator Indicator
	Tone      Tone
	Actuator  Actuator
	Relay     Relay
	Gesture   GestureSensor
}

// Color is an RGB triple for the indicator.
type Color struct {
	R, G, B uint8
}

// Indicator colors.
//
//nolint:gochecknoglobals // Fixed palette.
var (
	Green = Color{R: 0, G: 255, B: 0}
	Red   = Color{R: 255, G: 0, B: 0}
	Off   = Color{R: 0, G: 0, B: 0}
)

// Note is one step of a melody.
type Note struct {
	FrequencyHz int
	Duration    time.Duration
}

// Melodies played by the controller.
//
//nolint:gochecknoglobals // Fixed tunes.
var (
	// MelodyGranted is C5, E5, G5 ascending.
	MelodyGranted = []Note{
		{FrequencyHz: 523, Duration: 200 * time.Millisecond},
		{FrequencyHz: 659, Duration: 200 * time.Millisecond},
		{FrequencyHz: 784, Duration: 400 * time.Millisecond},
	}
	// MelodyIntruder alternates a high A with silence.
	MelodyIntruder = []Note{
		{FrequencyHz: 880, Duration: 200 * time.Millisecond},
		{FrequencyHz: 0, Duration: 200 * time.Millisecond},
	}
)

// PlayMelody plays notes in order and stops at the first failure.
func PlayMelody(ctx context.Context, tone Tone, notes []Note) error {
	for _, n := range notes {
		if err := tone.Play(ctx, n.FrequencyHz, n.Duration); err != nil {
			return err
		}
	}

	return nil
}
