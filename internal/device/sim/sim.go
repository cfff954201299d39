package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/door-guard/internal/clock"
	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
)

// Vision replays scripted frames.
type Vision struct {
	frames []Frame
	// Reads counts Detect calls.
	Reads int
}

// Detect returns the next scripted frame, or no detections once the script ends.
func (v *Vision) Detect(ctx context.Context) ([]access.Detection, error) {
	v.Reads++

	if len(v.frames) == 0 {
		return nil, nil
	}

	frame := v.frames[0]
	v.frames = v.frames[1:]

	if frame.Fault {
		return nil, fmt.Errorf("sim read %d: %w", v.Reads, device.ErrSensorUnavailable)
	}

	detections := make([]access.Detection, 0, len(frame.IDs))
	for _, id := range frame.IDs {
		detections = append(detections, access.Detection{ID: id})
	}

	logger.DebugKV(ctx, "Sim frame", "ids", frame.IDs)

	return detections, nil
}

// Remaining returns the number of scripted frames not yet read.
func (v *Vision) Remaining() int {
	return len(v.frames)
}

// Display remembers the last rendered lines.
type Display struct {
	Line1, Line2 string
	Renders      int
}

// Render stores and logs the text.
func (d *Display) Render(ctx context.Context, line1, line2 string) error {
	d.Line1, d.Line2 = line1, line2
	d.Renders++

	logger.InfoKV(ctx, "Display", "line1", line1, "line2", line2)

	return nil
}

// Indicator remembers the last color.
type Indicator struct {
	Color device.Color
}

// SetColor stores the color.
func (i *Indicator) SetColor(ctx context.Context, color device.Color) error {
	i.Color = color

	logger.DebugKV(ctx, "Indicator", "r", color.R, "g", color.G, "b", color.B)

	return nil
}

// Tone records notes and takes their duration.
type Tone struct {
	Played []device.Note
}

// Play records the note and sleeps for its duration.
func (t *Tone) Play(ctx context.Context, frequencyHz int, duration time.Duration) error {
	t.Played = append(t.Played, device.Note{FrequencyHz: frequencyHz, Duration: duration})

	return clock.Sleep(ctx, duration)
}

// Actuator remembers the servo angle. A jammed actuator refuses to move.
type Actuator struct {
	Angle  int
	Jammed bool
	Moves  int
}

// SetAngle moves the servo unless jammed.
func (a *Actuator) SetAngle(ctx context.Context, degrees int) error {
	if a.Jammed {
		return fmt.Errorf("servo stuck at %d degrees: %w", a.Angle, device.ErrActuatorFault)
	}

	a.Angle = degrees
	a.Moves++

	logger.DebugKV(ctx, "Servo", "angle", degrees)

	return nil
}

// Relay remembers the output state.
type Relay struct {
	On       bool
	Switches int
}

// SetOn stores the output and counts transitions.
func (r *Relay) SetOn(ctx context.Context, on bool) error {
	if r.On != on {
		r.Switches++
	}

	r.On = on

	logger.DebugKV(ctx, "USB relay", "on", on)

	return nil
}

// Gesture replays scripted gestures.
type Gesture struct {
	gestures []access.Gesture
}

// Read returns the next scripted gesture, or none once the script ends.
func (g *Gesture) Read(context.Context) (access.Gesture, error) {
	if len(g.gestures) == 0 {
		return access.GestureNone, nil
	}

	next := g.gestures[0]
	g.gestures = g.gestures[1:]

	return next, nil
}

// Peripherals is a full simulated device.
type Peripherals struct {
	Vision    *Vision
	Display   *Display
	Indicator *Indicator
	Tone      *Tone
	Actuator  *Actuator
	Relay     *Relay
	Gesture   *Gesture
}

// New builds peripherals scripted by s. A nil scenario is an empty room.
func New(s *Scenario) *Peripherals {
	var gestures []access.Gesture
	if s != nil {
		gestures = append(gestures, s.Gestures...)
	}

	return &Peripherals{
		Vision:    &Vision{frames: s.expand()},
		Display:   new(Display),
		Indicator: new(Indicator),
		Tone:      new(Tone),
		Actuator:  new(Actuator),
		Relay:     new(Relay),
		Gesture:   &Gesture{gestures: gestures},
	}
}

// Set exposes the peripherals through the capability interfaces.
func (p *Peripherals) Set() device.Set {
	return device.Set{
		Vision:    p.Vision,
		Display:   p.Display,
		Indicator: p.Indicator,
		Tone:      p.Tone,
		Actuator:  p.Actuator,
		Relay:     p.Relay,
		Gesture:   p.Gesture,
	}
}
