package access

import (
	"fmt"
	"strings"
)

// Gesture is one reading of the proximity gesture sensor.
type Gesture uint8

// Values match the APDS9960 gesture codes.
const (
	GestureNone Gesture = iota
	GestureUp
	GestureDown
	GestureLeft
	GestureRight
)

// Directional reports whether the gesture is a swipe in any direction.
func (g Gesture) Directional() bool {
	return g >= GestureUp && g <= GestureRight
}

// String returns the lowercase gesture name.
func (g Gesture) String() string {
	switch g {
	case GestureNone:
		return "none"
	case GestureUp:
		return "up"
	case GestureDown:
		return "down"
	case GestureLeft:
		return "left"
	case GestureRight:
		return "right"
	default:
		return fmt.Sprintf("gesture(%d)", uint8(g))
	}
}

// ParseGesture converts a name such as "up" or "swipe-left" to a Gesture.
func ParseGesture(s string) (Gesture, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "swipe-") {
	case "", "none":
		return GestureNone, nil
	case "up":
		return GestureUp, nil
	case "down":
		return GestureDown, nil
	case "left":
		return GestureLeft, nil
	case "right":
		return GestureRight, nil
	default:
		return GestureNone, fmt.Errorf("unknown gesture %q", s)
	}
}

// UnmarshalText lets gestures be written by name in YAML scenarios.
func (g *Gesture) UnmarshalText(text []byte) error {
	parsed, err := ParseGesture(string(text))
	if err != nil {
		return err
	}

	*g = parsed

	return nil
}
