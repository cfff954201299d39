// Package presence samples the vision sensor once per call.
package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
)

// Detector turns vision sensor reads into detections.
type Detector struct {
	sensor device.VisionSensor
}

// NewDetector wraps the vision sensor.
func NewDetector(sensor device.VisionSensor) *Detector {
	return &Detector{sensor: sensor}
}

// Sample returns the detections of one sensor read. The result may be empty.
// Any read failure is reported as device.ErrSensorUnavailable.
func (d *Detector) Sample(ctx context.Context) ([]access.Detection, error) {
	detections, err := d.sensor.Detect(ctx)
	if err == nil {
		return detections, nil
	}

	if errors.Is(err, device.ErrSensorUnavailable) {
		return nil, err
	}

	return nil, fmt.Errorf("%w: %w", device.ErrSensorUnavailable, err)
}
