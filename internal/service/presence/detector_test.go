package presence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/domain/access"
)

var errI2C = errors.New("i2c: no ack")

type fakeSensor struct {
	detections []access.Detection
	err        error
}

func (f *fakeSensor) Detect(context.Context) ([]access.Detection, error) {
	return f.detections, f.err
}

// TestDetector_Sample covers detections, an empty room and both error shapes.
func TestDetector_Sample(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	got, err := NewDetector(&fakeSensor{detections: []access.Detection{{ID: 2}}}).Sample(ctx)
	require.NoError(t, err)
	require.Equal(t, []access.Detection{{ID: 2}}, got)

	got, err = NewDetector(new(fakeSensor)).Sample(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = NewDetector(&fakeSensor{err: errI2C}).Sample(ctx)
	require.ErrorIs(t, err, device.ErrSensorUnavailable)
	require.ErrorIs(t, err, errI2C)

	_, err = NewDetector(&fakeSensor{err: device.ErrSensorUnavailable}).Sample(ctx)
	require.ErrorIs(t, err, device.ErrSensorUnavailable)
}
