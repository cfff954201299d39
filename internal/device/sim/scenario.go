package sim

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/door-guard/internal/domain/access"
)

// Scenario scripts what the sensors report, one entry per read.
type Scenario struct {
	// Frames are returned by successive vision reads.
	Frames []Frame `yaml:"frames"`
	// Gestures are returned by successive gesture reads.
	Gestures []access.Gesture `yaml:"gestures"`
}

// Frame is one scripted vision read.
type Frame struct {
	// IDs are the identifiers of the faces in the frame; 0 is unrecognized.
	IDs []int `yaml:"ids"`
	// Fault makes the read fail with device.ErrSensorUnavailable.
	Fault bool `yaml:"fault"`
	// Repeat returns the frame this many times; 0 and 1 both mean once.
	Repeat int `yaml:"repeat"`
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(contents, &s); err != nil {
		return nil, fmt.Errorf("unmarshal scenario: %w", err)
	}

	return &s, nil
}

// expand unrolls Repeat into one frame per read.
func (s *Scenario) expand() []Frame {
	if s == nil {
		return nil
	}

	frames := make([]Frame, 0, len(s.Frames))

	for _, f := range s.Frames {
		n := max(f.Repeat, 1)
		for range n {
			frames = append(frames, Frame{IDs: f.IDs, Fault: f.Fault})
		}
	}

	return frames
}
