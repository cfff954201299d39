package access

import "time"

// LockState is the physical position of the door lock.
type LockState uint8

const (
	// Locked is the resting state; every unlock returns here after the dwell.
	Locked LockState = iota
	// Unlocked holds for the dwell period after a registry match.
	Unlocked
)

// String returns "locked" or "unlocked".
func (s LockState) String() string {
	if s == Unlocked {
		return "unlocked"
	}

	return "locked"
}

// Snapshot is the published view of the device, updated by the controllers.
type Snapshot struct {
	// Lock is the last commanded lock position.
	Lock LockState
	// LastGranted is the name of the last person let in.
	LastGranted string
	// LastGrantedAt is when LastGranted was let in.
	LastGrantedAt time.Time
	// IntruderActive is true while an alert episode runs.
	IntruderActive bool
	// EpisodeID identifies the current or most recent alert episode.
	EpisodeID string
	// Episodes counts alert episodes since start.
	Episodes int
	// RelayOn is the USB relay output.
	RelayOn bool
	// RelayDeadline is when the relay window closes; zero when disarmed.
	RelayDeadline time.Time
	// Cycles counts completed main-loop iterations.
	Cycles uint64
	// UpdatedAt is the time of the last change.
	UpdatedAt time.Time
}

// Clone returns a copy safe to hand to readers on other goroutines.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
