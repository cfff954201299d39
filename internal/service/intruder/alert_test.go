package intruder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/device/sim"
	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/repository/status"
)

var errBusDown = errors.New("bus down")

// scriptedSampler returns one scripted frame per Sample call, then an empty room.
type scriptedSampler struct {
	frames [][]access.Detection
	errAt  int
	calls  int
	// onSample runs inside each call; used to re-enter the loop.
	onSample func()
}

func (s *scriptedSampler) Sample(context.Context) ([]access.Detection, error) {
	s.calls++

	if s.onSample != nil {
		s.onSample()
	}

	if s.errAt > 0 && s.calls == s.errAt {
		return nil, errBusDown
	}

	if len(s.frames) == 0 {
		return nil, nil
	}

	next := s.frames[0]
	s.frames = s.frames[1:]

	return next, nil
}

// countingNotifier counts messages.
type countingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *countingNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.messages = append(n.messages, text)

	return n.err
}

func intruderFrames(n int) [][]access.Detection {
	frames := make([][]access.Detection, n)
	for i := range frames {
		frames[i] = []access.Detection{{ID: access.UnrecognizedID}}
	}

	return frames
}

// TestLoop_OneNotificationPerEpisode polls ten unrecognized frames and expects a single message.
func TestLoop_OneNotificationPerEpisode(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		p := sim.New(nil)
		sampler := &scriptedSampler{frames: intruderFrames(10)}
		notifier := new(countingNotifier)
		repo := status.NewMemoryRepository()
		l := NewLoop(sampler, p.Set(), notifier, repo, 0)

		episode, err := l.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, []string{AlertMessage}, notifier.messages)
		require.Equal(t, 11, sampler.calls)
		require.Equal(t, 11, episode.Flashes)
		// Each flash is 0.4s of tone and a 0.2s pause.
		require.Equal(t, 11*600*time.Millisecond, episode.Duration)
		require.NotEmpty(t, episode.ID)
		require.False(t, l.Active())

		require.Equal(t, "Intruder!!!", p.Display.Line1)
		require.Equal(t, "Alert!", p.Display.Line2)
		require.Equal(t, device.Off, p.Indicator.Color)
		require.Len(t, p.Tone.Played, 22)
		require.Equal(t, device.MelodyIntruder, p.Tone.Played[:2])

		s, err := repo.Load(context.Background())
		require.NoError(t, err)
		require.False(t, s.IntruderActive)
		require.Equal(t, episode.ID, s.EpisodeID)
		require.Equal(t, 1, s.Episodes)
	})
}

// TestLoop_StaysWhileUnrecognizedPersists ends only when the unknown face leaves,
// even if registered faces remain in view.
func TestLoop_StaysWhileUnrecognizedPersists(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		sampler := &scriptedSampler{frames: [][]access.Detection{
			{{ID: 0}, {ID: 1}},
			{{ID: 1}},
		}}
		l := NewLoop(sampler, sim.New(nil).Set(), new(countingNotifier), status.NewMemoryRepository(), 0)

		episode, err := l.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, sampler.calls)
		require.Equal(t, 2, episode.Flashes)
	})
}

// TestLoop_ReentryGuard rejects a nested Run while an episode is active.
func TestLoop_ReentryGuard(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		notifier := new(countingNotifier)
		sampler := &scriptedSampler{frames: intruderFrames(2)}
		l := NewLoop(sampler, sim.New(nil).Set(), notifier, status.NewMemoryRepository(), 0)

		var nestedErr error

		sampler.onSample = func() {
			if nestedErr == nil {
				_, nestedErr = l.Run(context.Background())
			}
		}

		_, err := l.Run(context.Background())
		require.NoError(t, err)
		require.ErrorIs(t, nestedErr, ErrAlertInProgress)
		require.Len(t, notifier.messages, 1)

		// A later episode is allowed and notifies again.
		sampler.onSample = nil
		sampler.frames = intruderFrames(1)

		_, err = l.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, notifier.messages, 2)
	})
}

// TestLoop_FailSoft keeps alerting through notification failures and stops on sensor loss or shutdown.
func TestLoop_FailSoft(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		notifier := &countingNotifier{err: errBusDown}
		sampler := &scriptedSampler{frames: intruderFrames(5), errAt: 3}
		l := NewLoop(sampler, sim.New(nil).Set(), notifier, status.NewMemoryRepository(), 0)

		episode, err := l.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, 3, episode.Flashes)
		require.Len(t, notifier.messages, 1)

		sampler = &scriptedSampler{frames: intruderFrames(100)}
		l = NewLoop(sampler, sim.New(nil).Set(), new(countingNotifier), status.NewMemoryRepository(), 0)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err = l.Run(ctx)
		require.NoError(t, err)
		require.False(t, l.Active())
		require.Less(t, sampler.calls, 100)
	})
}
