package status

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/door-guard/internal/domain/access"
)

// TestMemoryRepository_Defaults verifies a fresh repository reports a locked door.
func TestMemoryRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()

	s, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, access.Locked, s.Lock)
	require.False(t, s.UpdatedAt.IsZero())
}

// TestMemoryRepository_UpdateLoad checks that Load returns a detached copy of the update.
func TestMemoryRepository_UpdateLoad(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, func(s *access.Snapshot) {
		s.Lock = access.Unlocked
		s.LastGranted = "Along"
	}))

	first, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, access.Unlocked, first.Lock)
	require.Equal(t, "Along", first.LastGranted)

	first.LastGranted = "tampered"

	second, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Along", second.LastGranted)
}

// TestMemoryRepository_Concurrent exercises readers alongside the writer.
func TestMemoryRepository_Concurrent(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup

	for range 4 {
		wg.Go(func() {
			for range 100 {
				_, err := repo.Load(ctx)
				require.NoError(t, err)
			}
		})
	}

	for range 100 {
		require.NoError(t, repo.Update(ctx, func(s *access.Snapshot) { s.Cycles++ }))
	}

	wg.Wait()

	s, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(100), s.Cycles)
}
