package status

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/door-guard/internal/domain/access"
)

// Repository stores the device snapshot.
type Repository interface {
	Load(ctx context.Context) (*access.Snapshot, error)
	Update(ctx context.Context, mutate func(*access.Snapshot)) error
}

// MemoryRepository is a Repository guarded by a RWMutex.
type MemoryRepository struct {
	// snapshot is the current device view.
	snapshot access.Snapshot
	// mu protects snapshot against concurrent status readers.
	mu sync.RWMutex
}

// NewMemoryRepository returns a repository with a locked, idle snapshot.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		snapshot: access.Snapshot{
			Lock:      access.Locked,
			UpdatedAt: time.Now(),
		},
	}
}

// Load returns a copy of the current snapshot.
func (r *MemoryRepository) Load(_ context.Context) (*access.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot.Clone(), nil
}

// Update applies mutate under the write lock and stamps UpdatedAt.
func (r *MemoryRepository) Update(_ context.Context, mutate func(*access.Snapshot)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mutate(&r.snapshot)
	r.snapshot.UpdatedAt = time.Now()

	return nil
}
