package memory

import (
	"context"
	"sync"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[ranking.Cohort]ranking.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{items: make(map[ranking.Cohort]ranking.Snapshot)}
}

func (r *SnapshotRepository) GetByCohort(_ context.Context, cohort ranking.Cohort) (ranking.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.items[cohort]
	if !ok {
		return ranking.Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

// Replace stores the snapshot unless the stored one is newer. Overlapping
// recompute runs can finish out of order; the freshest ComputedAt wins.
func (r *SnapshotRepository) Replace(_ context.Context, snapshot ranking.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[snapshot.Cohort]
	if ok && current.ComputedAt.After(snapshot.ComputedAt) {
		return false, nil
	}
	r.items[snapshot.Cohort] = snapshot
	return true, nil
}
