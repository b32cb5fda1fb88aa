package ranking

import "context"

type SnapshotRepository interface {
	GetByCohort(ctx context.Context, cohort Cohort) (Snapshot, bool, error)
	// Replace persists the snapshot unless a newer one (by ComputedAt) is
	// already stored. It reports whether the snapshot was written.
	Replace(ctx context.Context, snapshot Snapshot) (bool, error)
}

// Publisher fans a freshly persisted snapshot out to subscribed viewers.
// Implementations must be atomic from a reader's perspective: a subscriber
// observes either the previous snapshot or the new one, never a mix.
type Publisher interface {
	Publish(ctx context.Context, snapshot Snapshot)
}
