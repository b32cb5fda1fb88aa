package metric

import (
	"context"
	"time"
)

type Repository interface {
	GetByUser(ctx context.Context, userID string) (Record, bool, error)
	Upsert(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	// ListActiveSince returns records whose last workout is at or after the
	// cutoff. Used for the weekly/monthly cohort activity windows.
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]Record, error)
}
