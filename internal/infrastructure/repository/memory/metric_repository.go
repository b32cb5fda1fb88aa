package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
)

type MetricRepository struct {
	mu    sync.RWMutex
	items map[string]metric.Record
}

func NewMetricRepository(records []metric.Record) *MetricRepository {
	items := make(map[string]metric.Record, len(records))
	for _, record := range records {
		items[record.UserID] = record
	}
	return &MetricRepository{items: items}
}

func (r *MetricRepository) GetByUser(_ context.Context, userID string) (metric.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[userID]
	if !ok {
		return metric.Record{}, false, nil
	}
	return record, true, nil
}

func (r *MetricRepository) Upsert(_ context.Context, record metric.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[record.UserID] = record
	return nil
}

func (r *MetricRepository) List(_ context.Context) ([]metric.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metric.Record, 0, len(r.items))
	for _, record := range r.items {
		out = append(out, record)
	}
	sortRecords(out)
	return out, nil
}

func (r *MetricRepository) ListActiveSince(_ context.Context, cutoff time.Time) ([]metric.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metric.Record, 0, len(r.items))
	for _, record := range r.items {
		if record.LastWorkoutDate.Before(cutoff) {
			continue
		}
		out = append(out, record)
	}
	sortRecords(out)
	return out, nil
}

// sortRecords gives List a deterministic order so aggregation runs are
// reproducible regardless of map iteration.
func sortRecords(records []metric.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UserID < records[j].UserID
	})
}
