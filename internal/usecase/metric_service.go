package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

// Invalidator marks leaderboard cohorts stale after a write so the next
// read recomputes them.
type Invalidator interface {
	Invalidate(cohorts ...ranking.Cohort)
}

// MetricService owns metric ingestion. Writes are merge-upserts: a partial
// payload only overwrites the fields it carries.
type MetricService struct {
	metricRepo  metric.Repository
	invalidator Invalidator
	now         func() time.Time
}

func NewMetricService(metricRepo metric.Repository, invalidator Invalidator) *MetricService {
	return &MetricService{
		metricRepo:  metricRepo,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// Submit validates and merges a partial metric payload into the stored
// record. A payload with any negative measurement is rejected whole; the
// stored record is untouched.
func (s *MetricService) Submit(ctx context.Context, userID string, update metric.Update) (metric.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetricService.Submit")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return metric.Record{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := update.Validate(); err != nil {
		return metric.Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	base, _, err := s.metricRepo.GetByUser(ctx, userID)
	if err != nil {
		return metric.Record{}, fmt.Errorf("get metric record user=%s: %w", userID, err)
	}
	base.UserID = userID

	merged := metric.Merge(base, update, s.now().UTC())
	if err := s.metricRepo.Upsert(ctx, merged); err != nil {
		return metric.Record{}, fmt.Errorf("upsert metric record user=%s: %w", userID, err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
	return merged, nil
}

func (s *MetricService) Get(ctx context.Context, userID string) (metric.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetricService.Get")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return metric.Record{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	record, exists, err := s.metricRepo.GetByUser(ctx, userID)
	if err != nil {
		return metric.Record{}, fmt.Errorf("get metric record user=%s: %w", userID, err)
	}
	if !exists {
		return metric.Record{}, fmt.Errorf("%w: no metrics for user %s", ErrNotFound, userID)
	}
	return record, nil
}
