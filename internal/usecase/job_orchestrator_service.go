package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fitpulse/ranking-engine/internal/platform/logging"
)

const recalculateJobPath = "/v1/internal/jobs/recalculate"

// JobQueue enqueues a deferred HTTP callback job.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// JobOrchestratorService keeps the periodic recalculation chain alive:
// each queued job recomputes every cohort and enqueues its own successor.
type JobOrchestratorService struct {
	aggregator *AggregatorService
	queue      JobQueue
	interval   time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewJobOrchestratorService(
	aggregator *AggregatorService,
	queue JobQueue,
	interval time.Duration,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &JobOrchestratorService{
		aggregator: aggregator,
		queue:      queue,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Bootstrap seeds the job chain with an immediate recalculation job.
// Deduplication makes it safe to call from every replica at startup.
func (s *JobOrchestratorService) Bootstrap(ctx context.Context) error {
	return s.enqueueNext(ctx, 0)
}

// RunRecalculateJob executes one full recalculation pass and enqueues the
// next one. A failed enqueue is logged but does not fail the run: the
// result of the completed pass still counts.
func (s *JobOrchestratorService) RunRecalculateJob(ctx context.Context) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunRecalculateJob")
	defer span.End()

	result, err := s.aggregator.RecalculateAll(ctx)
	if err != nil {
		return RecalculateResult{}, err
	}

	if err := s.enqueueNext(ctx, s.interval); err != nil {
		s.logger.WarnContext(ctx, "enqueue next recalculation failed",
			"run_id", result.RunID,
			"error", err,
		)
	}

	return result, nil
}

func (s *JobOrchestratorService) enqueueNext(ctx context.Context, delay time.Duration) error {
	now := s.now().UTC()
	dedupID := dedupKey("recalculate", now.Add(delay), s.interval)
	payload := map[string]any{
		"dispatch_id": dedupID,
	}
	if err := s.queue.Enqueue(ctx, recalculateJobPath, payload, delay, dedupID); err != nil {
		return fmt.Errorf("enqueue recalculate job: %w", err)
	}
	return nil
}

func dedupKey(prefix string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
