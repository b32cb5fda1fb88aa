package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/domain/user"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
	"github.com/fitpulse/ranking-engine/internal/platform/resilience"
)

const defaultAggregatorEnsureInterval = 15 * time.Second

// AggregatorService recomputes leaderboard snapshots from metric records.
// Each recompute is a full pass over a cohort: score every member, sort,
// assign ranks and tiers, diff against the previous snapshot, then swap the
// snapshot atomically and publish it.
type AggregatorService struct {
	metricRepo     metric.Repository
	weightsRepo    weights.Repository
	snapshotRepo   ranking.SnapshotRepository
	directory      user.Directory
	publisher      ranking.Publisher
	thresholds     ranking.TierThresholds
	logger         *logging.Logger
	now            func() time.Time
	scoreFlight    resilience.SingleFlight
	ensureMu       sync.Mutex
	lastEnsureAt   map[ranking.Cohort]time.Time
	ensureInterval time.Duration
	poolSize       int
}

// RecalculateResult summarizes one full recalculation run.
type RecalculateResult struct {
	RunID          string
	ProcessedUsers int
	Cohorts        []ranking.Cohort
	StartedAt      time.Time
	FinishedAt     time.Time
}

func NewAggregatorService(
	metricRepo metric.Repository,
	weightsRepo weights.Repository,
	snapshotRepo ranking.SnapshotRepository,
	directory user.Directory,
	publisher ranking.Publisher,
	logger *logging.Logger,
) *AggregatorService {
	return &AggregatorService{
		metricRepo:     metricRepo,
		weightsRepo:    weightsRepo,
		snapshotRepo:   snapshotRepo,
		directory:      directory,
		publisher:      publisher,
		thresholds:     ranking.DefaultTierThresholds(),
		logger:         logger,
		now:            time.Now,
		lastEnsureAt:   make(map[ranking.Cohort]time.Time),
		ensureInterval: defaultAggregatorEnsureInterval,
		poolSize:       runtime.GOMAXPROCS(0),
	}
}

// EnsureFresh recomputes the cohort's snapshot unless one was computed
// recently. Concurrent callers for the same cohort share a single run.
func (s *AggregatorService) EnsureFresh(ctx context.Context, cohort ranking.Cohort) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregatorService.EnsureFresh")
	defer span.End()

	now := s.now().UTC()
	if s.shouldSkipEnsure(cohort, now) {
		return nil
	}

	key := "ranking:ensure:" + string(cohort)
	_, err, _ := s.scoreFlight.Do(key, func() (any, error) {
		runNow := s.now().UTC()
		if s.shouldSkipEnsure(cohort, runNow) {
			return nil, nil
		}
		if _, runErr := s.RecomputeCohort(ctx, cohort); runErr != nil {
			return nil, runErr
		}
		s.markEnsure(cohort, runNow)
		return nil, nil
	})
	return err
}

// Invalidate forgets the cohort's freshness marker so the next read-path
// ensure triggers a recompute. Called after metric or weight writes.
func (s *AggregatorService) Invalidate(cohorts ...ranking.Cohort) {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if len(cohorts) == 0 {
		cohorts = ranking.Cohorts()
	}
	for _, cohort := range cohorts {
		delete(s.lastEnsureAt, cohort)
	}
}

// RecalculateAll runs a full recompute of every cohort. Used by the
// periodic job and the admin recalculation endpoint.
func (s *AggregatorService) RecalculateAll(ctx context.Context) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregatorService.RecalculateAll")
	defer span.End()

	result := RecalculateResult{
		RunID:     uuid.NewString(),
		Cohorts:   ranking.Cohorts(),
		StartedAt: s.now().UTC(),
	}

	seen := make(map[string]struct{})
	for _, cohort := range result.Cohorts {
		snapshot, err := s.RecomputeCohort(ctx, cohort)
		if err != nil {
			return RecalculateResult{}, err
		}
		for _, entry := range snapshot.Rankings {
			seen[entry.UserID] = struct{}{}
		}
		s.markEnsure(cohort, s.now().UTC())
	}

	result.ProcessedUsers = len(seen)
	result.FinishedAt = s.now().UTC()

	s.logger.InfoContext(ctx, "leaderboard recalculation finished",
		"runId", result.RunID,
		"processedUsers", result.ProcessedUsers,
		"durationMs", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	)
	return result, nil
}

// RecomputeCohort performs one full aggregation pass for a cohort and
// returns the snapshot that ended up stored. Concurrent recomputes of the
// same cohort share a single pass: late callers wait for the in-flight run
// and receive its snapshot instead of scoring the cohort again.
func (s *AggregatorService) RecomputeCohort(ctx context.Context, cohort ranking.Cohort) (ranking.Snapshot, error) {
	key := "ranking:recompute:" + string(cohort)
	v, err, _ := s.scoreFlight.Do(key, func() (any, error) {
		return s.recomputeCohort(ctx, cohort)
	})
	if err != nil {
		return ranking.Snapshot{}, err
	}
	snapshot, ok := v.(ranking.Snapshot)
	if !ok {
		return ranking.Snapshot{}, nil
	}
	return snapshot, nil
}

// recomputeCohort is the single-flighted body of RecomputeCohort. When a
// concurrent run already persisted a newer snapshot, that newer snapshot
// wins and no publish happens for this run.
func (s *AggregatorService) recomputeCohort(ctx context.Context, cohort ranking.Cohort) (ranking.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregatorService.RecomputeCohort")
	defer span.End()

	cfg, err := s.weightsRepo.Get(ctx)
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("get weight config for recompute: %w", err)
	}
	// An invalid stored configuration aborts the run and leaves the
	// previous snapshot in place. Weights are never renormalized here.
	if err := cfg.Validate(); err != nil {
		return ranking.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	computedAt := s.now().UTC()
	records, err := s.listCohortRecords(ctx, cohort, computedAt)
	if err != nil {
		return ranking.Snapshot{}, err
	}

	scored, err := s.scoreRecords(ctx, records, cfg)
	if err != nil {
		return ranking.Snapshot{}, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].breakdown.TotalScore != scored[j].breakdown.TotalScore {
			return scored[i].breakdown.TotalScore > scored[j].breakdown.TotalScore
		}
		return scored[i].record.UserID < scored[j].record.UserID
	})

	previous, hasPrevious, err := s.snapshotRepo.GetByCohort(ctx, cohort)
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("get previous snapshot cohort=%s: %w", cohort, err)
	}

	profiles, err := s.lookupProfiles(ctx, scored)
	if err != nil {
		return ranking.Snapshot{}, err
	}

	totalUsers := len(scored)
	entries := make([]ranking.Entry, 0, totalUsers)
	for i, row := range scored {
		rank := i + 1
		entry := ranking.Entry{
			UserID:      row.record.UserID,
			Score:       row.breakdown.TotalScore,
			Tier:        s.thresholds.Classify(rank, totalUsers),
			CurrentRank: rank,
			RankChange:  ranking.RankChangeNone,
			TotalUsers:  totalUsers,
		}
		if profile, ok := profiles[row.record.UserID]; ok {
			entry.DisplayName = profile.DisplayName
			entry.PhotoURL = profile.PhotoURL
		}
		if hasPrevious {
			if prev, ok := previous.EntryByUser(row.record.UserID); ok {
				entry.PreviousRank = prev.CurrentRank
				entry.RankDelta = prev.CurrentRank - rank
				switch {
				case entry.RankDelta > 0:
					entry.RankChange = ranking.RankChangeUp
				case entry.RankDelta < 0:
					entry.RankChange = ranking.RankChangeDown
				}
			}
		}
		entries = append(entries, entry)
	}

	snapshot := ranking.NewSnapshot(cohort, entries, computedAt, cfg.Version, uuid.NewString())

	stored, err := s.snapshotRepo.Replace(ctx, snapshot)
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("replace snapshot cohort=%s: %w", cohort, err)
	}
	if !stored {
		// A newer snapshot beat this run to the store. Return the
		// stored one so callers still see the freshest state.
		latest, ok, getErr := s.snapshotRepo.GetByCohort(ctx, cohort)
		if getErr != nil {
			return ranking.Snapshot{}, fmt.Errorf("get winning snapshot cohort=%s: %w", cohort, getErr)
		}
		if ok {
			return latest, nil
		}
		return snapshot, nil
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, snapshot)
	}
	return snapshot, nil
}

type scoredRecord struct {
	record    metric.Record
	breakdown ranking.ScoreBreakdown
}

func (s *AggregatorService) listCohortRecords(ctx context.Context, cohort ranking.Cohort, now time.Time) ([]metric.Record, error) {
	window := cohort.ActivityWindow()
	if window <= 0 {
		records, err := s.metricRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list metric records cohort=%s: %w", cohort, err)
		}
		return records, nil
	}
	records, err := s.metricRepo.ListActiveSince(ctx, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("list active metric records cohort=%s: %w", cohort, err)
	}
	return records, nil
}

// scoreRecords fans scoring out over a bounded worker pool. Scoring is pure
// so the only shared state is the preallocated result slot per record.
func (s *AggregatorService) scoreRecords(ctx context.Context, records []metric.Record, cfg weights.Config) ([]scoredRecord, error) {
	out := make([]scoredRecord, len(records))
	if len(records) == 0 {
		return out, nil
	}

	size := s.poolSize
	if size <= 0 {
		size = 1
	}
	if size > len(records) {
		size = len(records)
	}
	if size == 1 {
		for i, record := range records {
			out[i] = scoredRecord{record: record, breakdown: ranking.Score(record, cfg)}
		}
		return out, nil
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range records {
		i := i
		wg.Add(1)
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			out[i] = scoredRecord{record: records[i], breakdown: ranking.Score(records[i], cfg)}
		}); submitErr != nil {
			wg.Done()
			out[i] = scoredRecord{record: records[i], breakdown: ranking.Score(records[i], cfg)}
		}
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return out, nil
}

func (s *AggregatorService) lookupProfiles(ctx context.Context, scored []scoredRecord) (map[string]user.Profile, error) {
	if s.directory == nil || len(scored) == 0 {
		return map[string]user.Profile{}, nil
	}
	ids := make([]string, 0, len(scored))
	for _, row := range scored {
		ids = append(ids, row.record.UserID)
	}
	profiles, err := s.directory.GetProfiles(ctx, ids)
	if err != nil {
		// Profiles only decorate leaderboard rows. A directory outage
		// must not block ranking, so log and continue with bare ids.
		s.logger.WarnContext(ctx, "profile lookup failed, publishing without display names", "error", err.Error())
		return map[string]user.Profile{}, nil
	}
	return profiles, nil
}

func (s *AggregatorService) shouldSkipEnsure(cohort ranking.Cohort, now time.Time) bool {
	if s.ensureInterval <= 0 || cohort == "" {
		return false
	}
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	last, ok := s.lastEnsureAt[cohort]
	if !ok || last.IsZero() {
		return false
	}
	return now.Sub(last) < s.ensureInterval
}

func (s *AggregatorService) markEnsure(cohort ranking.Cohort, now time.Time) {
	if cohort == "" {
		return
	}
	s.ensureMu.Lock()
	s.lastEnsureAt[cohort] = now
	s.ensureMu.Unlock()
}
