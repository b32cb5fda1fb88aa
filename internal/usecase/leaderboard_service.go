package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/platform/cache"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
)

// LeaderboardPage is one paginated view of a cohort snapshot.
type LeaderboardPage struct {
	Cohort         ranking.Cohort
	Entries        []ranking.Entry
	TotalUsers     int
	Offset         int
	Limit          int
	ComputedAt     time.Time
	WeightsVersion int64
}

// Freshener brings a cohort snapshot up to date before a read.
type Freshener interface {
	EnsureFresh(ctx context.Context, cohort ranking.Cohort) error
}

// LeaderboardService serves read queries against published snapshots.
// Cache keys embed the snapshot's ComputedAt, so a fresh snapshot naturally
// misses the cache and stale pages age out by TTL.
type LeaderboardService struct {
	snapshotRepo ranking.SnapshotRepository
	freshener    Freshener
	pages        *cache.Store
}

func NewLeaderboardService(snapshotRepo ranking.SnapshotRepository, freshener Freshener, pages *cache.Store) *LeaderboardService {
	return &LeaderboardService{
		snapshotRepo: snapshotRepo,
		freshener:    freshener,
		pages:        pages,
	}
}

// GetLeaderboard returns one page of the cohort leaderboard, newest
// snapshot first. An empty cohort yields an empty page, never an error.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, cohort ranking.Cohort, offset, limit int) (LeaderboardPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	if offset < 0 {
		return LeaderboardPage{}, fmt.Errorf("%w: offset cannot be negative", ErrInvalidInput)
	}
	if limit < 0 {
		return LeaderboardPage{}, fmt.Errorf("%w: limit cannot be negative", ErrInvalidInput)
	}
	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	snapshot, err := s.latestSnapshot(ctx, cohort)
	if err != nil {
		return LeaderboardPage{}, err
	}

	page := LeaderboardPage{
		Cohort:         cohort,
		TotalUsers:     len(snapshot.Rankings),
		Offset:         offset,
		Limit:          limit,
		ComputedAt:     snapshot.ComputedAt,
		WeightsVersion: snapshot.WeightsVersion,
	}

	if s.pages == nil {
		page.Entries = snapshot.Page(offset, limit)
		return page, nil
	}

	key := pageCacheKey(cohort, snapshot.ComputedAt, offset, limit)
	cached, err := s.pages.GetOrLoad(ctx, key, func(context.Context) (any, error) {
		return snapshot.Page(offset, limit), nil
	})
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("load leaderboard page cohort=%s: %w", cohort, err)
	}
	entries, ok := cached.([]ranking.Entry)
	if !ok {
		entries = snapshot.Page(offset, limit)
	}
	page.Entries = entries
	return page, nil
}

// GetUserRanking returns the user's entry in the cohort, or ErrNotFound
// when the user is absent (no metrics, or outside the activity window).
func (s *LeaderboardService) GetUserRanking(ctx context.Context, cohort ranking.Cohort, userID string) (ranking.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserRanking")
	defer span.End()

	if userID == "" {
		return ranking.Entry{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	snapshot, err := s.latestSnapshot(ctx, cohort)
	if err != nil {
		return ranking.Entry{}, err
	}

	entry, ok := snapshot.EntryByUser(userID)
	if !ok {
		return ranking.Entry{}, fmt.Errorf("%w: user %s is not ranked in cohort %s", ErrNotFound, userID, cohort)
	}
	return entry, nil
}

// GetUserRankings returns the user's entry across every cohort. Cohorts
// where the user is unranked are absent from the result.
func (s *LeaderboardService) GetUserRankings(ctx context.Context, userID string) (map[ranking.Cohort]ranking.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetUserRankings")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	out := make(map[ranking.Cohort]ranking.Entry, len(ranking.Cohorts()))
	for _, cohort := range ranking.Cohorts() {
		snapshot, err := s.latestSnapshot(ctx, cohort)
		if err != nil {
			return nil, err
		}
		if entry, ok := snapshot.EntryByUser(userID); ok {
			out[cohort] = entry
		}
	}
	return out, nil
}

func (s *LeaderboardService) latestSnapshot(ctx context.Context, cohort ranking.Cohort) (ranking.Snapshot, error) {
	if s.freshener != nil {
		if err := s.freshener.EnsureFresh(ctx, cohort); err != nil {
			return ranking.Snapshot{}, fmt.Errorf("ensure fresh snapshot cohort=%s: %w", cohort, err)
		}
	}
	snapshot, exists, err := s.snapshotRepo.GetByCohort(ctx, cohort)
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("get snapshot cohort=%s: %w", cohort, err)
	}
	if !exists {
		// No users yet: serve an empty board rather than an error.
		return ranking.Snapshot{Cohort: cohort}, nil
	}
	return snapshot, nil
}

func pageCacheKey(cohort ranking.Cohort, computedAt time.Time, offset, limit int) string {
	return "leaderboard:" + string(cohort) +
		":" + strconv.FormatInt(computedAt.UnixNano(), 10) +
		":" + strconv.Itoa(offset) +
		":" + strconv.Itoa(limit)
}
