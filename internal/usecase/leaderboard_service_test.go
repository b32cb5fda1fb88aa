package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/repository/memory"
	"github.com/fitpulse/ranking-engine/internal/platform/cache"
)

type captureFreshener struct {
	mu    sync.Mutex
	calls []ranking.Cohort
}

func (f *captureFreshener) EnsureFresh(_ context.Context, cohort ranking.Cohort) error {
	f.mu.Lock()
	f.calls = append(f.calls, cohort)
	f.mu.Unlock()
	return nil
}

func seedSnapshot(t *testing.T, repo *memory.SnapshotRepository, cohort ranking.Cohort, userIDs ...string) ranking.Snapshot {
	t.Helper()

	entries := make([]ranking.Entry, 0, len(userIDs))
	for i, id := range userIDs {
		entries = append(entries, ranking.Entry{
			UserID:      id,
			Score:       float64(100 - i),
			CurrentRank: i + 1,
			TotalUsers:  len(userIDs),
			Tier:        ranking.TierGold,
			RankChange:  ranking.RankChangeNone,
		})
	}
	snapshot := ranking.NewSnapshot(cohort, entries, time.Now().UTC(), 1, "run-seed")
	stored, err := repo.Replace(context.Background(), snapshot)
	if err != nil || !stored {
		t.Fatalf("seed snapshot: stored=%t err=%v", stored, err)
	}
	return snapshot
}

func TestGetLeaderboard_PaginationAndLimits(t *testing.T) {
	t.Parallel()

	repo := memory.NewSnapshotRepository()
	ids := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		ids = append(ids, userIDForIndex(i))
	}
	seedSnapshot(t, repo, ranking.CohortOverall, ids...)

	freshener := &captureFreshener{}
	svc := NewLeaderboardService(repo, freshener, nil)

	page, err := svc.GetLeaderboard(context.Background(), ranking.CohortOverall, 0, 0)
	if err != nil {
		t.Fatalf("default page: %v", err)
	}
	if len(page.Entries) != DefaultLeaderboardLimit {
		t.Fatalf("default limit: got=%d want=%d", len(page.Entries), DefaultLeaderboardLimit)
	}
	if page.TotalUsers != 120 {
		t.Fatalf("total users: got=%d want=120", page.TotalUsers)
	}

	page, err = svc.GetLeaderboard(context.Background(), ranking.CohortOverall, 0, 500)
	if err != nil {
		t.Fatalf("oversized limit: %v", err)
	}
	if len(page.Entries) != MaxLeaderboardLimit {
		t.Fatalf("limit cap: got=%d want=%d", len(page.Entries), MaxLeaderboardLimit)
	}

	page, err = svc.GetLeaderboard(context.Background(), ranking.CohortOverall, 118, 10)
	if err != nil {
		t.Fatalf("tail page: %v", err)
	}
	if len(page.Entries) != 2 {
		t.Fatalf("tail page length: got=%d want=2", len(page.Entries))
	}

	if _, err := svc.GetLeaderboard(context.Background(), ranking.CohortOverall, -1, 10); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative offset: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.GetLeaderboard(context.Background(), ranking.CohortOverall, 0, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative limit: expected ErrInvalidInput, got %v", err)
	}

	if len(freshener.calls) == 0 {
		t.Fatal("reads must trigger an ensure-fresh pass")
	}
}

func TestGetLeaderboard_MissingSnapshotYieldsEmptyBoard(t *testing.T) {
	t.Parallel()

	svc := NewLeaderboardService(memory.NewSnapshotRepository(), &captureFreshener{}, nil)

	page, err := svc.GetLeaderboard(context.Background(), ranking.CohortWeekly, 0, 10)
	if err != nil {
		t.Fatalf("empty board must not error: %v", err)
	}
	if page.TotalUsers != 0 || len(page.Entries) != 0 {
		t.Fatalf("expected empty page, got=%+v", page)
	}
}

func TestGetLeaderboard_CachedPagesMatchUncached(t *testing.T) {
	t.Parallel()

	repo := memory.NewSnapshotRepository()
	seedSnapshot(t, repo, ranking.CohortOverall, "user-a", "user-b", "user-c")

	cached := NewLeaderboardService(repo, &captureFreshener{}, cache.NewStore(time.Minute))
	plain := NewLeaderboardService(repo, &captureFreshener{}, nil)

	for i := 0; i < 3; i++ {
		fromCache, err := cached.GetLeaderboard(context.Background(), ranking.CohortOverall, 1, 2)
		if err != nil {
			t.Fatalf("cached read: %v", err)
		}
		direct, err := plain.GetLeaderboard(context.Background(), ranking.CohortOverall, 1, 2)
		if err != nil {
			t.Fatalf("direct read: %v", err)
		}
		if len(fromCache.Entries) != len(direct.Entries) {
			t.Fatalf("cached/direct mismatch: %d vs %d", len(fromCache.Entries), len(direct.Entries))
		}
		for j := range direct.Entries {
			if fromCache.Entries[j].UserID != direct.Entries[j].UserID {
				t.Fatalf("cached entry %d mismatch: %s vs %s", j, fromCache.Entries[j].UserID, direct.Entries[j].UserID)
			}
		}
	}
}

func TestGetUserRanking(t *testing.T) {
	t.Parallel()

	repo := memory.NewSnapshotRepository()
	seedSnapshot(t, repo, ranking.CohortOverall, "user-a", "user-b")
	svc := NewLeaderboardService(repo, &captureFreshener{}, nil)

	entry, err := svc.GetUserRanking(context.Background(), ranking.CohortOverall, "user-b")
	if err != nil {
		t.Fatalf("get user ranking: %v", err)
	}
	if entry.CurrentRank != 2 {
		t.Fatalf("rank: got=%d want=2", entry.CurrentRank)
	}

	if _, err := svc.GetUserRanking(context.Background(), ranking.CohortOverall, "user-z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unranked user: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetUserRanking(context.Background(), ranking.CohortOverall, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank user: expected ErrInvalidInput, got %v", err)
	}
}

func TestGetUserRankings_AcrossCohorts(t *testing.T) {
	t.Parallel()

	repo := memory.NewSnapshotRepository()
	seedSnapshot(t, repo, ranking.CohortOverall, "user-a", "user-b")
	seedSnapshot(t, repo, ranking.CohortWeekly, "user-a")
	svc := NewLeaderboardService(repo, &captureFreshener{}, nil)

	rankings, err := svc.GetUserRankings(context.Background(), "user-a")
	if err != nil {
		t.Fatalf("get user rankings: %v", err)
	}

	if len(rankings) != 2 {
		t.Fatalf("user-a should rank in two cohorts, got=%v", rankings)
	}
	if rankings[ranking.CohortOverall].CurrentRank != 1 {
		t.Fatalf("overall rank: got=%+v", rankings[ranking.CohortOverall])
	}
	if _, ok := rankings[ranking.CohortMonthly]; ok {
		t.Fatal("user-a must not appear in the empty monthly cohort")
	}
}

func userIDForIndex(i int) string {
	// Zero-padded so lexical order matches rank order in fixtures.
	const digits = "0123456789"
	return "user-" + string([]byte{digits[i/100%10], digits[i/10%10], digits[i%10]})
}
