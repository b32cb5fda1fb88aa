package memory

import (
	"context"
	"testing"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

func TestSnapshotRepositoryReplace_NewerWins(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	now := time.Now().UTC()

	older := ranking.NewSnapshot(ranking.CohortOverall, nil, now, 1, "run-old")
	newer := ranking.NewSnapshot(ranking.CohortOverall, nil, now.Add(time.Minute), 1, "run-new")

	if stored, err := repo.Replace(context.Background(), older); err != nil || !stored {
		t.Fatalf("first replace: stored=%t err=%v", stored, err)
	}
	if stored, err := repo.Replace(context.Background(), newer); err != nil || !stored {
		t.Fatalf("newer replace: stored=%t err=%v", stored, err)
	}

	// An out-of-order write of the older snapshot must be refused.
	stored, err := repo.Replace(context.Background(), older)
	if err != nil {
		t.Fatalf("stale replace: %v", err)
	}
	if stored {
		t.Fatal("stale snapshot must not overwrite a newer one")
	}

	got, ok, err := repo.GetByCohort(context.Background(), ranking.CohortOverall)
	if err != nil || !ok {
		t.Fatalf("get: ok=%t err=%v", ok, err)
	}
	if got.RunID != "run-new" {
		t.Fatalf("retained snapshot: got=%s want=run-new", got.RunID)
	}
}

func TestSnapshotRepository_CohortsIsolated(t *testing.T) {
	t.Parallel()

	repo := NewSnapshotRepository()
	now := time.Now().UTC()

	if _, err := repo.Replace(context.Background(), ranking.NewSnapshot(ranking.CohortWeekly, nil, now, 1, "run-weekly")); err != nil {
		t.Fatalf("replace weekly: %v", err)
	}

	if _, ok, _ := repo.GetByCohort(context.Background(), ranking.CohortOverall); ok {
		t.Fatal("overall cohort must be empty")
	}
	got, ok, _ := repo.GetByCohort(context.Background(), ranking.CohortWeekly)
	if !ok || got.RunID != "run-weekly" {
		t.Fatalf("weekly snapshot: got=(%s,%t)", got.RunID, ok)
	}
}
