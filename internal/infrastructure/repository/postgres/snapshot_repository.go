package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) GetByCohort(ctx context.Context, cohort ranking.Cohort) (ranking.Snapshot, bool, error) {
	query := `SELECT cohort, rankings, computed_at, weights_version, run_id
FROM leaderboard_snapshots WHERE cohort = $1`

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, string(cohort)); err != nil {
		if isNotFound(err) {
			return ranking.Snapshot{}, false, nil
		}
		return ranking.Snapshot{}, false, fmt.Errorf("get leaderboard snapshot: %w", err)
	}

	entries, err := decodeRankings(row.Rankings)
	if err != nil {
		return ranking.Snapshot{}, false, err
	}
	return ranking.NewSnapshot(ranking.Cohort(row.Cohort), entries, row.ComputedAt, row.WeightsVersion, row.RunID), true, nil
}

// Replace swaps the cohort's snapshot in one statement. The conditional
// update keeps the store monotonic on computed_at when recompute runs
// overlap, so a slow older run never clobbers a newer board.
func (r *SnapshotRepository) Replace(ctx context.Context, snapshot ranking.Snapshot) (bool, error) {
	rankings, err := encodeRankings(snapshot.Rankings)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO leaderboard_snapshots (cohort, rankings, computed_at, weights_version, run_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cohort) DO UPDATE SET
    rankings = EXCLUDED.rankings,
    computed_at = EXCLUDED.computed_at,
    weights_version = EXCLUDED.weights_version,
    run_id = EXCLUDED.run_id
WHERE leaderboard_snapshots.computed_at <= EXCLUDED.computed_at`

	result, err := r.db.ExecContext(ctx, query,
		string(snapshot.Cohort), rankings, snapshot.ComputedAt, snapshot.WeightsVersion, snapshot.RunID)
	if err != nil {
		return false, fmt.Errorf("replace leaderboard snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("replace leaderboard snapshot rows affected: %w", err)
	}
	return affected > 0, nil
}
