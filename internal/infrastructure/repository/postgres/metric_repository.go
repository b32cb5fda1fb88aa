package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
)

type MetricRepository struct {
	db *sqlx.DB
}

func NewMetricRepository(db *sqlx.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

const metricColumns = `user_id, max_weight_lifted, total_workouts, workout_streak,
consistency_score, improvement_rate, total_calories_burned, average_heart_rate,
flexibility_score, endurance_score, last_workout_date, updated_at`

func (r *MetricRepository) GetByUser(ctx context.Context, userID string) (metric.Record, bool, error) {
	query := `SELECT ` + metricColumns + ` FROM fitness_metrics WHERE user_id = $1`

	var row metricTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return metric.Record{}, false, nil
		}
		return metric.Record{}, false, fmt.Errorf("get fitness metrics: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MetricRepository) Upsert(ctx context.Context, record metric.Record) error {
	query := `INSERT INTO fitness_metrics (` + metricColumns + `)
VALUES (:user_id, :max_weight_lifted, :total_workouts, :workout_streak,
        :consistency_score, :improvement_rate, :total_calories_burned, :average_heart_rate,
        :flexibility_score, :endurance_score, :last_workout_date, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET
    max_weight_lifted = EXCLUDED.max_weight_lifted,
    total_workouts = EXCLUDED.total_workouts,
    workout_streak = EXCLUDED.workout_streak,
    consistency_score = EXCLUDED.consistency_score,
    improvement_rate = EXCLUDED.improvement_rate,
    total_calories_burned = EXCLUDED.total_calories_burned,
    average_heart_rate = EXCLUDED.average_heart_rate,
    flexibility_score = EXCLUDED.flexibility_score,
    endurance_score = EXCLUDED.endurance_score,
    last_workout_date = EXCLUDED.last_workout_date,
    updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, metricModelFromDomain(record)); err != nil {
		return fmt.Errorf("upsert fitness metrics: %w", err)
	}
	return nil
}

func (r *MetricRepository) List(ctx context.Context) ([]metric.Record, error) {
	query := `SELECT ` + metricColumns + ` FROM fitness_metrics ORDER BY user_id`

	var rows []metricTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list fitness metrics: %w", err)
	}

	out := make([]metric.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MetricRepository) ListActiveSince(ctx context.Context, cutoff time.Time) ([]metric.Record, error) {
	query := `SELECT ` + metricColumns + ` FROM fitness_metrics
WHERE last_workout_date >= $1 ORDER BY user_id`

	var rows []metricTableModel
	if err := r.db.SelectContext(ctx, &rows, query, cutoff); err != nil {
		return nil, fmt.Errorf("list active fitness metrics: %w", err)
	}

	out := make([]metric.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
