package postgres

import (
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
)

type metricTableModel struct {
	UserID              string    `db:"user_id"`
	MaxWeightLifted     float64   `db:"max_weight_lifted"`
	TotalWorkouts       int       `db:"total_workouts"`
	WorkoutStreak       int       `db:"workout_streak"`
	ConsistencyScore    float64   `db:"consistency_score"`
	ImprovementRate     float64   `db:"improvement_rate"`
	TotalCaloriesBurned float64   `db:"total_calories_burned"`
	AverageHeartRate    float64   `db:"average_heart_rate"`
	FlexibilityScore    float64   `db:"flexibility_score"`
	EnduranceScore      float64   `db:"endurance_score"`
	LastWorkoutDate     time.Time `db:"last_workout_date"`
	UpdatedAt           time.Time `db:"updated_at"`
}

func (m metricTableModel) toDomain() metric.Record {
	return metric.Record{
		UserID:              m.UserID,
		MaxWeightLifted:     m.MaxWeightLifted,
		TotalWorkouts:       m.TotalWorkouts,
		WorkoutStreak:       m.WorkoutStreak,
		ConsistencyScore:    m.ConsistencyScore,
		ImprovementRate:     m.ImprovementRate,
		TotalCaloriesBurned: m.TotalCaloriesBurned,
		AverageHeartRate:    m.AverageHeartRate,
		FlexibilityScore:    m.FlexibilityScore,
		EnduranceScore:      m.EnduranceScore,
		LastWorkoutDate:     m.LastWorkoutDate,
		LastUpdated:         m.UpdatedAt,
	}
}

func metricModelFromDomain(record metric.Record) metricTableModel {
	return metricTableModel{
		UserID:              record.UserID,
		MaxWeightLifted:     record.MaxWeightLifted,
		TotalWorkouts:       record.TotalWorkouts,
		WorkoutStreak:       record.WorkoutStreak,
		ConsistencyScore:    record.ConsistencyScore,
		ImprovementRate:     record.ImprovementRate,
		TotalCaloriesBurned: record.TotalCaloriesBurned,
		AverageHeartRate:    record.AverageHeartRate,
		FlexibilityScore:    record.FlexibilityScore,
		EnduranceScore:      record.EnduranceScore,
		LastWorkoutDate:     record.LastWorkoutDate,
		UpdatedAt:           record.LastUpdated,
	}
}
