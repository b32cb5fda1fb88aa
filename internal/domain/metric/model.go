package metric

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegativeValue rejects metric payloads carrying a negative measurement.
// The previously stored record is never touched when this is returned.
var ErrNegativeValue = errors.New("metric value cannot be negative")

// Record is the per-user fitness metric row, the only source of truth for
// score computation. It is owned by the ingestion path; the ranking engine
// reads it and never mutates it.
type Record struct {
	UserID              string
	MaxWeightLifted     float64
	TotalWorkouts       int
	WorkoutStreak       int
	ConsistencyScore    float64
	ImprovementRate     float64
	TotalCaloriesBurned float64
	AverageHeartRate    float64
	FlexibilityScore    float64
	EnduranceScore      float64
	LastWorkoutDate     time.Time
	LastUpdated         time.Time
}

// Update carries a partial metric payload. Nil fields keep the stored value.
type Update struct {
	MaxWeightLifted     *float64
	TotalWorkouts       *int
	WorkoutStreak       *int
	ConsistencyScore    *float64
	ImprovementRate     *float64
	TotalCaloriesBurned *float64
	AverageHeartRate    *float64
	FlexibilityScore    *float64
	EnduranceScore      *float64
	LastWorkoutDate     *time.Time
}

func (u Update) Validate() error {
	checks := []struct {
		name  string
		value *float64
	}{
		{"maxWeightLifted", u.MaxWeightLifted},
		{"consistencyScore", u.ConsistencyScore},
		{"improvementRate", u.ImprovementRate},
		{"totalCaloriesBurned", u.TotalCaloriesBurned},
		{"averageHeartRate", u.AverageHeartRate},
		{"flexibilityScore", u.FlexibilityScore},
		{"enduranceScore", u.EnduranceScore},
	}
	for _, check := range checks {
		if check.value != nil && *check.value < 0 {
			return fmt.Errorf("%w: %s=%v", ErrNegativeValue, check.name, *check.value)
		}
	}
	if u.TotalWorkouts != nil && *u.TotalWorkouts < 0 {
		return fmt.Errorf("%w: totalWorkouts=%d", ErrNegativeValue, *u.TotalWorkouts)
	}
	if u.WorkoutStreak != nil && *u.WorkoutStreak < 0 {
		return fmt.Errorf("%w: workoutStreak=%d", ErrNegativeValue, *u.WorkoutStreak)
	}
	return nil
}

// Merge applies a validated partial update over the stored record.
func Merge(base Record, update Update, now time.Time) Record {
	out := base
	if update.MaxWeightLifted != nil {
		out.MaxWeightLifted = *update.MaxWeightLifted
	}
	if update.TotalWorkouts != nil {
		out.TotalWorkouts = *update.TotalWorkouts
	}
	if update.WorkoutStreak != nil {
		out.WorkoutStreak = *update.WorkoutStreak
	}
	if update.ConsistencyScore != nil {
		out.ConsistencyScore = *update.ConsistencyScore
	}
	if update.ImprovementRate != nil {
		out.ImprovementRate = *update.ImprovementRate
	}
	if update.TotalCaloriesBurned != nil {
		out.TotalCaloriesBurned = *update.TotalCaloriesBurned
	}
	if update.AverageHeartRate != nil {
		out.AverageHeartRate = *update.AverageHeartRate
	}
	if update.FlexibilityScore != nil {
		out.FlexibilityScore = *update.FlexibilityScore
	}
	if update.EnduranceScore != nil {
		out.EnduranceScore = *update.EnduranceScore
	}
	if update.LastWorkoutDate != nil {
		out.LastWorkoutDate = *update.LastWorkoutDate
	}
	out.LastUpdated = now
	return out
}
