package memory

import (
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/user"
)

// SeedMetrics returns a small demo population covering the interesting
// shapes: a power lifter, a cardio regular, a brand-new account, and a
// lapsed user who falls out of the weekly and monthly cohorts.
func SeedMetrics(now time.Time) []metric.Record {
	now = now.UTC()
	return []metric.Record{
		{
			UserID:              "user-aria",
			MaxWeightLifted:     220,
			TotalWorkouts:       180,
			WorkoutStreak:       21,
			ConsistencyScore:    88,
			ImprovementRate:     12,
			TotalCaloriesBurned: 64000,
			AverageHeartRate:    138,
			FlexibilityScore:    61,
			EnduranceScore:      74,
			LastWorkoutDate:     now.Add(-18 * time.Hour),
			LastUpdated:         now.Add(-18 * time.Hour),
		},
		{
			UserID:              "user-bram",
			MaxWeightLifted:     140,
			TotalWorkouts:       95,
			WorkoutStreak:       30,
			ConsistencyScore:    95,
			ImprovementRate:     8,
			TotalCaloriesBurned: 82000,
			AverageHeartRate:    150,
			FlexibilityScore:    70,
			EnduranceScore:      90,
			LastWorkoutDate:     now.Add(-4 * time.Hour),
			LastUpdated:         now.Add(-4 * time.Hour),
		},
		{
			UserID:          "user-citra",
			LastWorkoutDate: now.Add(-2 * time.Hour),
			LastUpdated:     now.Add(-2 * time.Hour),
		},
		{
			UserID:              "user-dewi",
			MaxWeightLifted:     310,
			TotalWorkouts:       260,
			WorkoutStreak:       0,
			ConsistencyScore:    45,
			ImprovementRate:     2,
			TotalCaloriesBurned: 120000,
			AverageHeartRate:    128,
			FlexibilityScore:    40,
			EnduranceScore:      55,
			LastWorkoutDate:     now.Add(-45 * 24 * time.Hour),
			LastUpdated:         now.Add(-45 * 24 * time.Hour),
		},
	}
}

func SeedProfiles() []user.Profile {
	return []user.Profile{
		{UserID: "user-aria", DisplayName: "Aria Santoso", PhotoURL: "https://cdn.fitpulse.dev/avatars/aria.png"},
		{UserID: "user-bram", DisplayName: "Bram Wijaya", PhotoURL: "https://cdn.fitpulse.dev/avatars/bram.png"},
		{UserID: "user-citra", DisplayName: "Citra Lestari", PhotoURL: "https://cdn.fitpulse.dev/avatars/citra.png"},
		{UserID: "user-dewi", DisplayName: "Dewi Anggraini", PhotoURL: "https://cdn.fitpulse.dev/avatars/dewi.png"},
	}
}
