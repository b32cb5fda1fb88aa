package ranking

import (
	"math"
	"testing"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_ZeroRecordScoresZeroStrength(t *testing.T) {
	t.Parallel()

	got := Score(metric.Record{UserID: "user-1"}, weights.Default())

	if got.StrengthScore != 0 {
		t.Fatalf("strength score for empty record: got=%v want=0", got.StrengthScore)
	}
	if got.ConsistencyScore != 0 {
		t.Fatalf("consistency score for empty record: got=%v want=0", got.ConsistencyScore)
	}
	// A zero heart rate is far from the target rate, not absent, so the
	// stamina pillar still earns the falloff floor.
	wantStamina := (100 - 140.0/2) / 2 * 0.25
	if !almostEqual(got.StaminaScore, wantStamina) {
		t.Fatalf("stamina score for empty record: got=%v want=%v", got.StaminaScore, wantStamina)
	}
}

func TestScore_MaxStrengthOnly(t *testing.T) {
	t.Parallel()

	record := metric.Record{UserID: "user-1", MaxWeightLifted: 500}
	got := Score(record, weights.Default())

	if !almostEqual(got.StrengthScore, 30) {
		t.Fatalf("strength score: got=%v want=30", got.StrengthScore)
	}
	if !almostEqual(got.TotalScore, 33.75) {
		t.Fatalf("total score: got=%v want=33.75", got.TotalScore)
	}
	if !almostEqual(got.TotalScore, got.StrengthScore+got.StaminaScore+got.ConsistencyScore+got.ImprovementScore) {
		t.Fatalf("total must equal sum of pillars, got=%v", got.TotalScore)
	}
}

func TestScore_CapsOutlierMetrics(t *testing.T) {
	t.Parallel()

	record := metric.Record{
		UserID:              "user-1",
		MaxWeightLifted:     9000,
		TotalWorkouts:       100000,
		WorkoutStreak:       365,
		ConsistencyScore:    250,
		ImprovementRate:     400,
		TotalCaloriesBurned: 5_000_000,
		AverageHeartRate:    140,
		FlexibilityScore:    180,
		EnduranceScore:      130,
	}
	got := Score(record, weights.Default())

	for name, value := range got.Components {
		if value < 0 || value > 100 {
			t.Fatalf("component %s out of range: %v", name, value)
		}
	}
	if !almostEqual(got.TotalScore, 100) {
		t.Fatalf("fully capped record should score 100, got=%v", got.TotalScore)
	}
}

func TestScore_HeartRateRewardsTargetProximity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rate float64
		want float64
	}{
		{"on target", 140, 100},
		{"above target", 160, 90},
		{"below target", 120, 90},
		{"far off floor", 400, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Score(metric.Record{AverageHeartRate: tc.rate}, weights.Default())
			if !almostEqual(got.Components[ComponentHeartRate], tc.want) {
				t.Fatalf("heart rate component for %v: got=%v want=%v", tc.rate, got.Components[ComponentHeartRate], tc.want)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()

	record := metric.Record{
		UserID:              "user-1",
		MaxWeightLifted:     182.5,
		TotalWorkouts:       48,
		WorkoutStreak:       12,
		ConsistencyScore:    77.3,
		ImprovementRate:     14.2,
		TotalCaloriesBurned: 48211,
		AverageHeartRate:    147,
		FlexibilityScore:    61,
		EnduranceScore:      70.5,
	}
	cfg := weights.Default()

	first := Score(record, cfg)
	for i := 0; i < 50; i++ {
		if again := Score(record, cfg); again.TotalScore != first.TotalScore {
			t.Fatalf("score is not deterministic: %v vs %v", again.TotalScore, first.TotalScore)
		}
	}
}

func TestScore_CarriesWeightsVersion(t *testing.T) {
	t.Parallel()

	cfg := weights.Default()
	cfg.Version = 7

	if got := Score(metric.Record{}, cfg); got.WeightsVersion != 7 {
		t.Fatalf("weights version: got=%d want=7", got.WeightsVersion)
	}
}
