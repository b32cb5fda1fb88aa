package ranking

import (
	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
)

// Normalization caps. Raw metrics are mapped onto a 0-100 scale with fixed
// ceilings so a single outlier metric cannot inflate the composite score.
const (
	maxWeightCap   = 500.0
	workoutsCap    = 100.0
	streakCap      = 30.0
	caloriesCap    = 100000.0
	improvementCap = 100.0

	// Heart-rate scoring rewards proximity to a target training rate
	// rather than raw magnitude.
	heartRateTarget  = 140.0
	heartRateFalloff = 2.0
)

// Component keys of the normalized breakdown map.
const (
	ComponentStrength    = "strength"
	ComponentWorkouts    = "workouts"
	ComponentStreak      = "streak"
	ComponentConsistency = "consistency"
	ComponentImprovement = "improvement"
	ComponentCalories    = "calories"
	ComponentHeartRate   = "heartRate"
	ComponentFlexibility = "flexibility"
	ComponentEndurance   = "endurance"
)

// ScoreBreakdown is the derived composite score for one user. It is never
// a source of truth: recompute it from the metric record whenever needed.
// TotalScore always equals the sum of the four pillar scores.
type ScoreBreakdown struct {
	TotalScore       float64
	StrengthScore    float64
	StaminaScore     float64
	ConsistencyScore float64
	ImprovementScore float64
	Components       map[string]float64
	WeightsVersion   int64
}

// Score maps a metric record and a weight configuration to a composite
// score. Pure and deterministic: identical inputs always produce identical
// outputs, which the reproducible leaderboard ordering depends on.
// Missing or zero metrics normalize to zero rather than erroring, so a
// brand-new user scores 0 and ranks last instead of being excluded.
func Score(record metric.Record, cfg weights.Config) ScoreBreakdown {
	components := map[string]float64{
		ComponentStrength:    normalizeCapped(record.MaxWeightLifted, maxWeightCap),
		ComponentWorkouts:    normalizeCapped(float64(record.TotalWorkouts), workoutsCap),
		ComponentStreak:      normalizeCapped(float64(record.WorkoutStreak), streakCap),
		ComponentConsistency: clampPercent(record.ConsistencyScore),
		ComponentImprovement: normalizeCapped(record.ImprovementRate, improvementCap),
		ComponentCalories:    normalizeCapped(record.TotalCaloriesBurned, caloriesCap),
		ComponentHeartRate:   normalizeHeartRate(record.AverageHeartRate),
		ComponentFlexibility: clampPercent(record.FlexibilityScore),
		ComponentEndurance:   clampPercent(record.EnduranceScore),
	}

	strength := components[ComponentStrength] * cfg.Strength
	stamina := avg(components[ComponentEndurance], components[ComponentHeartRate]) * cfg.Stamina
	consistency := avg(components[ComponentWorkouts], components[ComponentStreak], components[ComponentConsistency]) * cfg.Consistency
	improvement := avg(components[ComponentImprovement], components[ComponentCalories]) * cfg.Improvement

	return ScoreBreakdown{
		TotalScore:       strength + stamina + consistency + improvement,
		StrengthScore:    strength,
		StaminaScore:     stamina,
		ConsistencyScore: consistency,
		ImprovementScore: improvement,
		Components:       components,
		WeightsVersion:   cfg.Version,
	}
}

func normalizeCapped(value, ceiling float64) float64 {
	if value <= 0 {
		return 0
	}
	ratio := value / ceiling
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

func normalizeHeartRate(avgRate float64) float64 {
	delta := avgRate - heartRateTarget
	if delta < 0 {
		delta = -delta
	}
	score := 100 - delta/heartRateFalloff
	if score < 0 {
		return 0
	}
	return score
}

func clampPercent(value float64) float64 {
	if value <= 0 {
		return 0
	}
	if value >= 100 {
		return 100
	}
	return value
}

func avg(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
