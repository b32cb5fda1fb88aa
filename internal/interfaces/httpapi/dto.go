package httpapi

import (
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

type leaderboardEntryDTO struct {
	UserID       string  `json:"userId"`
	DisplayName  string  `json:"displayName,omitempty"`
	PhotoURL     string  `json:"photoUrl,omitempty"`
	Score        float64 `json:"score"`
	Tier         string  `json:"tier"`
	CurrentRank  int     `json:"currentRank"`
	PreviousRank int     `json:"previousRank,omitempty"`
	RankChange   string  `json:"rankChange"`
	RankDelta    int     `json:"rankDelta"`
	TotalUsers   int     `json:"totalUsers"`
}

type leaderboardPageDTO struct {
	Type           string                `json:"type"`
	Entries        []leaderboardEntryDTO `json:"entries"`
	TotalUsers     int                   `json:"totalUsers"`
	Offset         int                   `json:"offset"`
	Limit          int                   `json:"limit"`
	ComputedAt     time.Time             `json:"computedAt"`
	WeightsVersion int64                 `json:"weightsVersion"`
}

type leaderboardStreamEventDTO struct {
	Type           string                `json:"type"`
	Entries        []leaderboardEntryDTO `json:"entries"`
	TotalUsers     int                   `json:"totalUsers"`
	ComputedAt     time.Time             `json:"computedAt"`
	WeightsVersion int64                 `json:"weightsVersion"`
	RunID          string                `json:"runId"`
}

func entryToDTO(entry ranking.Entry) leaderboardEntryDTO {
	return leaderboardEntryDTO{
		UserID:       entry.UserID,
		DisplayName:  entry.DisplayName,
		PhotoURL:     entry.PhotoURL,
		Score:        entry.Score,
		Tier:         string(entry.Tier),
		CurrentRank:  entry.CurrentRank,
		PreviousRank: entry.PreviousRank,
		RankChange:   string(entry.RankChange),
		RankDelta:    entry.RankDelta,
		TotalUsers:   entry.TotalUsers,
	}
}

func entriesToDTO(entries []ranking.Entry) []leaderboardEntryDTO {
	out := make([]leaderboardEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryToDTO(entry))
	}
	return out
}

func pageToDTO(page usecase.LeaderboardPage) leaderboardPageDTO {
	return leaderboardPageDTO{
		Type:           string(page.Cohort),
		Entries:        entriesToDTO(page.Entries),
		TotalUsers:     page.TotalUsers,
		Offset:         page.Offset,
		Limit:          page.Limit,
		ComputedAt:     page.ComputedAt,
		WeightsVersion: page.WeightsVersion,
	}
}

func snapshotToStreamEventDTO(snapshot ranking.Snapshot, limit int) leaderboardStreamEventDTO {
	return leaderboardStreamEventDTO{
		Type:           string(snapshot.Cohort),
		Entries:        entriesToDTO(snapshot.Page(0, limit)),
		TotalUsers:     len(snapshot.Rankings),
		ComputedAt:     snapshot.ComputedAt,
		WeightsVersion: snapshot.WeightsVersion,
		RunID:          snapshot.RunID,
	}
}

type submitMetricsRequest struct {
	MaxWeightLifted     *float64   `json:"maxWeightLifted" validate:"omitempty,gte=0"`
	TotalWorkouts       *int       `json:"totalWorkouts" validate:"omitempty,gte=0"`
	WorkoutStreak       *int       `json:"workoutStreak" validate:"omitempty,gte=0"`
	ConsistencyScore    *float64   `json:"consistencyScore" validate:"omitempty,gte=0,lte=100"`
	ImprovementRate     *float64   `json:"improvementRate" validate:"omitempty,gte=0"`
	TotalCaloriesBurned *float64   `json:"totalCaloriesBurned" validate:"omitempty,gte=0"`
	AverageHeartRate    *float64   `json:"averageHeartRate" validate:"omitempty,gte=0"`
	FlexibilityScore    *float64   `json:"flexibilityScore" validate:"omitempty,gte=0,lte=100"`
	EnduranceScore      *float64   `json:"enduranceScore" validate:"omitempty,gte=0,lte=100"`
	LastWorkoutDate     *time.Time `json:"lastWorkoutDate"`
}

func (r submitMetricsRequest) toUpdate() metric.Update {
	return metric.Update{
		MaxWeightLifted:     r.MaxWeightLifted,
		TotalWorkouts:       r.TotalWorkouts,
		WorkoutStreak:       r.WorkoutStreak,
		ConsistencyScore:    r.ConsistencyScore,
		ImprovementRate:     r.ImprovementRate,
		TotalCaloriesBurned: r.TotalCaloriesBurned,
		AverageHeartRate:    r.AverageHeartRate,
		FlexibilityScore:    r.FlexibilityScore,
		EnduranceScore:      r.EnduranceScore,
		LastWorkoutDate:     r.LastWorkoutDate,
	}
}

type metricRecordDTO struct {
	UserID              string    `json:"userId"`
	MaxWeightLifted     float64   `json:"maxWeightLifted"`
	TotalWorkouts       int       `json:"totalWorkouts"`
	WorkoutStreak       int       `json:"workoutStreak"`
	ConsistencyScore    float64   `json:"consistencyScore"`
	ImprovementRate     float64   `json:"improvementRate"`
	TotalCaloriesBurned float64   `json:"totalCaloriesBurned"`
	AverageHeartRate    float64   `json:"averageHeartRate"`
	FlexibilityScore    float64   `json:"flexibilityScore"`
	EnduranceScore      float64   `json:"enduranceScore"`
	LastWorkoutDate     time.Time `json:"lastWorkoutDate"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

func metricRecordToDTO(record metric.Record) metricRecordDTO {
	return metricRecordDTO{
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
		LastUpdated:         record.LastUpdated,
	}
}

type updateWeightsRequest struct {
	Strength    float64 `json:"strength" validate:"gte=0,lte=1"`
	Stamina     float64 `json:"stamina" validate:"gte=0,lte=1"`
	Consistency float64 `json:"consistency" validate:"gte=0,lte=1"`
	Improvement float64 `json:"improvement" validate:"gte=0,lte=1"`
}

type weightsDTO struct {
	Strength    float64   `json:"strength"`
	Stamina     float64   `json:"stamina"`
	Consistency float64   `json:"consistency"`
	Improvement float64   `json:"improvement"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func weightsToDTO(cfg weights.Config) weightsDTO {
	return weightsDTO{
		Strength:    cfg.Strength,
		Stamina:     cfg.Stamina,
		Consistency: cfg.Consistency,
		Improvement: cfg.Improvement,
		Version:     cfg.Version,
		UpdatedAt:   cfg.UpdatedAt,
	}
}

type recalculateResultDTO struct {
	RunID          string    `json:"runId"`
	ProcessedUsers int       `json:"processedUsers"`
	Types          []string  `json:"types"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}

func recalculateResultToDTO(result usecase.RecalculateResult) recalculateResultDTO {
	types := make([]string, 0, len(result.Cohorts))
	for _, cohort := range result.Cohorts {
		types = append(types, string(cohort))
	}
	return recalculateResultDTO{
		RunID:          result.RunID,
		ProcessedUsers: result.ProcessedUsers,
		Types:          types,
		StartedAt:      result.StartedAt,
		FinishedAt:     result.FinishedAt,
	}
}
