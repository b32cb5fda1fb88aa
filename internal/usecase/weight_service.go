package usecase

import (
	"context"
	"fmt"

	"github.com/fitpulse/ranking-engine/internal/domain/weights"
)

// Recalculator runs a full recompute of every cohort.
type Recalculator interface {
	RecalculateAll(ctx context.Context) (RecalculateResult, error)
}

// WeightService manages the global pillar-weight configuration. An update
// synchronously recomputes every leaderboard so no snapshot ever serves
// scores from a retired weight version.
type WeightService struct {
	weightsRepo  weights.Repository
	recalculator Recalculator
}

func NewWeightService(weightsRepo weights.Repository, recalculator Recalculator) *WeightService {
	return &WeightService{
		weightsRepo:  weightsRepo,
		recalculator: recalculator,
	}
}

func (s *WeightService) Get(ctx context.Context) (weights.Config, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeightService.Get")
	defer span.End()

	cfg, err := s.weightsRepo.Get(ctx)
	if err != nil {
		return weights.Config{}, fmt.Errorf("get weight config: %w", err)
	}
	return cfg, nil
}

// Update validates and persists a new weight configuration, then triggers
// a full recalculation. Invalid weights are rejected, never renormalized.
func (s *WeightService) Update(ctx context.Context, cfg weights.Config) (weights.Config, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeightService.Update")
	defer span.End()

	if err := cfg.Validate(); err != nil {
		return weights.Config{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	stored, err := s.weightsRepo.Replace(ctx, cfg)
	if err != nil {
		return weights.Config{}, fmt.Errorf("replace weight config: %w", err)
	}

	if s.recalculator != nil {
		if _, err := s.recalculator.RecalculateAll(ctx); err != nil {
			return weights.Config{}, fmt.Errorf("recalculate after weight update: %w", err)
		}
	}
	return stored, nil
}
