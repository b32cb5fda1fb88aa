package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fitpulse/ranking-engine/internal/domain/weights"
)

type WeightsRepository struct {
	mu      sync.RWMutex
	current weights.Config
	now     func() time.Time
}

func NewWeightsRepository(cfg weights.Config) *WeightsRepository {
	if cfg.Version <= 0 {
		cfg = weights.Default()
	}
	return &WeightsRepository{
		current: cfg,
		now:     time.Now,
	}
}

func (r *WeightsRepository) Get(_ context.Context) (weights.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current, nil
}

func (r *WeightsRepository) Replace(_ context.Context, cfg weights.Config) (weights.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg.Version = r.current.Version + 1
	cfg.UpdatedAt = r.now().UTC()
	r.current = cfg
	return cfg, nil
}
