package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fitpulse/ranking-engine/internal/domain/weights"
)

type weightsTableModel struct {
	Strength    float64   `db:"strength"`
	Stamina     float64   `db:"stamina"`
	Consistency float64   `db:"consistency"`
	Improvement float64   `db:"improvement"`
	Version     int64     `db:"version"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type WeightsRepository struct {
	db *sqlx.DB
}

func NewWeightsRepository(db *sqlx.DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

func (r *WeightsRepository) Get(ctx context.Context) (weights.Config, error) {
	query := `SELECT strength, stamina, consistency, improvement, version, updated_at
FROM ranking_weights ORDER BY version DESC LIMIT 1`

	var row weightsTableModel
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if isNotFound(err) {
			return weights.Default(), nil
		}
		return weights.Config{}, fmt.Errorf("get ranking weights: %w", err)
	}

	return weights.Config{
		Strength:    row.Strength,
		Stamina:     row.Stamina,
		Consistency: row.Consistency,
		Improvement: row.Improvement,
		Version:     row.Version,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// Replace appends a new weight row with the next version. Old versions are
// kept so historical snapshots stay attributable to the weights that
// produced them.
func (r *WeightsRepository) Replace(ctx context.Context, cfg weights.Config) (weights.Config, error) {
	query := `INSERT INTO ranking_weights (strength, stamina, consistency, improvement, version, updated_at)
SELECT $1, $2, $3, $4, COALESCE(MAX(version), 0) + 1, $5
FROM ranking_weights
RETURNING strength, stamina, consistency, improvement, version, updated_at`

	var row weightsTableModel
	if err := r.db.GetContext(ctx, &row, query,
		cfg.Strength, cfg.Stamina, cfg.Consistency, cfg.Improvement, time.Now().UTC()); err != nil {
		return weights.Config{}, fmt.Errorf("replace ranking weights: %w", err)
	}

	return weights.Config{
		Strength:    row.Strength,
		Stamina:     row.Stamina,
		Consistency: row.Consistency,
		Improvement: row.Improvement,
		Version:     row.Version,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
