package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fitpulse/ranking-engine/internal/domain/ranking"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

// SnapshotFeed is the live snapshot source behind the leaderboard stream.
type SnapshotFeed interface {
	Subscribe(cohort ranking.Cohort) (<-chan ranking.Snapshot, func())
	Latest(cohort ranking.Cohort) (ranking.Snapshot, bool)
}

type Handler struct {
	leaderboardService *usecase.LeaderboardService
	metricService      *usecase.MetricService
	weightService      *usecase.WeightService
	aggregatorService  *usecase.AggregatorService
	jobOrchestrator    *usecase.JobOrchestratorService
	feed               SnapshotFeed
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	leaderboardService *usecase.LeaderboardService,
	metricService *usecase.MetricService,
	weightService *usecase.WeightService,
	aggregatorService *usecase.AggregatorService,
	jobOrchestrator *usecase.JobOrchestratorService,
	feed SnapshotFeed,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leaderboardService: leaderboardService,
		metricService:      metricService,
		weightService:      weightService,
		aggregatorService:  aggregatorService,
		jobOrchestrator:    jobOrchestrator,
		feed:               feed,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func cohortFromQuery(r *http.Request) (ranking.Cohort, error) {
	raw := r.URL.Query().Get("type")
	cohort, ok := ranking.ParseCohort(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown leaderboard type %q", usecase.ErrInvalidInput, raw)
	}
	return cohort, nil
}
