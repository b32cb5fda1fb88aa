package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/fitpulse/ranking-engine/internal/domain/weights"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeights")
	defer span.End()

	cfg, err := h.weightService.Get(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get weights failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weightsToDTO(cfg))
}

func (h *Handler) UpdateWeights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateWeights")
	defer span.End()

	var req updateWeightsRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	cfg, err := h.weightService.Update(ctx, weights.Config{
		Strength:    req.Strength,
		Stamina:     req.Stamina,
		Consistency: req.Consistency,
		Improvement: req.Improvement,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update weights failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weightsToDTO(cfg))
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Recalculate")
	defer span.End()

	result, err := h.aggregatorService.RecalculateAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "admin recalculation failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recalculateResultToDTO(result))
}

// RunRecalculateJob is the queued-job entry point. Same work as the admin
// endpoint, guarded by the internal job token instead of a user session,
// and it re-enqueues the next run to keep the chain alive.
func (h *Handler) RunRecalculateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateJob")
	defer span.End()

	result, err := h.jobOrchestrator.RunRecalculateJob(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculation job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recalculateResultToDTO(result))
}
