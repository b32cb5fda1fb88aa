package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fitpulse/ranking-engine/internal/usecase"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	cohort, err := cohortFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	offset, err := intQueryParam(r, "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := intQueryParam(r, "limit", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.leaderboardService.GetLeaderboard(ctx, cohort, offset, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "type", string(cohort), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pageToDTO(page))
}

func (h *Handler) GetUserRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRankings")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	rankings, err := h.leaderboardService.GetUserRankings(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user rankings failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if len(rankings) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: user %s is not ranked", usecase.ErrNotFound, userID))
		return
	}

	out := make(map[string]leaderboardEntryDTO, len(rankings))
	for cohort, entry := range rankings {
		out[string(cohort)] = entryToDTO(entry)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMyRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyRanking")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	cohort, err := cohortFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entry, err := h.leaderboardService.GetUserRanking(ctx, cohort, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "get my ranking failed", "user_id", principal.UserID, "type", string(cohort), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entryToDTO(entry))
}

func intQueryParam(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
