package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLeaderboardRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/leaderboard/stream", handler.StreamLeaderboard)
	mux.Handle("GET /v1/leaderboard/users/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.GetUserRankings)))
	mux.Handle("GET /v1/leaderboard/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyRanking)))
}

func registerMetricRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/metrics", RequireAuth(verifier, http.HandlerFunc(handler.SubmitMetrics)))
	mux.Handle("GET /v1/metrics/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyMetrics)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/admin/weights", RequireAdmin(verifier, http.HandlerFunc(handler.GetWeights)))
	mux.Handle("PUT /v1/admin/weights", RequireAdmin(verifier, http.HandlerFunc(handler.UpdateWeights)))
	mux.Handle("POST /v1/admin/recalculate", RequireAdmin(verifier, http.HandlerFunc(handler.Recalculate)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recalculate", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateJob)))
}
