package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fitpulse/ranking-engine/internal/domain/metric"
	"github.com/fitpulse/ranking-engine/internal/domain/user"
	"github.com/fitpulse/ranking-engine/internal/domain/weights"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/pubsub"
	"github.com/fitpulse/ranking-engine/internal/infrastructure/repository/memory"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

const testInternalJobToken = "internal-test-token"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	now := time.Now()
	metricRepo := memory.NewMetricRepository([]metric.Record{
		{UserID: "user-member", MaxWeightLifted: 200, TotalWorkouts: 30, LastWorkoutDate: now.Add(-2 * time.Hour)},
		{UserID: "user-rival", MaxWeightLifted: 400, TotalWorkouts: 60, LastWorkoutDate: now.Add(-4 * time.Hour)},
		{UserID: "user-lapsed", MaxWeightLifted: 500, LastWorkoutDate: now.Add(-60 * 24 * time.Hour)},
	})
	weightsRepo := memory.NewWeightsRepository(weights.Default())
	snapshotRepo := memory.NewSnapshotRepository()
	directory := memory.NewUserDirectory([]user.Profile{
		{UserID: "user-member", DisplayName: "Member", PhotoURL: "https://cdn.fitpulse.dev/a/member.png"},
		{UserID: "user-rival", DisplayName: "Rival"},
	})
	broker := pubsub.NewBroker(logging.NewNop())

	aggregatorSvc := usecase.NewAggregatorService(metricRepo, weightsRepo, snapshotRepo, directory, broker, logging.NewNop())
	metricSvc := usecase.NewMetricService(metricRepo, aggregatorSvc)
	weightSvc := usecase.NewWeightService(weightsRepo, aggregatorSvc)
	leaderboardSvc := usecase.NewLeaderboardService(snapshotRepo, aggregatorSvc, nil)
	orchestrator := usecase.NewJobOrchestratorService(aggregatorSvc, nil, time.Minute, logging.NewNop())

	handler := NewHandler(leaderboardSvc, metricSvc, weightSvc, aggregatorSvc, orchestrator, broker, logging.NewNop())
	return NewRouter(handler, newStubVerifier(), logging.NewNop(), []string{"*"}, testInternalJobToken)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return body
}

func envelopeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	data, ok := decodeEnvelope(t, rec)["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, body=%s", rec.Body.String())
	}
	return data
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200", rec.Code)
	}
}

func TestRouter_GetLeaderboard(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200, body=%s", rec.Code, rec.Body.String())
	}

	data := envelopeData(t, rec)
	if data["type"] != "overall" {
		t.Fatalf("default type: got=%v want=overall", data["type"])
	}
	entries, ok := data["entries"].([]any)
	if !ok || len(entries) != 3 {
		t.Fatalf("expected three overall entries, got=%v", data["entries"])
	}
	top, _ := entries[0].(map[string]any)
	if top["userId"] != "user-lapsed" {
		t.Fatalf("top entry: got=%v", top["userId"])
	}
	if top["currentRank"] != float64(1) {
		t.Fatalf("top rank: got=%v", top["currentRank"])
	}
}

func TestRouter_GetLeaderboardWeeklyExcludesLapsed(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?type=weekly", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200", rec.Code)
	}
	data := envelopeData(t, rec)
	entries, _ := data["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("weekly entries: got=%d want=2", len(entries))
	}
	for _, raw := range entries {
		entry, _ := raw.(map[string]any)
		if entry["userId"] == "user-lapsed" {
			t.Fatal("lapsed user must not rank weekly")
		}
	}
}

func TestRouter_GetLeaderboardUnknownType(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?type=yearly", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400", rec.Code)
	}
}

func TestRouter_GetUserRankings(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/users/user-rival", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status: got=%d want=401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard/users/user-rival", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200, body=%s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec)
	overall, ok := data["overall"].(map[string]any)
	if !ok {
		t.Fatalf("expected overall entry, got=%v", data)
	}
	if overall["displayName"] != "Rival" {
		t.Fatalf("display name: got=%v", overall["displayName"])
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/leaderboard/users/user-ghost", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user status: got=%d want=404", rec.Code)
	}
}

func TestRouter_GetMyRankingRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leaderboard/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status: got=%d want=401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard/me?type=overall", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200, body=%s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec)
	if data["userId"] != "user-member" {
		t.Fatalf("ranked user: got=%v", data["userId"])
	}
}

func TestRouter_SubmitMetricsMovesRanking(t *testing.T) {
	router := newTestRouter(t)

	// Baseline: member ranks below rival.
	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard/me", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	before := envelopeData(t, rec)

	payload := `{"maxWeightLifted": 480, "totalWorkouts": 90, "workoutStreak": 25}`
	req = httptest.NewRequest(http.MethodPost, "/v1/metrics", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer member-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	submitted := envelopeData(t, rec)
	if submitted["maxWeightLifted"] != float64(480) {
		t.Fatalf("merged record: got=%v", submitted["maxWeightLifted"])
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/leaderboard/me", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	after := envelopeData(t, rec)

	beforeRank, _ := before["currentRank"].(float64)
	afterRank, _ := after["currentRank"].(float64)
	if afterRank >= beforeRank {
		t.Fatalf("improved metrics must improve rank: before=%v after=%v", beforeRank, afterRank)
	}
}

func TestRouter_SubmitMetricsRejectsNegative(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/metrics", strings.NewReader(`{"maxWeightLifted": -10}`))
	req.Header.Set("Authorization", "Bearer member-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400, body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_GetMyMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/me", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=200", rec.Code)
	}
	data := envelopeData(t, rec)
	if data["userId"] != "user-member" {
		t.Fatalf("record owner: got=%v", data["userId"])
	}
}

func TestRouter_AdminWeights(t *testing.T) {
	router := newTestRouter(t)

	// Member cannot touch admin surface.
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/weights", nil)
	req.Header.Set("Authorization", "Bearer member-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member status: got=%d want=403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/admin/weights",
		strings.NewReader(`{"strength": 0.4, "stamina": 0.2, "consistency": 0.2, "improvement": 0.2}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec)
	if data["version"] != float64(2) {
		t.Fatalf("weights version: got=%v want=2", data["version"])
	}

	// A sum outside tolerance is rejected, never renormalized.
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/weights",
		strings.NewReader(`{"strength": 0.9, "stamina": 0.9, "consistency": 0.1, "improvement": 0.1}`))
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid sum status: got=%d want=400", rec.Code)
	}
}

func TestRouter_AdminRecalculate(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/recalculate", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	data := envelopeData(t, rec)
	if data["processedUsers"] != float64(3) {
		t.Fatalf("processed users: got=%v want=3", data["processedUsers"])
	}
	if data["runId"] == "" {
		t.Fatal("run id must be set")
	}
}

func TestRouter_InternalRecalculateJob(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recalculate", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status: got=%d want=401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recalculate", nil)
	req.Header.Set("X-Internal-Job-Token", testInternalJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}
