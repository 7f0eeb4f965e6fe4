package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	ObserveScoreUpdate(time.Now().Add(-1500 * time.Millisecond))
	IncAPIRetry("/api/embed")
	IncCommandRun("score")
	IncCommandError("score")
	IncRankingRun("semantic")
	IncEmbeddingFailure("ollama")
	IncReasonSource("System")
	IncFeedPoll("ok")
	IncJobRun("score-updater")
	CircuitBreakerState.WithLabelValues("embed").Set(0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"curator_score_updates_total",
		"curator_score_update_duration_seconds",
		"curator_api_retries_total",
		"curator_command_runs_total",
		"curator_command_errors_total",
		`curator_ranking_runs_total{mode="semantic"}`,
		"curator_embedding_failures_total",
		`curator_reason_sources_total{source="System"}`,
		"curator_feed_polls_total",
		"curator_job_runs_total",
		"curator_circuit_breaker_state",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
