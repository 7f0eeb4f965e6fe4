package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoreUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curator_score_updates_total",
		Help: "Total loyalty score recomputations",
	})
	ScoreUpdateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "curator_score_update_duration_seconds",
		Help:    "Loyalty score recomputation duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	RankingRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_ranking_runs_total",
		Help: "Ranking passes by mode (semantic or keyword)",
	}, []string{"mode"})
	EmbeddingFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_embedding_failures_total",
		Help: "Embedding lookups that degraded to keyword scoring",
	}, []string{"backend"})
	ReasonSources = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_reason_sources_total",
		Help: "Generated suggestion explanations by source",
	}, []string{"source"})
	FeedPolls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_feed_polls_total",
		Help: "Upload feed polls by result",
	}, []string{"result"})
	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_job_runs_total",
		Help: "Scheduled job executions",
	}, []string{"job"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	CircuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "curator_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})
	CircuitBreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions",
	}, []string{"name", "from", "to"})
	CircuitBreakerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_circuit_breaker_requests_total",
		Help: "Requests through a circuit breaker by result",
	}, []string{"name", "result"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"cmd"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curator_command_errors_total",
		Help: "CLI command failures",
	}, []string{"cmd"})
)

func init() {
	prometheus.MustRegister(
		ScoreUpdates, ScoreUpdateDuration, RankingRuns, EmbeddingFailures, ReasonSources,
		FeedPolls, JobRuns, APIRetries,
		CircuitBreakerState, CircuitBreakerTransitions, CircuitBreakerRequests,
		CommandRuns, CommandErrors,
	)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveScoreUpdate records one score recomputation that started at start.
func ObserveScoreUpdate(start time.Time) {
	ScoreUpdates.Inc()
	ScoreUpdateDuration.Observe(time.Since(start).Seconds())
}

func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
func IncRankingRun(mode string) { RankingRuns.WithLabelValues(mode).Inc() }
func IncEmbeddingFailure(b string) { EmbeddingFailures.WithLabelValues(b).Inc() }
func IncReasonSource(source string) { ReasonSources.WithLabelValues(source).Inc() }
func IncFeedPoll(result string) { FeedPolls.WithLabelValues(result).Inc() }
func IncJobRun(job string) { JobRuns.WithLabelValues(job).Inc() }
