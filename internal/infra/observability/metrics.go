package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Interpretation source labels.
const (
	SourceManual = "manual"
	SourceAI     = "ia"
	SourceDirect = "direta"
)

// Metrics holds all Prometheus metrics for the assessor service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	interpretations *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	auditFailures   prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assessor_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		interpretations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_interpretations_total",
				Help: "Messages interpreted, by source (manual, ia, direta).",
			},
			[]string{"source"},
		),
		actionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assessor_actions_total",
				Help: "Actions dispatched, by action kind and outcome.",
			},
			[]string{"action", "status"},
		),
		auditFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "assessor_audit_failures_total",
				Help: "Audit writes that failed (responses still succeed).",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrInterpretation counts one interpreted message by source.
func (m *Metrics) IncrInterpretation(source string) {
	m.interpretations.WithLabelValues(source).Inc()
}

// IncrAction counts one dispatched action by kind and outcome.
func (m *Metrics) IncrAction(action, status string) {
	m.actionsTotal.WithLabelValues(action, status).Inc()
}

// IncrAuditFailure counts a failed audit write.
func (m *Metrics) IncrAuditFailure() {
	m.auditFailures.Inc()
}

// UsageSnapshot summarizes interpreter usage for the
// GET /v1/metrics/uso endpoint.
type UsageSnapshot struct {
	InterpretacoesManuais float64 `json:"interpretacoes_manuais"`
	InterpretacoesIA      float64 `json:"interpretacoes_ia"`
	AcoesDiretas          float64 `json:"acoes_diretas"`
	TokensPrompt          float64 `json:"tokens_prompt"`
	TokensCompletion      float64 `json:"tokens_completion"`
	CustoEstimadoUSD      float64 `json:"custo_estimado_usd"`
	TaxaCacheHit          float64 `json:"taxa_cache_hit"`
	FalhasAuditoria       float64 `json:"falhas_auditoria"`
}

// Snapshot gathers current counter values.
// Note: Prometheus counters expose cumulative values since process start.
func (m *Metrics) Snapshot() *UsageSnapshot {
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")
	cacheHits := getCounterValue(m.cacheHits, "integrations")
	cacheMisses := getCounterValue(m.cacheMisses, "integrations")

	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	// Estimated cost for gpt-4o-mini: ~$0.15/1M prompt, ~$0.60/1M completion
	estimatedCost := (promptTokens/1_000_000)*0.15 + (completionTokens/1_000_000)*0.60

	return &UsageSnapshot{
		InterpretacoesManuais: getCounterValue(m.interpretations, SourceManual),
		InterpretacoesIA:      getCounterValue(m.interpretations, SourceAI),
		AcoesDiretas:          getCounterValue(m.interpretations, SourceDirect),
		TokensPrompt:          promptTokens,
		TokensCompletion:      completionTokens,
		CustoEstimadoUSD:      estimatedCost,
		TaxaCacheHit:          cacheHitRate,
		FalhasAuditoria:       counterValue(m.auditFailures),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	return counterValue(counter)
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
