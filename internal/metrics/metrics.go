// Package metrics holds the Prometheus registry for the benchmarking
// engines. Counters are incremented by the orchestration layer, not by
// the engines themselves, keeping the core free of metrics plumbing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every benchcore metric plus the prometheus registry
// they are registered on.
type Registry struct {
	reg *prometheus.Registry

	RoundsAnalyzed     prometheus.Counter
	ScoresRecorded     prometheus.Counter
	ForecastsRegistered prometheus.Counter
	ForecastsResolved  prometheus.Counter
	RiskAnalyses       prometheus.Counter
	RiskAnalysisErrors prometheus.Counter
	CriticalRiskAlerts prometheus.Counter
	RegressionAlerts   *prometheus.CounterVec

	RiskAnalysisDuration prometheus.Histogram
}

// NewRegistry creates and registers all benchcore metrics.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		RoundsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_rounds_analyzed_total",
			Help: "Trading rounds reduced to analytics",
		}),
		ScoresRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_scores_recorded_total",
			Help: "Composite scores ingested by the rating engine",
		}),
		ForecastsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_forecasts_registered_total",
			Help: "Trade impact forecasts extracted from decision reasoning",
		}),
		ForecastsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_forecasts_resolved_total",
			Help: "Forecasts resolved against realized price moves",
		}),
		RiskAnalyses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_risk_analyses_total",
			Help: "Completed portfolio risk analyses",
		}),
		RiskAnalysisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_risk_analysis_errors_total",
			Help: "Risk analyses failed on storage I/O",
		}),
		CriticalRiskAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "benchcore_critical_risk_alerts_total",
			Help: "Risk analyses that scored critical",
		}),
		RegressionAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "benchcore_regression_alerts_total",
			Help: "Benchmark regression alerts raised, by severity",
		}, []string{"severity"}),
		RiskAnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "benchcore_risk_analysis_duration_seconds",
			Help:    "Wall time of one portfolio risk analysis including storage reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}),
	}

	r.reg.MustRegister(
		r.RoundsAnalyzed,
		r.ScoresRecorded,
		r.ForecastsRegistered,
		r.ForecastsResolved,
		r.RiskAnalyses,
		r.RiskAnalysisErrors,
		r.CriticalRiskAlerts,
		r.RegressionAlerts,
		r.RiskAnalysisDuration,
	)
	return r
}

// Prometheus exposes the underlying registry for the /metrics handler.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}
