package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, r *Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := r.Prometheus().Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestRegistryCountersGather(t *testing.T) {
	r := NewRegistry()

	r.RoundsAnalyzed.Inc()
	r.RoundsAnalyzed.Inc()
	r.RegressionAlerts.WithLabelValues("high").Inc()
	r.RiskAnalysisDuration.Observe(0.02)

	families := gather(t, r)

	rounds := families["benchcore_rounds_analyzed_total"]
	require.NotNil(t, rounds)
	assert.Equal(t, 2.0, rounds.GetMetric()[0].GetCounter().GetValue())

	alerts := families["benchcore_regression_alerts_total"]
	require.NotNil(t, alerts)
	require.Len(t, alerts.GetMetric(), 1)
	assert.Equal(t, "high", alerts.GetMetric()[0].GetLabel()[0].GetValue())

	duration := families["benchcore_risk_analysis_duration_seconds"]
	require.NotNil(t, duration)
	assert.Equal(t, uint64(1), duration.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestRegistriesAreIsolated(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.ScoresRecorded.Inc()

	families := gather(t, b)
	scores := families["benchcore_scores_recorded_total"]
	require.NotNil(t, scores)
	assert.Equal(t, 0.0, scores.GetMetric()[0].GetCounter().GetValue())
}
