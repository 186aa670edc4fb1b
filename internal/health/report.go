package health

import "math"

// Health dimension weights; must sum to 1.0.
const (
	weightScoringStability   = 0.25
	weightPillarBalance      = 0.20
	weightAgentDiversity     = 0.25
	weightDataFreshness      = 0.15
	weightCalibrationQuality = 0.15
)

// Overall status ladder.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
)

const coherenceTrendEpsilon = 0.02

// Report is the derived benchmark health summary.
type Report struct {
	Status  string  `json:"status"`
	Overall float64 `json:"overall"` // weighted 0-1

	ScoringStability   float64 `json:"scoring_stability"`
	PillarBalance      float64 `json:"pillar_balance"`
	AgentDiversity     float64 `json:"agent_diversity"`
	DataFreshness      float64 `json:"data_freshness"`
	CalibrationQuality float64 `json:"calibration_quality"`

	CoherenceTrend string `json:"coherence_trend"`
	SnapshotCount  int    `json:"snapshot_count"`
	AlertCount     int    `json:"alert_count"`
	HighAlertCount int    `json:"high_alert_count"`
}

// HealthReport derives five normalized health dimensions from the last
// 10 snapshots plus a status from retained alert pressure.
func (d *Detector) HealthReport() Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := Report{
		Status:         StatusHealthy,
		CoherenceTrend: "stable",
		SnapshotCount:  len(d.snapshots),
		AlertCount:     len(d.alerts),
	}

	recent, _ := d.windows()
	if len(recent) > 0 {
		r.ScoringStability = clamp01(1.0 - 5.0*avgScoreDrift(recent))
		r.PillarBalance = clamp01(1.0 - 3.0*meanOf(recent, pillarStddev))
		r.AgentDiversity = math.Min(1.0, 10.0*meanOf(recent, func(s Snapshot) float64 { return s.ScoreSpread }))
		r.DataFreshness = math.Min(1.0, meanOf(recent, func(s Snapshot) float64 { return s.AvgReasoningLength })/80.0)
		r.CalibrationQuality = clamp01(meanOf(recent, func(s Snapshot) float64 { return s.CalibrationAvg }))
	}

	r.Overall = weightScoringStability*r.ScoringStability +
		weightPillarBalance*r.PillarBalance +
		weightAgentDiversity*r.AgentDiversity +
		weightDataFreshness*r.DataFreshness +
		weightCalibrationQuality*r.CalibrationQuality

	for _, a := range d.alerts {
		if a.Severity == SeverityHigh {
			r.HighAlertCount++
		}
	}
	switch {
	case r.HighAlertCount >= 3:
		r.Status = StatusCritical
	case r.HighAlertCount >= 1:
		r.Status = StatusDegraded
	case r.AlertCount > 3:
		r.Status = StatusWarning
	}

	r.CoherenceTrend = d.coherenceTrend()
	return r
}

// avgScoreDrift is the mean absolute inter-snapshot change in average
// composite score.
func avgScoreDrift(snapshots []Snapshot) float64 {
	if len(snapshots) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(snapshots); i++ {
		sum += math.Abs(snapshots[i].avgScore() - snapshots[i-1].avgScore())
	}
	return sum / float64(len(snapshots)-1)
}

// coherenceTrend compares first-half vs second-half coherence across
// the full retained history.
func (d *Detector) coherenceTrend() string {
	if len(d.snapshots) < 4 {
		return "stable"
	}
	half := len(d.snapshots) / 2
	first := meanOf(d.snapshots[:half], func(s Snapshot) float64 { return s.CoherenceAvg })
	second := meanOf(d.snapshots[half:], func(s Snapshot) float64 { return s.CoherenceAvg })

	switch {
	case second-first > coherenceTrendEpsilon:
		return "improving"
	case second-first < -coherenceTrendEpsilon:
		return "declining"
	default:
		return "stable"
	}
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
