// Package health watches the round analytics stream over time and
// detects regressions in the benchmark itself: scoring drift, agent
// convergence, coherence inflation, hallucination spikes, reasoning
// shrinkage, calibration decay, and pillar imbalance.
package health

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// MaxSnapshots bounds retained benchmark health snapshots.
	MaxSnapshots = 200
	// MaxAlerts bounds retained regression alerts.
	MaxAlerts = 100

	// comparisonWindow is how many snapshots each side of the
	// recent-vs-older comparison uses.
	comparisonWindow = 10
	// minWindow is the minimum snapshots per side before checks run.
	minWindow = 5
)

// Alert severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Regression check identifiers.
const (
	CheckScoringDrift       = "scoring_drift"
	CheckAgentConvergence   = "agent_convergence"
	CheckCoherenceInflation = "coherence_inflation"
	CheckHallucinationSpike = "hallucination_spike"
	CheckReasoningShrinkage = "reasoning_shrinkage"
	CheckCalibrationDecay   = "calibration_decay"
	CheckPillarImbalance    = "pillar_imbalance"
)

// Snapshot summarizes one round's meta-metrics for regression tracking.
type Snapshot struct {
	RoundID            string             `json:"round_id"`
	Timestamp          time.Time          `json:"timestamp"`
	AgentScores        map[string]float64 `json:"agent_scores"`
	PillarAverages     map[string]float64 `json:"pillar_averages"`
	CoherenceAvg       float64            `json:"coherence_avg"`
	HallucinationRate  float64            `json:"hallucination_rate"`
	AvgReasoningLength float64            `json:"avg_reasoning_length"`
	ScoreSpread        float64            `json:"score_spread"`
	CalibrationAvg     float64            `json:"calibration_avg"`
}

// avgScore is the snapshot's mean agent composite score.
func (s Snapshot) avgScore() float64 {
	if len(s.AgentScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.AgentScores {
		sum += v
	}
	return sum / float64(len(s.AgentScores))
}

// Alert is one raised regression finding.
type Alert struct {
	Check          string    `json:"check"`
	Severity       string    `json:"severity"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
	RaisedAt       time.Time `json:"raised_at"`
}

// Detector retains snapshots and alerts behind one mutex.
type Detector struct {
	mu        sync.Mutex
	snapshots []Snapshot
	alerts    []Alert
	now       func() time.Time
}

// NewDetector creates a benchmark health detector.
func NewDetector() *Detector {
	return &Detector{now: time.Now}
}

// RecordSnapshot appends a snapshot and runs the seven regression
// checks, comparing the last 10 snapshots to the 10 before them. Checks
// are skipped until both windows hold at least 5 snapshots.
func (d *Detector) RecordSnapshot(s Snapshot) []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.snapshots) >= MaxSnapshots {
		d.snapshots = d.snapshots[1:]
	}
	d.snapshots = append(d.snapshots, s)

	recent, older := d.windows()
	if len(recent) < minWindow || len(older) < minWindow {
		return nil
	}

	raised := d.runChecks(recent, older)
	for _, a := range raised {
		if len(d.alerts) >= MaxAlerts {
			d.alerts = d.alerts[1:]
		}
		d.alerts = append(d.alerts, a)
		log.Warn().
			Str("check", a.Check).
			Str("severity", a.Severity).
			Str("round_id", s.RoundID).
			Msg(a.Message)
	}
	return raised
}

// Alerts returns a copy of the retained regression alerts, newest last.
func (d *Detector) Alerts() []Alert {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Alert, len(d.alerts))
	copy(out, d.alerts)
	return out
}

// SnapshotCount returns how many snapshots are retained.
func (d *Detector) SnapshotCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.snapshots)
}

// windows splits retained snapshots into the recent window and the one
// preceding it.
func (d *Detector) windows() (recent, older []Snapshot) {
	n := len(d.snapshots)
	recentStart := n - comparisonWindow
	if recentStart < 0 {
		recentStart = 0
	}
	recent = d.snapshots[recentStart:]

	olderStart := recentStart - comparisonWindow
	if olderStart < 0 {
		olderStart = 0
	}
	older = d.snapshots[olderStart:recentStart]
	return recent, older
}

func (d *Detector) runChecks(recent, older []Snapshot) []Alert {
	var raised []Alert
	now := d.now()

	add := func(check, severity, message, recommendation string) {
		raised = append(raised, Alert{
			Check:          check,
			Severity:       severity,
			Message:        message,
			Recommendation: recommendation,
			RaisedAt:       now,
		})
	}

	recentScore := meanOf(recent, Snapshot.avgScore)
	olderScore := meanOf(older, Snapshot.avgScore)
	if math.Abs(recentScore-olderScore) > 0.15 {
		add(CheckScoringDrift, SeverityHigh,
			"Average composite score drifted by more than 0.15 between windows",
			"Review recent scoring-pillar or prompt changes before trusting new rankings")
	}

	recentSpread := meanOf(recent, func(s Snapshot) float64 { return s.ScoreSpread })
	if recentSpread < 0.03 {
		add(CheckAgentConvergence, SeverityMedium,
			"Agent scores have converged below 0.03 spread",
			"The benchmark may have stopped discriminating between agents; raise task difficulty")
	}

	recentCoherence := meanOf(recent, func(s Snapshot) float64 { return s.CoherenceAvg })
	olderCoherence := meanOf(older, func(s Snapshot) float64 { return s.CoherenceAvg })
	if recentCoherence-olderCoherence > 0.15 && recentCoherence > 0.85 {
		add(CheckCoherenceInflation, SeverityMedium,
			"Coherence scores inflated sharply to near-ceiling levels",
			"Audit the coherence grader for leniency drift")
	}

	recentHalluc := meanOf(recent, func(s Snapshot) float64 { return s.HallucinationRate })
	olderHalluc := meanOf(older, func(s Snapshot) float64 { return s.HallucinationRate })
	if recentHalluc-olderHalluc > 0.10 {
		add(CheckHallucinationSpike, SeverityHigh,
			"Hallucination rate jumped by more than 10 points between windows",
			"Inspect recent market-data inputs and agent prompt context for corruption")
	}

	recentLen := meanOf(recent, func(s Snapshot) float64 { return s.AvgReasoningLength })
	olderLen := meanOf(older, func(s Snapshot) float64 { return s.AvgReasoningLength })
	if olderLen > 0 && recentLen < 0.6*olderLen {
		add(CheckReasoningShrinkage, SeverityLow,
			"Average reasoning length collapsed below 60% of the prior window",
			"Check for truncated model outputs or token-limit regressions")
	}

	recentCalib := meanOf(recent, func(s Snapshot) float64 { return s.CalibrationAvg })
	olderCalib := meanOf(older, func(s Snapshot) float64 { return s.CalibrationAvg })
	if recentCalib-olderCalib < -0.10 && recentCalib < 0.5 {
		add(CheckCalibrationDecay, SeverityMedium,
			"Calibration decayed by more than 0.10 into sub-0.5 territory",
			"Re-examine confidence elicitation; agents may be gaming stated confidence")
	}

	last := recent[len(recent)-1]
	if pillarStddev(last) > 0.25 {
		add(CheckPillarImbalance, SeverityLow,
			"Scoring pillars are imbalanced in the latest round",
			"Rebalance pillar weights or investigate a single pillar saturating")
	}

	return raised
}

func meanOf(snapshots []Snapshot, f func(Snapshot) float64) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range snapshots {
		sum += f(s)
	}
	return sum / float64(len(snapshots))
}

// pillarStddev is the population standard deviation of one snapshot's
// pillar averages.
func pillarStddev(s Snapshot) float64 {
	if len(s.PillarAverages) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range s.PillarAverages {
		mean += v
	}
	mean /= float64(len(s.PillarAverages))

	variance := 0.0
	for _, v := range s.PillarAverages {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(s.PillarAverages))
	return math.Sqrt(variance)
}
