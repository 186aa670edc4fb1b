package rounds

// Decision-quality scoring. Each decision gets a 0-100 composite from
// four fixed-weight components; the tables are calibrated against the
// benchmark's historical score distribution, so changing them breaks
// comparability across recorded rounds.

import (
	"github.com/moltapp/benchcore/internal/domain"
)

// Config holds the quality weight tables and history cap.
type Config struct {
	MaxHistory int `yaml:"max_history"`

	// Component weights, must sum to 1.0.
	ExecutionWeight   float64 `yaml:"execution_weight"`   // 0.35
	CalibrationWeight float64 `yaml:"calibration_weight"` // 0.25
	SizingWeight      float64 `yaml:"sizing_weight"`      // 0.20
	TimingWeight      float64 `yaml:"timing_weight"`      // 0.20
}

// DefaultConfig returns the production quality weights.
func DefaultConfig() *Config {
	return &Config{
		MaxHistory:        MaxHistory,
		ExecutionWeight:   0.35,
		CalibrationWeight: 0.25,
		SizingWeight:      0.20,
		TimingWeight:      0.20,
	}
}

func (e *Engine) scoreQuality(decisions []domain.RoundDecision) Quality {
	q := Quality{PerAgent: make([]AgentQuality, 0, len(decisions))}
	if len(decisions) == 0 {
		return q
	}

	sum := 0.0
	bestIdx, worstIdx := 0, 0
	for i, d := range decisions {
		aq := AgentQuality{
			AgentID:               d.AgentID,
			AgentName:             d.AgentName,
			ExecutionSuccess:      executionSuccess(d),
			ConfidenceCalibration: confidenceCalibration(d),
			PositionSizing:        positionSizing(d),
			TimingScore:           timingScore(d),
		}
		aq.Composite = e.config.ExecutionWeight*aq.ExecutionSuccess +
			e.config.CalibrationWeight*aq.ConfidenceCalibration +
			e.config.SizingWeight*aq.PositionSizing +
			e.config.TimingWeight*aq.TimingScore

		q.PerAgent = append(q.PerAgent, aq)
		sum += aq.Composite
		if aq.Composite > q.PerAgent[bestIdx].Composite {
			bestIdx = i
		}
		if aq.Composite < q.PerAgent[worstIdx].Composite {
			worstIdx = i
		}
	}

	q.RoundQuality = sum / float64(len(decisions))
	q.BestAgent = q.PerAgent[bestIdx].AgentID
	q.WorstAgent = q.PerAgent[worstIdx].AgentID
	return q
}

// executionSuccess: 100 executed, 80 hold, 0 failed.
func executionSuccess(d domain.RoundDecision) float64 {
	if d.Action == domain.ActionHold {
		return 80
	}
	if d.Executed {
		return 100
	}
	return 0
}

// confidenceCalibration: 70 baseline; 90 when an executed trade carried
// conviction above 0.7; a failed trade scores inversely to the stated
// confidence so that confident failures are penalized hardest.
func confidenceCalibration(d domain.RoundDecision) float64 {
	if d.Executed && d.Confidence > 0.7 {
		return 90
	}
	if d.Action != domain.ActionHold && !d.Executed {
		return 100 - d.Confidence*100
	}
	return 70
}

// positionSizing scores USDC sizing discipline: small probing sizes rate
// highest, oversized positions lowest. 70 baseline when no amount is known.
func positionSizing(d domain.RoundDecision) float64 {
	if d.UsdcAmount == nil {
		return 70
	}
	amount := *d.UsdcAmount
	switch {
	case amount == 0:
		return 60
	case amount <= 50:
		return 90
	case amount <= 200:
		return 75
	default:
		return 50
	}
}

// timingScore uses reasoning length as a proxy for analysis depth.
func timingScore(d domain.RoundDecision) float64 {
	switch {
	case len(d.Reasoning) > 100:
		return 85
	case len(d.Reasoning) > 50:
		return 70
	default:
		return 50
	}
}
