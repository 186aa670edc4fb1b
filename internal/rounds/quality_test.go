package rounds

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltapp/benchcore/internal/domain"
)

func TestQualityWeightsSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	sum := cfg.ExecutionWeight + cfg.CalibrationWeight + cfg.SizingWeight + cfg.TimingWeight
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestExecutionSuccess_Table(t *testing.T) {
	tests := []struct {
		name     string
		decision domain.RoundDecision
		want     float64
	}{
		{"executed buy", domain.RoundDecision{Action: domain.ActionBuy, Executed: true}, 100},
		{"hold", domain.RoundDecision{Action: domain.ActionHold}, 80},
		{"hold with executed flag still scores as hold", domain.RoundDecision{Action: domain.ActionHold, Executed: true}, 80},
		{"failed sell", domain.RoundDecision{Action: domain.ActionSell, Executed: false}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, executionSuccess(tt.decision))
		})
	}
}

func TestConfidenceCalibration_Table(t *testing.T) {
	// Confident executed trade.
	assert.Equal(t, 90.0, confidenceCalibration(domain.RoundDecision{
		Action: domain.ActionBuy, Executed: true, Confidence: 0.8,
	}))
	// Confident failure is penalized hardest.
	assert.Equal(t, 10.0, confidenceCalibration(domain.RoundDecision{
		Action: domain.ActionBuy, Executed: false, Confidence: 0.9,
	}))
	// Hold keeps the baseline.
	assert.Equal(t, 70.0, confidenceCalibration(domain.RoundDecision{
		Action: domain.ActionHold, Confidence: 0.9,
	}))
	// Executed without conviction keeps the baseline.
	assert.Equal(t, 70.0, confidenceCalibration(domain.RoundDecision{
		Action: domain.ActionBuy, Executed: true, Confidence: 0.5,
	}))
}

func TestPositionSizing_Tiers(t *testing.T) {
	tests := []struct {
		name   string
		amount *float64
		want   float64
	}{
		{"no amount", nil, 70},
		{"zero amount", usdc(0), 60},
		{"small probe", usdc(35), 90},
		{"boundary 50", usdc(50), 90},
		{"mid tier", usdc(150), 75},
		{"boundary 200", usdc(200), 75},
		{"oversized", usdc(500), 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := domain.RoundDecision{Action: domain.ActionBuy, UsdcAmount: tt.amount}
			assert.Equal(t, tt.want, positionSizing(d))
		})
	}
}

func TestTimingScore_ReasoningLength(t *testing.T) {
	long := strings.Repeat("x", 101)
	mid := strings.Repeat("x", 51)

	assert.Equal(t, 85.0, timingScore(domain.RoundDecision{Reasoning: long}))
	assert.Equal(t, 70.0, timingScore(domain.RoundDecision{Reasoning: mid}))
	assert.Equal(t, 50.0, timingScore(domain.RoundDecision{Reasoning: "short"}))
}

func TestScoreQuality_BestAndWorst(t *testing.T) {
	engine := NewEngine(nil)

	strong := decision("strong", domain.ActionBuy, "NVDAx", 0.9, true)
	strong.UsdcAmount = usdc(40)
	strong.Reasoning = strings.Repeat("analysis ", 20)

	weak := decision("weak", domain.ActionSell, "TSLAx", 0.9, false)
	weak.UsdcAmount = usdc(500)

	a := engine.AnalyzeRound("r1", time.Now(), []domain.RoundDecision{strong, weak}, nil, 0)

	require.Len(t, a.Quality.PerAgent, 2)
	assert.Equal(t, "strong", a.Quality.BestAgent)
	assert.Equal(t, "weak", a.Quality.WorstAgent)
	assert.Greater(t, a.Quality.PerAgent[0].Composite, a.Quality.PerAgent[1].Composite)

	// Round quality is the mean of the two composites.
	want := (a.Quality.PerAgent[0].Composite + a.Quality.PerAgent[1].Composite) / 2
	assert.InDelta(t, want, a.Quality.RoundQuality, 1e-9)
}
