package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskBudgetsSumToHundred(t *testing.T) {
	sum := budgetVaR + budgetBeta + budgetConcentration + budgetDrawdown +
		budgetCash + budgetHighRisk
	assert.Equal(t, 100.0, sum)
}

func TestScoreRisk_CleanPortfolio(t *testing.T) {
	r := &Report{
		PortfolioValue: 10000,
		VaR95:          defaultVaR95,
		Beta:           1.0,
	}

	score, level, warnings := scoreRisk(r, 3000)

	assert.Equal(t, 0.0, score)
	assert.Equal(t, LevelLow, level)
	assert.Empty(t, warnings)
}

func TestScoreRisk_MaxedOut(t *testing.T) {
	r := &Report{
		PortfolioValue: 10000,
		VaR95:          9.0,
		Beta:           2.8,
		Concentration:  []SectorConcentration{{Sector: "crypto", Allocation: 80}},
		Drawdown:       DrawdownAnalysis{MaxDrawdownPct: 45},
		Positions: []PositionRisk{
			{Symbol: "COINx", Level: LevelHigh},
			{Symbol: "MSTRx", Level: LevelHigh},
			{Symbol: "TSLAx", Level: LevelHigh},
		},
	}

	score, level, warnings := scoreRisk(r, 100) // 1% cash

	assert.Equal(t, 100.0, score)
	assert.Equal(t, LevelCritical, level)
	assert.Len(t, warnings, 6, "every tier at its top band emits a warning")
}

func TestScoreRisk_LevelThresholds(t *testing.T) {
	cases := []struct {
		name  string
		r     *Report
		cash  float64
		level string
	}{
		{
			name:  "moderate at 25",
			r:     &Report{PortfolioValue: 10000, VaR95: 9.0, Beta: 1.0}, // 25 points
			cash:  3000,
			level: LevelModerate,
		},
		{
			name: "high at 50",
			r: &Report{
				PortfolioValue: 10000,
				VaR95:          9.0,
				Beta:           1.0,
				Concentration:  []SectorConcentration{{Sector: "technology", Allocation: 70}},
				Positions:      []PositionRisk{{Level: LevelHigh}, {Level: LevelHigh}, {Level: LevelHigh}},
			}, // 25 + 20 + 10 = 55
			cash:  3000,
			level: LevelHigh,
		},
		{
			name: "critical at 75",
			r: &Report{
				PortfolioValue: 10000,
				VaR95:          9.0,
				Beta:           1.0,
				Concentration:  []SectorConcentration{{Sector: "technology", Allocation: 70}},
				Drawdown:       DrawdownAnalysis{MaxDrawdownPct: 45},
				Positions:      []PositionRisk{{Level: LevelHigh}, {Level: LevelHigh}, {Level: LevelHigh}},
			}, // 25 + 20 + 20 + 10 = 75
			cash:  3000,
			level: LevelCritical,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, level, _ := scoreRisk(tc.r, tc.cash)
			assert.Equal(t, tc.level, level, "score %.0f", score)
		})
	}
}

func TestScoreRisk_MidTiersScoreWithoutTopWarnings(t *testing.T) {
	r := &Report{
		PortfolioValue: 10000,
		VaR95:          4.0, // mid tier, 8 points, no warning
		Beta:           1.6, // 0.6 distance, 5 points
		Concentration:  []SectorConcentration{{Sector: "finance", Allocation: 30}}, // 6 points
		Drawdown:       DrawdownAnalysis{MaxDrawdownPct: 12},                       // 7 points
		Positions:      []PositionRisk{{Level: LevelModerate}},
	}

	score, level, warnings := scoreRisk(r, 1500) // 15% cash, 3 points

	assert.Equal(t, 29.0, score)
	assert.Equal(t, LevelModerate, level)
	assert.Empty(t, warnings)
}

func TestScoreRisk_ZeroPortfolioTreatsCashAsFull(t *testing.T) {
	r := &Report{PortfolioValue: 0, VaR95: defaultVaR95, Beta: 1.0}

	score, _, _ := scoreRisk(r, 0)
	assert.Equal(t, 0.0, score, "no portfolio means no cash penalty")
}
