package risk

import (
	"fmt"
	"math"
)

// Point budgets for the composite risk score. They sum to 100.
const (
	budgetVaR           = 25.0
	budgetBeta          = 15.0
	budgetConcentration = 20.0
	budgetDrawdown      = 20.0
	budgetCash          = 10.0
	budgetHighRisk      = 10.0
)

// Risk level thresholds on the 0-100 composite.
const (
	criticalThreshold = 75.0
	highThreshold     = 50.0
	moderateThreshold = 25.0
)

// scoreRisk turns the report's components into a clamped 0-100 score,
// a level, and per-tier warnings. Higher is riskier.
func scoreRisk(r *Report, cashBalance float64) (score float64, level string, warnings []string) {
	warnings = []string{}

	// VaR tier, up to 25 points.
	switch {
	case r.VaR95 >= 8:
		score += budgetVaR
		warnings = append(warnings, fmt.Sprintf("Extreme daily VaR of %.1f%%; portfolio can lose more than 8%% on a bad day", r.VaR95))
	case r.VaR95 >= 5:
		score += 15
		warnings = append(warnings, fmt.Sprintf("Elevated daily VaR of %.1f%%", r.VaR95))
	case r.VaR95 >= 3:
		score += 8
	}

	// Beta distance from 1.0, up to 15 points.
	betaDist := math.Abs(r.Beta - 1.0)
	switch {
	case betaDist >= 1.5:
		score += budgetBeta
		warnings = append(warnings, fmt.Sprintf("Beta of %.2f is far from the market; returns are weakly explained by market moves", r.Beta))
	case betaDist >= 1.0:
		score += 10
	case betaDist >= 0.5:
		score += 5
	}

	// Top-sector concentration, up to 20 points.
	topAlloc := 0.0
	topSector := ""
	if len(r.Concentration) > 0 {
		topAlloc = r.Concentration[0].Allocation
		topSector = r.Concentration[0].Sector
	}
	switch {
	case topAlloc >= 60:
		score += budgetConcentration
		warnings = append(warnings, fmt.Sprintf("%.0f%% of the portfolio sits in %s; a single-sector shock is unhedged", topAlloc, topSector))
	case topAlloc >= 40:
		score += 12
		warnings = append(warnings, fmt.Sprintf("Heavy %s concentration at %.0f%%", topSector, topAlloc))
	case topAlloc >= 25:
		score += 6
	}

	// Max drawdown, up to 20 points.
	dd := r.Drawdown.MaxDrawdownPct
	switch {
	case dd >= 30:
		score += budgetDrawdown
		warnings = append(warnings, fmt.Sprintf("Max drawdown of %.1f%% shows severe historical losses", dd))
	case dd >= 20:
		score += 14
		warnings = append(warnings, fmt.Sprintf("Max drawdown of %.1f%%", dd))
	case dd >= 10:
		score += 7
	}

	// Cash buffer inverse, up to 10 points. Thin cash means forced
	// selling under stress.
	cashPct := 100.0
	if r.PortfolioValue > 0 {
		cashPct = cashBalance / r.PortfolioValue * 100.0
	}
	switch {
	case cashPct < 5:
		score += budgetCash
		warnings = append(warnings, fmt.Sprintf("Cash buffer is only %.1f%% of portfolio value", cashPct))
	case cashPct < 10:
		score += 6
	case cashPct < 20:
		score += 3
	}

	// High-risk position count, up to 10 points.
	highRisk := 0
	for _, p := range r.Positions {
		if p.Level == LevelHigh {
			highRisk++
		}
	}
	switch {
	case highRisk >= 3:
		score += budgetHighRisk
		warnings = append(warnings, fmt.Sprintf("%d high-risk positions (oversized or volatile)", highRisk))
	case highRisk == 2:
		score += 7
	case highRisk == 1:
		score += 4
	}

	score = math.Max(0, math.Min(100, score))
	switch {
	case score >= criticalThreshold:
		level = LevelCritical
	case score >= highThreshold:
		level = LevelHigh
	case score >= moderateThreshold:
		level = LevelModerate
	default:
		level = LevelLow
	}
	return score, level, warnings
}
