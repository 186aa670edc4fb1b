package risk

import (
	"math"
	"sort"

	"github.com/moltapp/benchcore/internal/domain"
	"github.com/moltapp/benchcore/internal/sectors"
)

// stressScenario is one named shock table: percent moves per sector.
type stressScenario struct {
	name   string
	shocks map[string]float64
}

// The five fixed scenarios. Sectors absent from a table take the
// scenario's fallback shock under sectors.Other.
var stressScenarios = []stressScenario{
	{
		name: "Tech Crash -20%",
		shocks: map[string]float64{
			sectors.Technology:     -20,
			sectors.Semiconductors: -25,
			sectors.Consumer:       -10,
			sectors.Finance:        -5,
			sectors.Healthcare:     -3,
			sectors.Energy:         -2,
			sectors.ETF:            -12,
			sectors.Crypto:         -15,
			sectors.Other:          -5,
		},
	},
	{
		name: "Market Rally +10%",
		shocks: map[string]float64{
			sectors.Technology:     12,
			sectors.Semiconductors: 15,
			sectors.Consumer:       8,
			sectors.Finance:        9,
			sectors.Healthcare:     6,
			sectors.Energy:         7,
			sectors.ETF:            10,
			sectors.Crypto:         18,
			sectors.Other:          8,
		},
	},
	{
		name: "Interest Rate Shock",
		shocks: map[string]float64{
			sectors.Technology:     -12,
			sectors.Semiconductors: -14,
			sectors.Consumer:       -6,
			sectors.Finance:        4,
			sectors.Healthcare:     -4,
			sectors.Energy:         -2,
			sectors.ETF:            -8,
			sectors.Crypto:         -20,
			sectors.Other:          -5,
		},
	},
	{
		name: "Crypto Contagion",
		shocks: map[string]float64{
			sectors.Technology:     -8,
			sectors.Semiconductors: -10,
			sectors.Consumer:       -3,
			sectors.Finance:        -12,
			sectors.Healthcare:     -1,
			sectors.Energy:         -2,
			sectors.ETF:            -6,
			sectors.Crypto:         -45,
			sectors.Other:          -4,
		},
	},
	{
		name: "Black Swan -30%",
		shocks: map[string]float64{
			sectors.Technology:     -32,
			sectors.Semiconductors: -35,
			sectors.Consumer:       -28,
			sectors.Finance:        -30,
			sectors.Healthcare:     -22,
			sectors.Energy:         -25,
			sectors.ETF:            -30,
			sectors.Crypto:         -50,
			sectors.Other:          -28,
		},
	},
}

// runStressTests projects each scenario's shock table onto the current
// positions. Results are sorted by impact magnitude, worst first.
func runStressTests(positions []domain.Position, portfolioValue float64) []StressResult {
	out := make([]StressResult, 0, len(stressScenarios))
	for _, sc := range stressScenarios {
		impact := 0.0
		for _, p := range positions {
			shock, ok := sc.shocks[sectors.Lookup(p.Symbol)]
			if !ok {
				shock = sc.shocks[sectors.Other]
			}
			impact += p.Value() * shock / 100.0
		}
		r := StressResult{Scenario: sc.name, ImpactUSD: impact}
		if portfolioValue > 0 {
			r.ImpactPct = impact / portfolioValue * 100.0
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return math.Abs(out[i].ImpactUSD) > math.Abs(out[j].ImpactUSD)
	})
	return out
}
