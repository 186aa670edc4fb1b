package risk

import (
	"math"
	"sort"

	"github.com/moltapp/benchcore/internal/domain"
)

// Fallback constants used under data scarcity.
const (
	defaultVaR95  = 2.5
	defaultCVaR95 = 3.5
	defaultBeta   = 1.0

	// minReturnSamples is the floor below which VaR and beta fall back
	// to their defaults.
	minReturnSamples = 5

	betaFloor = -3.0
	betaCeil  = 3.0
)

// dailyReturns derives percent daily returns from the committed value
// history when at least two points exist. With a sparse history it
// synthesizes returns from recent trades instead; that path is a rough
// approximation and uses the analyzer's rng, so seed it for
// reproducible tests.
func (a *Analyzer) dailyReturns(history []valuePoint, trades []domain.Trade) []float64 {
	if len(history) >= 2 {
		out := make([]float64, 0, len(history)-1)
		for i := 1; i < len(history); i++ {
			prev := history[i-1].value
			if prev == 0 {
				continue
			}
			out = append(out, (history[i].value-prev)/prev*100.0)
		}
		return out
	}
	return a.syntheticReturns(trades)
}

// syntheticReturns fabricates bounded daily returns from trade flow:
// buys drift slightly positive, sells slightly negative, with uniform
// noise on top. Each value lands in roughly [-2.2, 2.2] percent.
func (a *Analyzer) syntheticReturns(trades []domain.Trade) []float64 {
	if len(trades) > maxSyntheticTrades {
		trades = trades[:maxSyntheticTrades]
	}
	out := make([]float64, 0, len(trades))

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range trades {
		drift := 0.2
		if t.Side == domain.ActionSell {
			drift = -0.2
		}
		out = append(out, drift+(a.rng.Float64()-0.5)*4.0)
	}
	return out
}

// historicalVaR runs a historical simulation over the return series:
// sort ascending, take the 5th-percentile index as VaR95 (absolute
// value), average the tail at or below it for CVaR95. Falls back to
// the documented defaults below minReturnSamples.
func historicalVaR(returns []float64) (var95, cvar95 float64) {
	if len(returns) < minReturnSamples {
		return defaultVaR95, defaultCVaR95
	}
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(math.Floor(float64(len(sorted)) * 0.05))
	var95 = math.Abs(sorted[idx])

	tail := 0.0
	for i := 0; i <= idx; i++ {
		tail += sorted[i]
	}
	cvar95 = math.Abs(tail / float64(idx+1))
	return var95, cvar95
}

// betaAgainst estimates beta as cov(agent, market) / var(market) over
// the overlapping sample length, clamped to [-3, 3]. Defaults to 1.0
// when either series is too short or the market shows no variance.
func betaAgainst(agent, market []float64) float64 {
	if len(agent) < minReturnSamples || len(market) < minReturnSamples {
		return defaultBeta
	}
	n := len(agent)
	if len(market) < n {
		n = len(market)
	}
	agent = agent[len(agent)-n:]
	market = market[len(market)-n:]

	meanA, meanM := 0.0, 0.0
	for i := 0; i < n; i++ {
		meanA += agent[i]
		meanM += market[i]
	}
	meanA /= float64(n)
	meanM /= float64(n)

	cov, varM := 0.0, 0.0
	for i := 0; i < n; i++ {
		cov += (agent[i] - meanA) * (market[i] - meanM)
		varM += (market[i] - meanM) * (market[i] - meanM)
	}
	if varM == 0 {
		return defaultBeta
	}
	beta := cov / varM
	return math.Max(betaFloor, math.Min(betaCeil, beta))
}
