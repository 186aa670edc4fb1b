package rating

import "math"

// eloK is the fixed K-factor. The update is symmetric and zero-sum:
// at equal ratings a decisive result moves both sides by 16 points.
const eloK = 32.0

// glickoScale converts between Glicko-2 internal scale and rating points.
const glickoScale = 173.7178

// updateElo applies one pairwise result (1 win, 0 loss, 0.5 draw, from
// a's perspective) and returns both new ratings.
func updateElo(a, b int, result float64) (int, int) {
	expectedA := 1.0 / (1.0 + math.Pow(10, float64(b-a)/400.0))
	expectedB := 1.0 - expectedA

	newA := int(math.Round(float64(a) + eloK*(result-expectedA)))
	newB := int(math.Round(float64(b) + eloK*((1.0-result)-expectedB)))
	return newA, newB
}

// updateGlicko applies a simplified single-pass Glicko-2 update driven
// by the agent's composite score rather than head-to-head results: the
// 0-1 score maps onto a 1200-1800 performance rating and the state
// converges toward it while deviation decays. This is not the full
// iterative Glicko-2 volatility solve; the approximation is stable at
// one update per round.
func updateGlicko(g GlickoRating, score float64) GlickoRating {
	phi := g.Deviation / glickoScale
	scaledScore := 1500 + (score-0.5)*600

	v := 1.0 / (1.0 + 3.0*phi*phi/(math.Pi*math.Pi))
	delta := v * (scaledScore - g.Rating)

	volatility := math.Max(0.01, g.Volatility*0.9+0.1*math.Abs(delta)/400.0)
	deviation := math.Max(30.0, math.Sqrt(phi*phi+volatility*volatility)*glickoScale*0.95)
	rating := g.Rating + 32.0*delta/400.0

	return GlickoRating{
		Rating:     rating,
		Deviation:  deviation,
		Volatility: volatility,
	}
}
