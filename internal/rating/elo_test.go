package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateElo_EqualRatingsZeroSum(t *testing.T) {
	winner, loser := updateElo(1500, 1500, 1)
	assert.Equal(t, 1516, winner)
	assert.Equal(t, 1484, loser)
}

func TestUpdateElo_Draw(t *testing.T) {
	a, b := updateElo(1500, 1500, 0.5)
	assert.Equal(t, 1500, a)
	assert.Equal(t, 1500, b)
}

func TestUpdateElo_UpsetMovesMore(t *testing.T) {
	// Underdog win moves ratings more than a favorite win.
	underdog, favorite := updateElo(1400, 1600, 1)
	assert.Greater(t, underdog-1400, 16)
	assert.Less(t, favorite, 1600)

	fav2, dog2 := updateElo(1600, 1400, 1)
	assert.Less(t, fav2-1600, 16)
	assert.Greater(t, dog2, 1400-16)
}

func TestUpdateGlicko_MovesTowardScore(t *testing.T) {
	start := GlickoRating{Rating: 1500, Deviation: 350, Volatility: 0.06}

	up := updateGlicko(start, 0.9) // maps above 1500
	assert.Greater(t, up.Rating, 1500.0)

	down := updateGlicko(start, 0.1)
	assert.Less(t, down.Rating, 1500.0)

	neutral := updateGlicko(start, 0.5)
	assert.InDelta(t, 1500.0, neutral.Rating, 1e-9)
}

func TestUpdateGlicko_Bounds(t *testing.T) {
	g := GlickoRating{Rating: 1500, Deviation: 350, Volatility: 0.06}
	for i := 0; i < 200; i++ {
		g = updateGlicko(g, 0.95)
	}
	assert.GreaterOrEqual(t, g.Deviation, 30.0, "deviation floor holds")
	assert.GreaterOrEqual(t, g.Volatility, 0.01, "volatility floor holds")
}
