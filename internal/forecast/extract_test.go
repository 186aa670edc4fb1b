package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltapp/benchcore/internal/domain"
)

func TestExtractDirection_ActionOverridesReasoning(t *testing.T) {
	// Buy implies up even when the prose reads bearish.
	assert.Equal(t, DirectionUp, extractDirection(domain.ActionBuy, "looks bearish, expecting a drop"))
	assert.Equal(t, DirectionDown, extractDirection(domain.ActionSell, "very bullish long term"))
}

func TestExtractDirection_HoldScansReasoning(t *testing.T) {
	tests := []struct {
		reasoning string
		want      string
	}{
		{"Staying out but the setup looks bullish into earnings", DirectionUp},
		{"Overvalued here, waiting for the correction", DirectionDown},
		{"Expect the stock to consolidate in a range", DirectionFlat},
		{"No strong view on this one", DirectionUnknown},
		// Bullish terms win over bearish when both appear.
		{"bullish breakout despite downside risk", DirectionUp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractDirection(domain.ActionHold, tt.reasoning), tt.reasoning)
	}
}

func TestExtractMagnitude(t *testing.T) {
	up := extractMagnitude("Expecting a 5% gain over the week")
	require.NotNil(t, up)
	assert.Equal(t, 5.0, *up)

	down := extractMagnitude("Could see a 3.5% drop if earnings miss")
	require.NotNil(t, down)
	assert.Equal(t, -3.5, *down)

	assert.Nil(t, extractMagnitude("Strong momentum, going long"))
}

func TestExtractHorizon_FirstMatchWins(t *testing.T) {
	assert.Equal(t, "intraday", extractHorizon("Scalping this today, out by close"))
	assert.Equal(t, "1 week", extractHorizon("Should play out within a week"))
	assert.Equal(t, "3+ months", extractHorizon("Holding through the quarter"))
	assert.Equal(t, "", extractHorizon("No timeline in mind"))

	// Ordered patterns: intraday outranks the weekly phrasing.
	assert.Equal(t, "intraday", extractHorizon("Today's move sets up the trade for this week"))
}
