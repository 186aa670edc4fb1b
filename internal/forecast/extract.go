package forecast

// Heuristic extraction of directional, magnitude, and horizon
// predictions from free-text decision reasoning. The keyword lists and
// first-match-wins ordering are frozen: resolved forecast scores are
// only comparable across time if extraction stays byte-stable.

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moltapp/benchcore/internal/domain"
)

// Direction values. Predicted directions use DirectionFlat for
// sideways calls; DirectionUnknown means no signal could be extracted.
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionFlat    = "flat"
	DirectionUnknown = "unknown"
)

var bullishTerms = []string{
	"bullish", "upside", "rally", "breakout", "uptrend",
	"undervalued", "momentum building", "moon",
}

var bearishTerms = []string{
	"bearish", "downside", "decline", "drop", "overvalued",
	"correction", "downtrend", "sell-off",
}

var sidewaysTerms = []string{
	"sideways", "range-bound", "consolidat", "flat", "neutral", "stable",
}

var magnitudeGain = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:gain|upside|increase|rally|rise|growth|pop)`)

var magnitudeLoss = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%\s*(?:loss|downside|decline|drop|correction|pullback|fall)`)

// horizonPatterns is ordered: the first matching pattern wins.
var horizonPatterns = []struct {
	horizon  string
	patterns []string
}{
	{"intraday", []string{"intraday", "today", "by close", "within hours", "end of day"}},
	{"1-2 days", []string{"tomorrow", "next day", "1-2 days", "couple of days", "48 hours"}},
	{"1 week", []string{"this week", "1 week", "one week", "within a week", "few days"}},
	{"2 weeks", []string{"2 weeks", "two weeks", "fortnight", "next couple weeks"}},
	{"1 month", []string{"1 month", "one month", "30 days", "4 weeks", "this month"}},
	{"3+ months", []string{"quarter", "3 months", "6 months", "long term", "long-term", "months"}},
}

// extractDirection infers the predicted direction. Buy and sell
// decisions imply direction regardless of reasoning; hold decisions are
// scanned for bullish, then bearish, then sideways language.
func extractDirection(action domain.Action, reasoning string) string {
	switch action {
	case domain.ActionBuy:
		return DirectionUp
	case domain.ActionSell:
		return DirectionDown
	}

	lower := strings.ToLower(reasoning)
	for _, term := range bullishTerms {
		if strings.Contains(lower, term) {
			return DirectionUp
		}
	}
	for _, term := range bearishTerms {
		if strings.Contains(lower, term) {
			return DirectionDown
		}
	}
	for _, term := range sidewaysTerms {
		if strings.Contains(lower, term) {
			return DirectionFlat
		}
	}
	return DirectionUnknown
}

// extractMagnitude pulls an explicit "N% gain" / "N% loss" style claim
// out of the reasoning, signed by direction. Nil when no claim exists.
func extractMagnitude(reasoning string) *float64 {
	lower := strings.ToLower(reasoning)
	if m := magnitudeGain.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &v
		}
	}
	if m := magnitudeLoss.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			neg := -v
			return &neg
		}
	}
	return nil
}

// extractHorizon returns the first matching horizon phrase, empty when
// the reasoning names no time frame.
func extractHorizon(reasoning string) string {
	lower := strings.ToLower(reasoning)
	for _, h := range horizonPatterns {
		for _, p := range h.patterns {
			if strings.Contains(lower, p) {
				return h.horizon
			}
		}
	}
	return ""
}
