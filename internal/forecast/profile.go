package forecast

import "math"

// Composite profile weights.
const (
	weightDirection  = 0.30
	weightMagnitude  = 0.15
	weightConviction = 0.20
	weightHorizon    = 0.10
	weightLearning   = 0.25
)

// ConfidenceBucket aggregates resolved forecasts within one stated
// confidence quartile.
type ConfidenceBucket struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Accuracy float64 `json:"accuracy"`
	AvgError float64 `json:"avg_error"`
}

// StreakInfo tracks correctness streaks over resolved forecasts.
type StreakInfo struct {
	Current      int  `json:"current"`
	CurrentIsWin bool `json:"current_is_win"`
	LongestWin   int  `json:"longest_win"`
	LongestLoss  int  `json:"longest_loss"`
}

// Profile is the derived forecasting skill summary for one agent.
type Profile struct {
	AgentID           string  `json:"agent_id"`
	TotalForecasts    int     `json:"total_forecasts"`
	ResolvedForecasts int     `json:"resolved_forecasts"`

	DirectionAccuracy float64 `json:"direction_accuracy"`
	AvgMagnitudeError float64 `json:"avg_magnitude_error"`
	HorizonUsageRate  float64 `json:"horizon_usage_rate"`

	BestSymbol          string  `json:"best_symbol,omitempty"`
	BestSymbolAccuracy  float64 `json:"best_symbol_accuracy"`
	WorstSymbol         string  `json:"worst_symbol,omitempty"`
	WorstSymbolAccuracy float64 `json:"worst_symbol_accuracy"`

	Streak            StreakInfo         `json:"streak"`
	ConfidenceBuckets []ConfidenceBucket `json:"confidence_buckets"`

	LearningVelocity      float64 `json:"learning_velocity"`      // 0-1, 0.5 neutral
	ConvictionCorrelation float64 `json:"conviction_correlation"` // 0-1, 0 when under-sampled
	Composite             float64 `json:"composite"`
}

// AgentImpactProfile computes the forecasting skill profile for one
// agent over its retained forecasts. Returns nil when the agent has no
// recorded forecasts.
func (e *Engine) AgentImpactProfile(agentID string) *Profile {
	forecasts := e.agentForecasts(agentID)
	if len(forecasts) == 0 {
		return nil
	}

	p := &Profile{
		AgentID:        agentID,
		TotalForecasts: len(forecasts),
	}

	resolved := make([]Forecast, 0, len(forecasts))
	withHorizon := 0
	for _, f := range forecasts {
		if f.PredictedHorizon != "" {
			withHorizon++
		}
		if f.Status == StatusResolved {
			resolved = append(resolved, f)
		}
	}
	p.ResolvedForecasts = len(resolved)
	p.HorizonUsageRate = float64(withHorizon) / float64(len(forecasts))

	correct := 0
	errSum, errCount := 0.0, 0
	for _, f := range resolved {
		if f.DirectionCorrect {
			correct++
		}
		if f.MagnitudeError != nil {
			errSum += *f.MagnitudeError
			errCount++
		}
	}
	if len(resolved) > 0 {
		p.DirectionAccuracy = float64(correct) / float64(len(resolved))
	}
	if errCount > 0 {
		p.AvgMagnitudeError = errSum / float64(errCount)
	}

	p.BestSymbol, p.BestSymbolAccuracy, p.WorstSymbol, p.WorstSymbolAccuracy = symbolExtremes(resolved)
	p.Streak = computeStreaks(resolved)
	p.ConfidenceBuckets = confidenceBuckets(resolved)
	p.LearningVelocity = learningVelocity(resolved)
	p.ConvictionCorrelation = convictionCorrelation(resolved)

	magnitudeQuality := 1.0 - math.Min(1.0, 10.0*p.AvgMagnitudeError)
	p.Composite = weightDirection*p.DirectionAccuracy +
		weightMagnitude*magnitudeQuality +
		weightConviction*p.ConvictionCorrelation +
		weightHorizon*p.HorizonUsageRate +
		weightLearning*p.LearningVelocity

	return p
}

// AllProfiles returns a profile for every agent with recorded forecasts.
func (e *Engine) AllProfiles() []*Profile {
	ids := e.agentIDs()
	profiles := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		if p := e.AgentImpactProfile(id); p != nil {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// symbolExtremes finds the best and worst symbol by direction accuracy;
// a symbol needs at least 2 resolved forecasts to qualify.
func symbolExtremes(resolved []Forecast) (best string, bestAcc float64, worst string, worstAcc float64) {
	type tally struct{ correct, total int }
	bySymbol := make(map[string]*tally)
	order := make([]string, 0, 8)
	for _, f := range resolved {
		t, ok := bySymbol[f.Symbol]
		if !ok {
			t = &tally{}
			bySymbol[f.Symbol] = t
			order = append(order, f.Symbol)
		}
		t.total++
		if f.DirectionCorrect {
			t.correct++
		}
	}

	for _, sym := range order {
		t := bySymbol[sym]
		if t.total < 2 {
			continue
		}
		acc := float64(t.correct) / float64(t.total)
		if best == "" || acc > bestAcc {
			best, bestAcc = sym, acc
		}
		if worst == "" || acc < worstAcc {
			worst, worstAcc = sym, acc
		}
	}
	return best, bestAcc, worst, worstAcc
}

// computeStreaks walks resolved forecasts newest-first.
func computeStreaks(resolved []Forecast) StreakInfo {
	s := StreakInfo{}
	if len(resolved) == 0 {
		return s
	}

	newest := resolved[len(resolved)-1]
	s.CurrentIsWin = newest.DirectionCorrect
	for i := len(resolved) - 1; i >= 0; i-- {
		if resolved[i].DirectionCorrect != s.CurrentIsWin {
			break
		}
		s.Current++
	}

	run, runIsWin := 0, false
	for _, f := range resolved {
		if run == 0 || f.DirectionCorrect == runIsWin {
			runIsWin = f.DirectionCorrect
			run++
		} else {
			runIsWin = f.DirectionCorrect
			run = 1
		}
		if runIsWin && run > s.LongestWin {
			s.LongestWin = run
		}
		if !runIsWin && run > s.LongestLoss {
			s.LongestLoss = run
		}
	}
	return s
}

// confidenceBuckets splits resolved forecasts into four fixed stated
// confidence quartiles.
func confidenceBuckets(resolved []Forecast) []ConfidenceBucket {
	bounds := []struct {
		label    string
		min, max float64
	}{
		{"0.00-0.25", 0.0, 0.25},
		{"0.25-0.50", 0.25, 0.50},
		{"0.50-0.75", 0.50, 0.75},
		{"0.75-1.00", 0.75, 1.01}, // inclusive top
	}

	buckets := make([]ConfidenceBucket, len(bounds))
	for i, b := range bounds {
		correct := 0
		errSum, errCount := 0.0, 0
		for _, f := range resolved {
			if f.Confidence < b.min || f.Confidence >= b.max {
				continue
			}
			buckets[i].Count++
			if f.DirectionCorrect {
				correct++
			}
			if f.MagnitudeError != nil {
				errSum += *f.MagnitudeError
				errCount++
			}
		}
		buckets[i].Label = b.label
		if buckets[i].Count > 0 {
			buckets[i].Accuracy = float64(correct) / float64(buckets[i].Count)
		}
		if errCount > 0 {
			buckets[i].AvgError = errSum / float64(errCount)
		}
	}
	return buckets
}

// learningVelocity compares first-half vs second-half accuracy over at
// least 10 resolved forecasts; 0.5 is neutral.
func learningVelocity(resolved []Forecast) float64 {
	if len(resolved) < 10 {
		return 0.5
	}
	half := len(resolved) / 2
	first := accuracy(resolved[:half])
	second := accuracy(resolved[half:])
	return clamp01(0.5 + (second-first)*1.667)
}

// convictionCorrelation measures whether high-confidence calls beat
// low-confidence ones; needs at least 5 resolved forecasts, else 0.
func convictionCorrelation(resolved []Forecast) float64 {
	if len(resolved) < 5 {
		return 0
	}
	var high, low []Forecast
	for _, f := range resolved {
		if f.Confidence > 0.7 {
			high = append(high, f)
		} else if f.Confidence <= 0.4 {
			low = append(low, f)
		}
	}
	return clamp01(0.5 + accuracy(high) - accuracy(low))
}

func accuracy(fs []Forecast) float64 {
	if len(fs) == 0 {
		return 0
	}
	correct := 0
	for _, f := range fs {
		if f.DirectionCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(fs))
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
