package rating

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// TimeWindow selects which score samples feed a leaderboard.
type TimeWindow string

const (
	WindowAll TimeWindow = "all"
	Window7d  TimeWindow = "7d"
	Window24h TimeWindow = "24h"
)

// Trend classifications for the 7-day composite trend.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

const trendEpsilon = 0.03

// Entry is one ranked leaderboard row.
type Entry struct {
	AgentID    string `json:"agent_id"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Provider   string `json:"provider"`
	IsExternal bool   `json:"is_external"`

	Rank       int `json:"rank"`
	RankChange int `json:"rank_change"` // positive = moved up

	Elo    int          `json:"elo"`
	Glicko GlickoRating `json:"glicko"`

	AvgComposite      float64 `json:"avg_composite"`
	AvgCoherence      float64 `json:"avg_coherence"`
	AvgCalibration    float64 `json:"avg_calibration"`
	AvgPnL            float64 `json:"avg_pnl"`
	HallucinationRate float64 `json:"hallucination_rate"`
	DisciplineRate    float64 `json:"discipline_rate"`
	WinRate           float64 `json:"win_rate"`
	Sharpe            float64 `json:"sharpe"`

	Trend         string `json:"trend"`
	Grade         string `json:"grade"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
	SampleCount   int    `json:"sample_count"`
}

// Leaderboard recomputes rolling averages over the requested time
// window, ranks agents by average composite, records rank movement
// against the previous ranking, appends the snapshot to the bounded
// history, and returns the top limit entries.
//
// Agents with no samples inside a strict 24h/7d window are omitted from
// that leaderboard rather than shown with empty averages.
func (e *Engine) Leaderboard(window TimeWindow, includeExternal bool, limit int) []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	entries := make([]Entry, 0, len(e.agents))

	ids := make([]string, 0, len(e.agents))
	for id := range e.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		agent := e.agents[id]
		if len(agent.samples) == 0 {
			continue
		}
		if agent.IsExternal && !includeExternal {
			continue
		}

		windowed := filterWindow(agent.samples, window, now)
		if len(windowed) == 0 {
			continue
		}

		entry := Entry{
			AgentID:       agent.ID,
			Name:          agent.Name,
			Model:         agent.Model,
			Provider:      agent.Provider,
			IsExternal:    agent.IsExternal,
			Elo:           agent.elo,
			Glicko:        agent.glicko,
			CurrentStreak: agent.currentStreak,
			BestStreak:    agent.bestStreak,
			SampleCount:   len(windowed),
		}
		fillAverages(&entry, windowed)
		entry.Sharpe = sharpe(windowed)
		entry.Trend = trend(agent.samples, now)
		entry.Grade = letterGrade(entry.AvgComposite)

		entries = append(entries, entry)
	}

	// Rank descending by average composite; stable so equal scores keep
	// the sorted-id order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AvgComposite > entries[j].AvgComposite
	})
	for i := range entries {
		entries[i].Rank = i + 1
		agent := e.agents[entries[i].AgentID]
		if agent.prevRank > 0 {
			entries[i].RankChange = agent.prevRank - entries[i].Rank
		}
		agent.prevRank = entries[i].Rank
	}

	if len(e.snapshots) >= MaxSnapshots {
		e.snapshots = e.snapshots[1:]
	}
	snapshot := make([]Entry, len(entries))
	copy(snapshot, entries)
	e.snapshots = append(e.snapshots, snapshot)

	log.Debug().
		Str("window", string(window)).
		Int("agents", len(entries)).
		Msg("Leaderboard computed")

	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

// SnapshotCount returns how many leaderboard snapshots are retained.
func (e *Engine) SnapshotCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.snapshots)
}

func filterWindow(samples []scoreSample, window TimeWindow, now time.Time) []scoreSample {
	var cutoff time.Time
	switch window {
	case Window24h:
		cutoff = now.Add(-24 * time.Hour)
	case Window7d:
		cutoff = now.Add(-7 * 24 * time.Hour)
	default:
		return samples
	}

	out := make([]scoreSample, 0, len(samples))
	for _, s := range samples {
		if !s.At.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out
}

func fillAverages(entry *Entry, samples []scoreSample) {
	n := float64(len(samples))
	halluc, disc, wins := 0, 0, 0
	for _, s := range samples {
		entry.AvgComposite += s.Composite
		entry.AvgCoherence += s.Coherence
		entry.AvgCalibration += s.Calibration
		entry.AvgPnL += s.PnL
		if s.Hallucination {
			halluc++
		}
		if s.Discipline {
			disc++
		}
		if s.Win {
			wins++
		}
	}
	entry.AvgComposite /= n
	entry.AvgCoherence /= n
	entry.AvgCalibration /= n
	entry.AvgPnL /= n
	entry.HallucinationRate = float64(halluc) / n
	entry.DisciplineRate = float64(disc) / n
	entry.WinRate = float64(wins) / n
}

// sharpe is mean(pnl)/stddev(pnl); 0 with fewer than 3 samples or a
// degenerate deviation.
func sharpe(samples []scoreSample) float64 {
	if len(samples) < 3 {
		return 0
	}
	mean := 0.0
	for _, s := range samples {
		mean += s.PnL
	}
	mean /= float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		diff := s.PnL - mean
		variance += diff * diff
	}
	variance /= float64(len(samples) - 1)
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return mean / stddev
}

// trend compares the last 7 days of composite scores against the prior
// 7-day window (days 7-14 back).
func trend(samples []scoreSample, now time.Time) string {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	recentSum, recentN := 0.0, 0
	priorSum, priorN := 0.0, 0
	for _, s := range samples {
		switch {
		case !s.At.Before(weekAgo):
			recentSum += s.Composite
			recentN++
		case !s.At.Before(twoWeeksAgo):
			priorSum += s.Composite
			priorN++
		}
	}
	if recentN == 0 || priorN == 0 {
		return TrendStable
	}

	delta := recentSum/float64(recentN) - priorSum/float64(priorN)
	switch {
	case delta > trendEpsilon:
		return TrendImproving
	case delta < -trendEpsilon:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// gradeTiers maps average composite onto letter grades, best first.
var gradeTiers = []struct {
	min   float64
	grade string
}{
	{0.95, "A+"},
	{0.90, "A"},
	{0.85, "A-"},
	{0.80, "B+"},
	{0.75, "B"},
	{0.70, "B-"},
	{0.65, "C+"},
	{0.60, "C"},
	{0.55, "C-"},
	{0.50, "D+"},
	{0.40, "D"},
}

func letterGrade(composite float64) string {
	for _, tier := range gradeTiers {
		if composite >= tier.min {
			return tier.grade
		}
	}
	return "F"
}
