package rating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterGrade_Boundaries(t *testing.T) {
	tests := []struct {
		composite float64
		want      string
	}{
		{0.96, "A+"},
		{0.95, "A+"},
		{0.901, "A"},
		{0.899, "A-"},
		{0.85, "A-"},
		{0.80, "B+"},
		{0.75, "B"},
		{0.70, "B-"},
		{0.65, "C+"},
		{0.60, "C"},
		{0.55, "C-"},
		{0.50, "D+"},
		{0.45, "D"},
		{0.39, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, letterGrade(tt.composite), "composite %.3f", tt.composite)
	}
}

func TestSharpe(t *testing.T) {
	mk := func(pnls ...float64) []scoreSample {
		out := make([]scoreSample, len(pnls))
		for i, p := range pnls {
			out[i] = scoreSample{PnL: p}
		}
		return out
	}

	assert.Equal(t, 0.0, sharpe(mk(1, 2)), "under 3 samples")
	assert.Equal(t, 0.0, sharpe(mk(5, 5, 5)), "zero deviation")
	assert.Greater(t, sharpe(mk(1, 2, 3)), 0.0)
	assert.Less(t, sharpe(mk(-1, -2, -3)), 0.0)
}

func TestLeaderboard_RanksAndRankChange(t *testing.T) {
	engine := NewEngine()
	engine.RegisterAgent("a1", "Alpha", "m", "p", false)
	engine.RegisterAgent("a2", "Beta", "m", "p", false)

	engine.RecordScore("a1", 0.9, 0.9, false, true, 0.7, 1.0, true)
	engine.RecordScore("a2", 0.6, 0.8, false, true, 0.6, 0.5, true)

	entries := engine.Leaderboard(WindowAll, true, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "a1", entries[0].AgentID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 0, entries[0].RankChange, "no previous rank yet")

	// Beta overtakes Alpha.
	for i := 0; i < 8; i++ {
		engine.RecordScore("a2", 0.95, 0.8, false, true, 0.6, 0.5, true)
	}

	entries = engine.Leaderboard(WindowAll, true, 0)
	require.Len(t, entries, 2)
	assert.Equal(t, "a2", entries[0].AgentID)
	assert.Equal(t, 1, entries[0].RankChange, "moved from rank 2 to rank 1")
	assert.Equal(t, -1, entries[1].RankChange)
}

func TestLeaderboard_ExcludesExternal(t *testing.T) {
	engine := NewEngine()
	engine.RegisterAgent("internal", "In", "m", "p", false)
	engine.RegisterAgent("external", "Ex", "m", "p", true)
	engine.RecordScore("internal", 0.8, 0.8, false, true, 0.6, 0, true)
	engine.RecordScore("external", 0.9, 0.8, false, true, 0.6, 0, true)

	entries := engine.Leaderboard(WindowAll, false, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "internal", entries[0].AgentID)

	entries = engine.Leaderboard(WindowAll, true, 0)
	assert.Len(t, entries, 2)
}

func TestLeaderboard_TimeWindows(t *testing.T) {
	engine := NewEngine()
	engine.RegisterAgent("a1", "Alpha", "m", "p", false)

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-10 * 24 * time.Hour)
	engine.now = func() time.Time { return clock }

	// One sample 10 days old, one 2 days old, one an hour old.
	engine.RecordScore("a1", 0.4, 0.8, false, true, 0.6, 0, false)
	clock = now.Add(-2 * 24 * time.Hour)
	engine.RecordScore("a1", 0.6, 0.8, false, true, 0.6, 0, true)
	clock = now.Add(-1 * time.Hour)
	engine.RecordScore("a1", 0.9, 0.8, false, true, 0.6, 0, true)
	clock = now

	all := engine.Leaderboard(WindowAll, true, 0)
	require.Len(t, all, 1)
	assert.Equal(t, 3, all[0].SampleCount)
	assert.InDelta(t, (0.4+0.6+0.9)/3, all[0].AvgComposite, 1e-9)

	week := engine.Leaderboard(Window7d, true, 0)
	require.Len(t, week, 1)
	assert.Equal(t, 2, week[0].SampleCount)
	assert.InDelta(t, 0.75, week[0].AvgComposite, 1e-9)

	day := engine.Leaderboard(Window24h, true, 0)
	require.Len(t, day, 1)
	assert.Equal(t, 1, day[0].SampleCount)
	assert.InDelta(t, 0.9, day[0].AvgComposite, 1e-9)
}

func TestLeaderboard_StrictWindowOmitsStaleAgents(t *testing.T) {
	engine := NewEngine()
	engine.RegisterAgent("a1", "Alpha", "m", "p", false)

	clock := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return clock }
	engine.RecordScore("a1", 0.8, 0.8, false, true, 0.6, 0, true)

	clock = clock.Add(30 * 24 * time.Hour)
	assert.Empty(t, engine.Leaderboard(Window24h, true, 0))
	assert.Empty(t, engine.Leaderboard(Window7d, true, 0))
	assert.Len(t, engine.Leaderboard(WindowAll, true, 0), 1)
}

func TestLeaderboard_Trend(t *testing.T) {
	engine := NewEngine()
	engine.RegisterAgent("up", "Up", "m", "p", false)
	engine.RegisterAgent("down", "Down", "m", "p", false)

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	clock := now.Add(-10 * 24 * time.Hour) // prior window, days 7-14
	engine.now = func() time.Time { return clock }

	engine.RecordScore("up", 0.5, 0.8, false, true, 0.6, 0, true)
	engine.RecordScore("down", 0.9, 0.8, false, true, 0.6, 0, true)

	clock = now.Add(-2 * 24 * time.Hour) // recent window
	engine.RecordScore("up", 0.8, 0.8, false, true, 0.6, 0, true)
	engine.RecordScore("down", 0.5, 0.8, false, true, 0.6, 0, true)
	clock = now

	entries := engine.Leaderboard(WindowAll, true, 0)
	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.AgentID] = e
	}
	assert.Equal(t, TrendImproving, byID["up"].Trend)
	assert.Equal(t, TrendDeclining, byID["down"].Trend)
}

func TestLeaderboard_LimitAndSnapshotHistory(t *testing.T) {
	engine := NewEngine()
	for _, id := range []string{"a1", "a2", "a3"} {
		engine.RegisterAgent(id, id, "m", "p", false)
		engine.RecordScore(id, 0.5, 0.8, false, true, 0.6, 0, true)
	}

	entries := engine.Leaderboard(WindowAll, true, 2)
	assert.Len(t, entries, 2)
	assert.Equal(t, 1, engine.SnapshotCount())

	engine.Leaderboard(WindowAll, true, 0)
	assert.Equal(t, 2, engine.SnapshotCount())
}
