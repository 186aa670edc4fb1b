// Package rating maintains competitive ratings for registered agents:
// pairwise ELO, simplified Glicko-2, rolling metric histories, streaks,
// and ranked leaderboard snapshots across time windows.
package rating

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// MaxSamples bounds each agent's per-metric history.
	MaxSamples = 500
	// MaxSnapshots bounds the retained leaderboard snapshot history.
	MaxSnapshots = 500

	initialElo       = 1500
	initialGlickoRD  = 350.0
	initialGlickoVol = 0.06
)

// scoreSample is one recorded benchmark result for an agent. All metric
// histories advance together, so one bounded record list carries them.
type scoreSample struct {
	At            time.Time
	Composite     float64
	Coherence     float64
	Calibration   float64
	PnL           float64
	Hallucination bool
	Discipline    bool
	Win           bool
}

// GlickoRating is the simplified Glicko-2 state for one agent.
type GlickoRating struct {
	Rating     float64 `json:"rating"`
	Deviation  float64 `json:"deviation"`
	Volatility float64 `json:"volatility"`
}

// agentState is the mutable per-agent rating record. Agents are never
// deleted; the benchmark is append-only for the process lifetime.
type agentState struct {
	ID         string
	Name       string
	Model      string
	Provider   string
	IsExternal bool

	samples []scoreSample
	elo     int
	glicko  GlickoRating

	currentStreak int
	bestStreak    int
	prevRank      int
}

func (a *agentState) latestComposite() float64 {
	if len(a.samples) == 0 {
		return 0
	}
	return a.samples[len(a.samples)-1].Composite
}

// Engine owns all agent rating state. Every write is globally
// serialized: RecordScore updates ELO pairwise against every other
// agent, and per-agent locking would lose updates when two rounds land
// concurrently. Agent counts are tens, so the O(n) pass is cheap.
type Engine struct {
	mu        sync.Mutex
	agents    map[string]*agentState
	snapshots [][]Entry
	now       func() time.Time
}

// NewEngine creates a rating engine.
func NewEngine() *Engine {
	return &Engine{
		agents: make(map[string]*agentState),
		now:    time.Now,
	}
}

// RegisterAgent registers an agent for rating. Idempotent: a second
// registration with the same id is a no-op and preserves existing
// rating history.
func (e *Engine) RegisterAgent(id, name, model, provider string, isExternal bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.agents[id]; ok {
		return
	}
	e.agents[id] = &agentState{
		ID:         id,
		Name:       name,
		Model:      model,
		Provider:   provider,
		IsExternal: isExternal,
		elo:        initialElo,
		glicko: GlickoRating{
			Rating:     1500,
			Deviation:  initialGlickoRD,
			Volatility: initialGlickoVol,
		},
	}
	log.Info().Str("agent_id", id).Str("model", model).Msg("Agent registered for rating")
}

// RecordScore ingests one round's benchmark result for an agent and
// updates histories, streaks, ELO, and Glicko-2. Unknown agents are
// ignored.
func (e *Engine) RecordScore(agentID string, compositeScore, coherence float64, hallucinationDetected, disciplinePassed bool, calibration, pnl float64, isWin bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	agent, ok := e.agents[agentID]
	if !ok {
		return
	}

	if len(agent.samples) >= MaxSamples {
		agent.samples = agent.samples[1:]
	}
	agent.samples = append(agent.samples, scoreSample{
		At:            e.now(),
		Composite:     compositeScore,
		Coherence:     coherence,
		Calibration:   calibration,
		PnL:           pnl,
		Hallucination: hallucinationDetected,
		Discipline:    disciplinePassed,
		Win:           isWin,
	})

	if isWin {
		agent.currentStreak++
		if agent.currentStreak > agent.bestStreak {
			agent.bestStreak = agent.currentStreak
		}
	} else {
		agent.currentStreak = 0
	}

	e.updateEloPairwise(agent, compositeScore)
	agent.glicko = updateGlicko(agent.glicko, compositeScore)
}

// updateEloPairwise plays the agent's new composite score against every
// other registered agent's latest score. Iteration order is sorted for
// determinism.
func (e *Engine) updateEloPairwise(agent *agentState, composite float64) {
	ids := make([]string, 0, len(e.agents))
	for id := range e.agents {
		if id != agent.ID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		other := e.agents[id]
		if len(other.samples) == 0 {
			continue
		}

		result := 0.5
		switch {
		case composite > other.latestComposite():
			result = 1.0
		case composite < other.latestComposite():
			result = 0.0
		}

		agent.elo, other.elo = updateElo(agent.elo, other.elo, result)
	}
}

// SampleCount returns how many scores an agent has recorded, false when
// the agent is unknown.
func (e *Engine) SampleCount(agentID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	agent, ok := e.agents[agentID]
	if !ok {
		return 0, false
	}
	return len(agent.samples), true
}

// Elo returns an agent's current ELO, false when unknown.
func (e *Engine) Elo(agentID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	agent, ok := e.agents[agentID]
	if !ok {
		return 0, false
	}
	return agent.elo, true
}

// Glicko returns an agent's current Glicko-2 rating, false when unknown.
func (e *Engine) Glicko(agentID string) (GlickoRating, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	agent, ok := e.agents[agentID]
	if !ok {
		return GlickoRating{}, false
	}
	return agent.glicko, true
}
