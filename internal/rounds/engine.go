// Package rounds reduces one trading round's raw per-agent decisions
// and market snapshot into consensus, decision-quality, and
// market-context analytics. Snapshots are immutable once created and
// retained in a bounded ring buffer keyed by round ID.
package rounds

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moltapp/benchcore/internal/domain"
	"github.com/moltapp/benchcore/internal/sectors"
)

// MaxHistory bounds the retained round analytics; oldest evicted first.
const MaxHistory = 1000

// Consensus classification values.
const (
	ConsensusUnanimous = "unanimous"
	ConsensusMajority  = "majority"
	ConsensusSplit     = "split"
	ConsensusAllHold   = "all_hold"
)

// Analytics is the derived, immutable snapshot for one round.
type Analytics struct {
	RoundID    string    `json:"round_id"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`

	Participation Participation `json:"participation"`
	Consensus     Consensus     `json:"consensus"`
	Quality       Quality       `json:"quality"`
	Market        MarketContext `json:"market_context"`
	Aggregates    Aggregates    `json:"aggregates"`
}

// Participation summarizes how many agents acted vs. held.
type Participation struct {
	TotalAgents       int     `json:"total_agents"`
	ActiveAgents      int     `json:"active_agents"`
	HoldAgents        int     `json:"hold_agents"`
	ParticipationRate float64 `json:"participation_rate"` // active / total
	ExecutionRate     float64 `json:"execution_rate"`     // executed / active, 1.0 when nobody acted
}

// Consensus classifies agreement among the round's active decisions.
type Consensus struct {
	Type             string        `json:"type"` // unanimous | majority | split | all_hold
	MajorityAction   domain.Action `json:"majority_action,omitempty"`
	MajoritySymbol   string        `json:"majority_symbol,omitempty"`
	MajorityCount    int           `json:"majority_count"`
	DissenterCount   int           `json:"dissenter_count"`
	ConfidenceSpread float64       `json:"confidence_spread"` // max - min over all decisions, holds included
}

// AgentQuality is the per-decision quality breakdown for one agent.
type AgentQuality struct {
	AgentID               string  `json:"agent_id"`
	AgentName             string  `json:"agent_name"`
	Composite             float64 `json:"composite"`
	ExecutionSuccess      float64 `json:"execution_success"`
	ConfidenceCalibration float64 `json:"confidence_calibration"`
	PositionSizing        float64 `json:"position_sizing"`
	TimingScore           float64 `json:"timing_score"`
}

// Quality aggregates decision quality across the round.
type Quality struct {
	RoundQuality float64        `json:"round_quality"` // mean of per-agent composites
	PerAgent     []AgentQuality `json:"per_agent"`
	BestAgent    string         `json:"best_agent,omitempty"`
	WorstAgent   string         `json:"worst_agent,omitempty"`
}

// MarketContext captures the market backdrop the round traded against.
type MarketContext struct {
	TopMover        string  `json:"top_mover,omitempty"`
	TopMoverChange  float64 `json:"top_mover_change"`
	WorstPerformer  string  `json:"worst_performer,omitempty"`
	WorstChange     float64 `json:"worst_change"`
	Breadth         float64 `json:"breadth"`    // fraction of symbols with positive 24h change
	Volatility      float64 `json:"volatility"` // mean absolute 24h change
	DominantSector  string  `json:"dominant_sector"`
}

// Aggregates holds round-level trade totals.
type Aggregates struct {
	TotalUsdcTraded   float64 `json:"total_usdc_traded"`
	AvgConfidence     float64 `json:"avg_confidence"` // all decisions
	AvgQuantity       float64 `json:"avg_quantity"`   // active decisions only
	UniqueStocks      int     `json:"unique_stocks_traded"`
	BuyToSellRatio    float64 `json:"buy_to_sell_ratio"` // +Inf sentinel when sells=0<buys
}

// Engine computes and retains round analytics. Writes are serialized
// behind a single mutex; rounds arrive on the order of minutes so
// contention is not a concern.
type Engine struct {
	mu      sync.Mutex
	config  *Config
	history []*Analytics
	byID    map[string]*Analytics
}

// NewEngine creates a round analytics engine. A nil config uses the
// production weight tables.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		byID:   make(map[string]*Analytics),
	}
}

// AnalyzeRound reduces one round's decisions and market snapshot into an
// Analytics record and appends it to the bounded history.
func (e *Engine) AnalyzeRound(roundID string, timestamp time.Time, decisions []domain.RoundDecision, market []domain.MarketTicker, durationMs int64) *Analytics {
	a := &Analytics{
		RoundID:    roundID,
		Timestamp:  timestamp,
		DurationMs: durationMs,
	}

	active := activeDecisions(decisions)
	a.Participation = participation(decisions, active)
	a.Consensus = classifyConsensus(decisions, active)
	a.Quality = e.scoreQuality(decisions)
	a.Market = marketContext(market, active)
	a.Aggregates = aggregate(decisions, active)

	e.mu.Lock()
	if len(e.history) >= e.config.MaxHistory {
		evicted := e.history[0]
		e.history = e.history[1:]
		delete(e.byID, evicted.RoundID)
	}
	e.history = append(e.history, a)
	e.byID[roundID] = a
	e.mu.Unlock()

	log.Debug().
		Str("round_id", roundID).
		Str("consensus", a.Consensus.Type).
		Float64("round_quality", a.Quality.RoundQuality).
		Int("active_agents", a.Participation.ActiveAgents).
		Msg("Round analyzed")

	return a
}

// ByRound returns the analytics for a round ID, false when evicted or unknown.
func (e *Engine) ByRound(roundID string) (*Analytics, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.byID[roundID]
	return a, ok
}

// Recent returns up to n most recent analytics, newest first.
func (e *Engine) Recent(n int) []*Analytics {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n > len(e.history) {
		n = len(e.history)
	}
	out := make([]*Analytics, 0, n)
	for i := len(e.history) - 1; i >= len(e.history)-n; i-- {
		out = append(out, e.history[i])
	}
	return out
}

func activeDecisions(decisions []domain.RoundDecision) []domain.RoundDecision {
	active := make([]domain.RoundDecision, 0, len(decisions))
	for _, d := range decisions {
		if d.Active() {
			active = append(active, d)
		}
	}
	return active
}

func participation(decisions, active []domain.RoundDecision) Participation {
	p := Participation{
		TotalAgents:  len(decisions),
		ActiveAgents: len(active),
		HoldAgents:   len(decisions) - len(active),
	}
	if p.TotalAgents > 0 {
		p.ParticipationRate = float64(p.ActiveAgents) / float64(p.TotalAgents)
	}
	p.ExecutionRate = 1.0
	if p.ActiveAgents > 0 {
		executed := 0
		for _, d := range active {
			if d.Executed {
				executed++
			}
		}
		p.ExecutionRate = float64(executed) / float64(p.ActiveAgents)
	}
	return p
}

func classifyConsensus(decisions, active []domain.RoundDecision) Consensus {
	c := Consensus{Type: ConsensusAllHold}

	// Majority = largest (action, symbol) group among active decisions.
	type group struct{ action, symbol string }
	counts := make(map[group]int)
	order := make([]group, 0, len(active))
	for _, d := range active {
		g := group{string(d.Action), d.Symbol}
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}
	var majority group
	majoritySize := 0
	for _, g := range order { // first-seen wins ties, keeps classification deterministic
		if counts[g] > majoritySize {
			majority = g
			majoritySize = counts[g]
		}
	}

	switch {
	case len(active) == 0:
		// all_hold
	case majoritySize == len(active) && len(active) >= 2:
		c.Type = ConsensusUnanimous
	case majoritySize > 1:
		c.Type = ConsensusMajority
	default:
		c.Type = ConsensusSplit
	}

	if majoritySize > 0 {
		c.MajorityAction = domain.Action(majority.action)
		c.MajoritySymbol = majority.symbol
		c.MajorityCount = majoritySize
		c.DissenterCount = len(active) - majoritySize
	}

	// Spread covers every decision, holds included.
	if len(decisions) > 0 {
		minConf, maxConf := decisions[0].Confidence, decisions[0].Confidence
		for _, d := range decisions[1:] {
			minConf = math.Min(minConf, d.Confidence)
			maxConf = math.Max(maxConf, d.Confidence)
		}
		c.ConfidenceSpread = maxConf - minConf
	}

	return c
}

func marketContext(market []domain.MarketTicker, active []domain.RoundDecision) MarketContext {
	ctx := MarketContext{DominantSector: sectors.Mixed}

	first := true
	positive := 0
	absSum := 0.0
	withChange := 0
	for _, t := range market {
		if t.Change24h == nil {
			continue
		}
		change := *t.Change24h
		withChange++
		absSum += math.Abs(change)
		if change > 0 {
			positive++
		}
		if first || change > ctx.TopMoverChange {
			ctx.TopMover = t.Symbol
			ctx.TopMoverChange = change
		}
		if first || change < ctx.WorstChange {
			ctx.WorstPerformer = t.Symbol
			ctx.WorstChange = change
		}
		first = false
	}
	if withChange > 0 {
		ctx.Breadth = float64(positive) / float64(withChange)
		ctx.Volatility = absSum / float64(withChange)
	}

	if len(active) > 0 {
		ctx.DominantSector = sectors.Lookup(active[0].Symbol)
	}
	return ctx
}

func aggregate(decisions, active []domain.RoundDecision) Aggregates {
	agg := Aggregates{}

	confSum := 0.0
	for _, d := range decisions {
		confSum += d.Confidence
		if d.UsdcAmount != nil {
			agg.TotalUsdcTraded += *d.UsdcAmount
		}
	}
	if len(decisions) > 0 {
		agg.AvgConfidence = confSum / float64(len(decisions))
	}

	qtySum := 0.0
	symbols := make(map[string]struct{})
	buys, sells := 0, 0
	for _, d := range active {
		qtySum += d.Quantity
		symbols[d.Symbol] = struct{}{}
		if d.Action == domain.ActionBuy {
			buys++
		} else {
			sells++
		}
	}
	if len(active) > 0 {
		agg.AvgQuantity = qtySum / float64(len(active))
	}
	agg.UniqueStocks = len(symbols)

	switch {
	case sells > 0:
		agg.BuyToSellRatio = float64(buys) / float64(sells)
	case buys > 0:
		// Intentional infinity sentinel: callers must special-case
		// before JSON serialization.
		agg.BuyToSellRatio = math.Inf(1)
	}

	return agg
}
