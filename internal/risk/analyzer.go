// Package risk computes on-demand portfolio risk reports per agent:
// historical VaR/CVaR, beta against a recorded market proxy, sector
// concentration, per-position risk, drawdown tracking, fixed stress
// scenarios, and a composite 0-100 risk score.
package risk

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moltapp/benchcore/internal/domain"
	"github.com/moltapp/benchcore/internal/sectors"
	"github.com/moltapp/benchcore/internal/storage"
)

const (
	// MaxValueHistory bounds the per-agent portfolio value history.
	MaxValueHistory = 500
	// MaxScoreHistory bounds the retained risk scores used for averaging.
	MaxScoreHistory = 500
	// MaxMarketReturns bounds the recorded market proxy return series.
	MaxMarketReturns = 500

	// maxSyntheticTrades caps how many recent trades feed the synthetic
	// return fallback.
	maxSyntheticTrades = 30
)

// Position and portfolio risk levels.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// SectorConcentration is one sector's share of portfolio value.
// HHIContribution is the squared allocation percentage, so a fully
// concentrated portfolio scores 10000.
type SectorConcentration struct {
	Sector          string  `json:"sector"`
	Value           float64 `json:"value"`
	Allocation      float64 `json:"allocation_pct"`
	HHIContribution float64 `json:"hhi_contribution"`
}

// PositionRisk is the per-position risk breakdown.
type PositionRisk struct {
	Symbol          string  `json:"symbol"`
	Value           float64 `json:"value"`
	Weight          float64 `json:"weight_pct"`
	Volatility      float64 `json:"volatility"`
	VaRContribution float64 `json:"var_contribution"`
	Level           string  `json:"level"`
}

// DrawdownAnalysis summarizes peak-to-trough behavior over the agent's
// value history plus the current value.
type DrawdownAnalysis struct {
	MaxDrawdownPct     float64 `json:"max_drawdown_pct"`
	Peak               float64 `json:"peak"`
	Trough             float64 `json:"trough"`
	CurrentDrawdownPct float64 `json:"current_drawdown_pct"`
	DurationHours      float64 `json:"duration_hours"`
	Recovered          bool    `json:"recovered"`
}

// StressResult is one scenario's projected portfolio impact.
type StressResult struct {
	Scenario  string  `json:"scenario"`
	ImpactUSD float64 `json:"impact_usdc"`
	ImpactPct float64 `json:"impact_pct"`
}

// Report is the full on-demand portfolio risk report. It is not
// retained; only summary counters survive the call.
type Report struct {
	AgentID        string    `json:"agent_id"`
	PortfolioValue float64   `json:"portfolio_value"`
	CashBalance    float64   `json:"cash_balance"`
	ComputedAt     time.Time `json:"computed_at"`

	VaR95  float64 `json:"var_95"`
	CVaR95 float64 `json:"cvar_95"`
	Beta   float64 `json:"beta"`

	Concentration []SectorConcentration `json:"sector_concentration"`
	Positions     []PositionRisk        `json:"position_risks"`
	Drawdown      DrawdownAnalysis      `json:"drawdown"`
	StressTests   []StressResult        `json:"stress_tests"`

	RiskScore float64  `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
	Warnings  []string `json:"warnings"`
}

// Summary carries the counters retained across analyses.
type Summary struct {
	TotalAnalyses  int     `json:"total_analyses"`
	AvgRiskScore   float64 `json:"avg_risk_score"`
	CriticalAlerts int     `json:"critical_alerts"`
}

type valuePoint struct {
	value float64
	at    time.Time
}

// agentState holds one agent's committed rolling history behind its own
// lock, so analyses for different agents never contend.
type agentState struct {
	mu     sync.Mutex
	values []valuePoint
}

// Analyzer computes portfolio risk reports. Storage reads happen before
// any state commit: a failed call leaves previously committed history
// untouched.
type Analyzer struct {
	store storage.Store

	mu       sync.Mutex // guards agents map, counters, market series, rng
	agents   map[string]*agentState
	market   []float64
	scores   []float64
	total    int
	critical int

	rng *rand.Rand
	now func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSeed makes the synthetic-return fallback deterministic.
func WithSeed(seed int64) Option {
	return func(a *Analyzer) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// NewAnalyzer creates a portfolio risk analyzer reading from store.
func NewAnalyzer(store storage.Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:  store,
		agents: make(map[string]*agentState),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordMarketReturn appends one market proxy daily return (percent)
// used for beta estimation.
func (a *Analyzer) RecordMarketReturn(pct float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.market) >= MaxMarketReturns {
		a.market = a.market[1:]
	}
	a.market = append(a.market, pct)
}

// AnalyzePortfolioRisk reads the agent's positions and recent trades
// from storage, computes the full risk report, and only then commits
// the portfolio value into the agent's rolling history.
func (a *Analyzer) AnalyzePortfolioRisk(ctx context.Context, agentID string, portfolioValue, cashBalance float64) (*Report, error) {
	positions, err := a.store.Positions(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("fetch positions for %s: %w", agentID, err)
	}
	trades, err := a.store.RecentTrades(ctx, agentID, maxSyntheticTrades)
	if err != nil {
		return nil, fmt.Errorf("fetch trades for %s: %w", agentID, err)
	}

	st := a.state(agentID)
	st.mu.Lock()
	history := make([]valuePoint, len(st.values))
	copy(history, st.values)
	st.mu.Unlock()

	now := a.now()
	returns := a.dailyReturns(history, trades)
	market := a.marketSnapshot()

	r := &Report{
		AgentID:        agentID,
		PortfolioValue: portfolioValue,
		CashBalance:    cashBalance,
		ComputedAt:     now,
	}
	r.VaR95, r.CVaR95 = historicalVaR(returns)
	r.Beta = betaAgainst(returns, market)
	r.Concentration = sectorConcentration(positions, portfolioValue)
	r.Positions = positionRisks(positions, portfolioValue)
	r.Drawdown = analyzeDrawdown(history, portfolioValue, now)
	r.StressTests = runStressTests(positions, portfolioValue)
	r.RiskScore, r.RiskLevel, r.Warnings = scoreRisk(r, cashBalance)

	// Commit only after the whole report computed cleanly.
	st.mu.Lock()
	if len(st.values) >= MaxValueHistory {
		st.values = st.values[1:]
	}
	st.values = append(st.values, valuePoint{value: portfolioValue, at: now})
	st.mu.Unlock()

	a.mu.Lock()
	a.total++
	if len(a.scores) >= MaxScoreHistory {
		a.scores = a.scores[1:]
	}
	a.scores = append(a.scores, r.RiskScore)
	if r.RiskLevel == LevelCritical {
		a.critical++
	}
	a.mu.Unlock()

	log.Debug().
		Str("agent_id", agentID).
		Float64("risk_score", r.RiskScore).
		Str("risk_level", r.RiskLevel).
		Float64("var_95", r.VaR95).
		Msg("portfolio risk analyzed")
	return r, nil
}

// Summary returns the retained cross-analysis counters.
func (a *Analyzer) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Summary{TotalAnalyses: a.total, CriticalAlerts: a.critical}
	if len(a.scores) > 0 {
		sum := 0.0
		for _, v := range a.scores {
			sum += v
		}
		s.AvgRiskScore = sum / float64(len(a.scores))
	}
	return s
}

// ValueHistoryLen reports how many portfolio values are committed for
// an agent.
func (a *Analyzer) ValueHistoryLen(agentID string) int {
	st := a.state(agentID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.values)
}

func (a *Analyzer) state(agentID string) *agentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.agents[agentID]
	if !ok {
		st = &agentState{}
		a.agents[agentID] = st
	}
	return st
}

func (a *Analyzer) marketSnapshot() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, len(a.market))
	copy(out, a.market)
	return out
}

// sectorConcentration groups position value by sector, computing each
// sector's allocation percentage and squared-share HHI contribution,
// sorted by value descending.
func sectorConcentration(positions []domain.Position, portfolioValue float64) []SectorConcentration {
	totals := make(map[string]float64)
	sum := 0.0
	for _, p := range positions {
		v := p.Value()
		totals[sectors.Lookup(p.Symbol)] += v
		sum += v
	}
	base := portfolioValue
	if base <= 0 {
		base = sum
	}

	out := make([]SectorConcentration, 0, len(totals))
	for sector, value := range totals {
		c := SectorConcentration{Sector: sector, Value: value}
		if base > 0 {
			c.Allocation = value / base * 100.0
		}
		c.HHIContribution = c.Allocation * c.Allocation
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}

// positionRisks scores each position by portfolio weight and the static
// volatility heuristic.
func positionRisks(positions []domain.Position, portfolioValue float64) []PositionRisk {
	out := make([]PositionRisk, 0, len(positions))
	for _, p := range positions {
		v := p.Value()
		pr := PositionRisk{
			Symbol:     p.Symbol,
			Value:      v,
			Volatility: sectors.Volatility(p.Symbol),
		}
		if portfolioValue > 0 {
			pr.Weight = v / portfolioValue * 100.0
		}
		pr.VaRContribution = pr.Weight * pr.Volatility / 100.0
		switch {
		case pr.Weight > 20 || pr.Volatility > 3:
			pr.Level = LevelHigh
		case pr.Weight > 10 || pr.Volatility > 2:
			pr.Level = LevelModerate
		default:
			pr.Level = LevelLow
		}
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// analyzeDrawdown walks the committed value history plus the current
// value, tracking the running peak and deepest decline.
func analyzeDrawdown(history []valuePoint, current float64, now time.Time) DrawdownAnalysis {
	series := make([]valuePoint, 0, len(history)+1)
	series = append(series, history...)
	series = append(series, valuePoint{value: current, at: now})

	var d DrawdownAnalysis
	peak := series[0].value
	peakAt := series[0].at
	maxDDPeak := peak
	for _, pt := range series {
		if pt.value > peak {
			peak = pt.value
			peakAt = pt.at
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - pt.value) / peak * 100.0
		if dd > d.MaxDrawdownPct {
			d.MaxDrawdownPct = dd
			d.Peak = peak
			d.Trough = pt.value
			maxDDPeak = peak
		}
	}
	if peak > 0 {
		d.CurrentDrawdownPct = (peak - current) / peak * 100.0
	}
	d.DurationHours = now.Sub(peakAt).Hours()
	d.Recovered = current >= maxDDPeak
	return d
}
