// Package sim drives all five benchmarking engines end to end with
// synthetic agents, decisions, and market data. It backs the CLI
// simulate command and doubles as an integration harness: everything is
// seeded, so two runs with the same config produce the same output.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moltapp/benchcore/internal/config"
	"github.com/moltapp/benchcore/internal/domain"
	"github.com/moltapp/benchcore/internal/forecast"
	"github.com/moltapp/benchcore/internal/health"
	"github.com/moltapp/benchcore/internal/metrics"
	"github.com/moltapp/benchcore/internal/rating"
	"github.com/moltapp/benchcore/internal/risk"
	"github.com/moltapp/benchcore/internal/rounds"
)

// riskEvery is how many rounds pass between portfolio risk sweeps.
const riskEvery = 5

var symbols = []string{"AAPLx", "NVDAx", "TSLAx", "COINx", "SPYx", "JPMx", "XOMx", "AMZNx"}

var agentModels = []struct {
	model    string
	provider string
}{
	{"gpt-5", "openai"},
	{"claude-opus", "anthropic"},
	{"gemini-pro", "google"},
	{"llama-70b", "meta"},
	{"mistral-large", "mistral"},
	{"grok-3", "xai"},
	{"qwen-max", "alibaba"},
	{"deepseek-r1", "deepseek"},
}

// Result is the end-of-run summary the CLI prints.
type Result struct {
	RoundsRun   int
	Leaderboard []rating.Entry
	Health      health.Report
	RiskSummary risk.Summary
	Forecasts   int
	Profiles    []*forecast.Profile
}

// Simulator owns one synthetic benchmark run.
type Simulator struct {
	cfg config.SimConfig
	rng *rand.Rand

	store     *MemoryStore
	rounds    *rounds.Engine
	forecasts *forecast.Engine
	rating    *rating.Engine
	health    *health.Detector
	analyzer  *risk.Analyzer
	reg       *metrics.Registry

	clock  time.Time
	prices map[string]float64
	cash   map[string]float64
}

// New builds a simulator with fresh engines.
func New(cfg *config.Config, reg *metrics.Registry) *Simulator {
	store := NewMemoryStore()
	start := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)

	s := &Simulator{
		cfg:       cfg.Sim,
		rng:       rand.New(rand.NewSource(cfg.Sim.Seed)),
		store:     store,
		rounds:    rounds.NewEngine(cfg.Quality),
		forecasts: forecast.NewEngine(),
		rating:    rating.NewEngine(),
		health:    health.NewDetector(),
		analyzer:  risk.NewAnalyzer(store, risk.WithSeed(cfg.Sim.Seed)),
		reg:       reg,
		clock:     start,
		prices:    make(map[string]float64),
		cash:      make(map[string]float64),
	}
	for i, sym := range symbols {
		s.prices[sym] = 100 + float64(i)*40
	}
	return s
}

// Engines exposes the health detector and risk analyzer so the serve
// command can mount them on the ops server after a warmup run.
func (s *Simulator) Engines() (*health.Detector, *risk.Analyzer) {
	return s.health, s.analyzer
}

// Run executes the configured number of rounds and returns the summary.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	agents := s.roster()
	for _, a := range agents {
		s.rating.RegisterAgent(a.id, a.name, a.model, a.provider, a.external)
		s.cash[a.id] = 10000
	}

	for i := 0; i < s.cfg.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.runRound(ctx, i, agents); err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
	}

	res := &Result{
		RoundsRun:   s.cfg.Rounds,
		Leaderboard: s.rating.Leaderboard(rating.WindowAll, true, len(agents)),
		Health:      s.health.HealthReport(),
		RiskSummary: s.analyzer.Summary(),
		Forecasts:   s.forecasts.Count(),
		Profiles:    s.forecasts.AllProfiles(),
	}
	log.Info().
		Int("rounds", res.RoundsRun).
		Int("forecasts", res.Forecasts).
		Str("health", res.Health.Status).
		Msg("simulation finished")
	return res, nil
}

type simAgent struct {
	id       string
	name     string
	model    string
	provider string
	external bool
}

func (s *Simulator) roster() []simAgent {
	agents := make([]simAgent, 0, s.cfg.Agents)
	for i := 0; i < s.cfg.Agents; i++ {
		m := agentModels[i%len(agentModels)]
		agents = append(agents, simAgent{
			id:       fmt.Sprintf("agent-%02d", i+1),
			name:     fmt.Sprintf("%s-trader", m.model),
			model:    m.model,
			provider: m.provider,
			external: i%4 == 3, // every fourth agent is community-submitted
		})
	}
	return agents
}

func (s *Simulator) runRound(ctx context.Context, n int, agents []simAgent) error {
	s.clock = s.clock.Add(time.Hour)
	roundID := fmt.Sprintf("round-%04d", n+1)

	changes := s.moveMarket()
	tickers := s.tickers(changes)

	// Resolve last round's pending forecasts against the fresh moves.
	for sym, pct := range changes {
		if resolved := s.forecasts.BatchResolvePending(sym, pct); resolved > 0 {
			for i := 0; i < resolved; i++ {
				s.reg.ForecastsResolved.Inc()
			}
		}
	}

	decisions := make([]domain.RoundDecision, 0, len(agents))
	for _, a := range agents {
		d := s.decide(a)
		decisions = append(decisions, d)

		if d.Active() {
			s.forecasts.RegisterForecast(a.id, roundID, d.Symbol, d.Action, d.Reasoning, d.Confidence)
			s.reg.ForecastsRegistered.Inc()
		}
		if d.Active() && d.Executed {
			price := s.prices[d.Symbol]
			s.store.ApplyFill(a.id, d.Symbol, d.Action, d.Quantity, price, s.clock)
			notional := d.Quantity * price
			if d.Action == domain.ActionBuy {
				s.cash[a.id] -= notional
			} else {
				s.cash[a.id] += notional
			}
		}
	}

	analytics := s.rounds.AnalyzeRound(roundID, s.clock, decisions, tickers, 1500+s.rng.Int63n(2000))
	s.reg.RoundsAnalyzed.Inc()

	s.recordScores(analytics)
	s.recordHealth(analytics, decisions)

	meanChange := 0.0
	for _, pct := range changes {
		meanChange += pct
	}
	s.analyzer.RecordMarketReturn(meanChange / float64(len(changes)))

	if (n+1)%riskEvery == 0 {
		if err := s.riskSweep(ctx, agents); err != nil {
			return err
		}
	}
	return nil
}

// moveMarket applies a bounded random walk and returns per-symbol
// percent changes.
func (s *Simulator) moveMarket() map[string]float64 {
	changes := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		pct := (s.rng.Float64() - 0.5) * 6.0 // [-3, 3] percent
		changes[sym] = pct
		s.prices[sym] *= 1 + pct/100.0
	}
	return changes
}

func (s *Simulator) tickers(changes map[string]float64) []domain.MarketTicker {
	out := make([]domain.MarketTicker, 0, len(symbols))
	for _, sym := range symbols {
		pct := changes[sym]
		out = append(out, domain.MarketTicker{Symbol: sym, Price: s.prices[sym], Change24h: &pct})
	}
	return out
}

func (s *Simulator) decide(a simAgent) domain.RoundDecision {
	roll := s.rng.Float64()
	var action domain.Action
	switch {
	case roll < 0.40:
		action = domain.ActionBuy
	case roll < 0.65:
		action = domain.ActionSell
	default:
		action = domain.ActionHold
	}

	symbol := symbols[s.rng.Intn(len(symbols))]
	confidence := 0.3 + s.rng.Float64()*0.65
	d := domain.RoundDecision{
		AgentID:    a.id,
		AgentName:  a.name,
		Action:     action,
		Symbol:     symbol,
		Confidence: confidence,
		Reasoning:  s.reasoning(action, symbol),
		DurationMs: 400 + s.rng.Int63n(1200),
	}
	if action == domain.ActionHold {
		d.Executed = true
		return d
	}

	d.Quantity = 1 + float64(s.rng.Intn(5))
	d.Executed = s.rng.Float64() < 0.9
	if d.Executed {
		price := s.prices[symbol]
		amount := d.Quantity * price
		d.ExecutionPrice = &price
		d.UsdcAmount = &amount
	} else {
		d.ExecutionError = "insufficient liquidity"
	}
	return d
}

// reasoning emits prose the forecaster's extraction patterns can bite
// on, with explicit magnitude and horizon claims mixed in.
func (s *Simulator) reasoning(action domain.Action, symbol string) string {
	mag := 2 + s.rng.Intn(6)
	switch action {
	case domain.ActionBuy:
		return fmt.Sprintf(
			"Strong momentum building in %s after the breakout; expecting a %d%% gain this week. Volume confirms the uptrend and the entry risk is acceptable at current levels.",
			symbol, mag)
	case domain.ActionSell:
		return fmt.Sprintf(
			"%s looks overvalued after the rally; expecting a %d%% decline within a week as the correction unfolds. Reducing exposure before the downtrend accelerates.",
			symbol, mag)
	default:
		return fmt.Sprintf(
			"%s is range-bound and the tape is neutral; staying flat until a catalyst appears this month. Consolidation favors patience over forced entries.",
			symbol)
	}
}

// recordScores feeds the rating engine from the round's quality
// breakdown plus synthetic coherence and pnl signals.
func (s *Simulator) recordScores(analytics *rounds.Analytics) {
	for _, aq := range analytics.Quality.PerAgent {
		composite := aq.Composite / 100.0
		coherence := 0.55 + s.rng.Float64()*0.35
		hallucination := s.rng.Float64() < 0.05
		discipline := aq.Composite >= 40
		calibration := 0.45 + s.rng.Float64()*0.4
		pnl := (s.rng.Float64() - 0.45) * 200

		s.rating.RecordScore(aq.AgentID, composite, coherence, hallucination, discipline, calibration, pnl, pnl > 0)
		s.reg.ScoresRecorded.Inc()
	}
}

func (s *Simulator) recordHealth(analytics *rounds.Analytics, decisions []domain.RoundDecision) {
	scores := make(map[string]float64, len(analytics.Quality.PerAgent))
	minScore, maxScore := 1.0, 0.0
	var execSum, calibSum, sizeSum, timeSum float64
	for _, aq := range analytics.Quality.PerAgent {
		v := aq.Composite / 100.0
		scores[aq.AgentID] = v
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
		execSum += aq.ExecutionSuccess
		calibSum += aq.ConfidenceCalibration
		sizeSum += aq.PositionSizing
		timeSum += aq.TimingScore
	}
	n := float64(len(analytics.Quality.PerAgent))
	if n == 0 {
		return
	}

	reasoningLen := 0.0
	hallucinated := 0.0
	for _, d := range decisions {
		reasoningLen += float64(len(d.Reasoning))
		if s.rng.Float64() < 0.04 {
			hallucinated++
		}
	}

	snapshot := health.Snapshot{
		RoundID:     analytics.RoundID,
		Timestamp:   analytics.Timestamp,
		AgentScores: scores,
		PillarAverages: map[string]float64{
			"execution":   execSum / n / 100.0,
			"calibration": calibSum / n / 100.0,
			"sizing":      sizeSum / n / 100.0,
			"timing":      timeSum / n / 100.0,
		},
		CoherenceAvg:       0.6 + s.rng.Float64()*0.2,
		HallucinationRate:  hallucinated / float64(len(decisions)),
		AvgReasoningLength: reasoningLen / float64(len(decisions)),
		ScoreSpread:        maxScore - minScore,
		CalibrationAvg:     0.5 + s.rng.Float64()*0.3,
	}
	raised := s.health.RecordSnapshot(snapshot)
	for _, a := range raised {
		s.reg.RegressionAlerts.WithLabelValues(a.Severity).Inc()
	}
}

func (s *Simulator) riskSweep(ctx context.Context, agents []simAgent) error {
	for _, a := range agents {
		pv := s.store.PortfolioValue(a.id, s.prices)
		if pv <= 0 {
			continue
		}
		started := time.Now()
		report, err := s.analyzer.AnalyzePortfolioRisk(ctx, a.id, pv, s.cash[a.id])
		s.reg.RiskAnalysisDuration.Observe(time.Since(started).Seconds())
		if err != nil {
			s.reg.RiskAnalysisErrors.Inc()
			return fmt.Errorf("risk sweep for %s: %w", a.id, err)
		}
		s.reg.RiskAnalyses.Inc()
		if report.RiskLevel == risk.LevelCritical {
			s.reg.CriticalRiskAlerts.Inc()
		}
	}
	return nil
}
