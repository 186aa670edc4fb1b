// Package forecast extracts directional/magnitude/horizon predictions
// from decision reasoning at decision time, resolves them against
// realized price moves, and scores each agent's calibration.
package forecast

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/moltapp/benchcore/internal/domain"
)

// MaxForecasts bounds the retained forecast list; oldest evicted first.
const MaxForecasts = 5000

// Forecast lifecycle states.
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
)

// Forecast is one extracted prediction. Pending until a realized price
// change arrives for its symbol; immutable once resolved.
type Forecast struct {
	ID         string        `json:"id"`
	AgentID    string        `json:"agent_id"`
	RoundID    string        `json:"round_id"`
	Symbol     string        `json:"symbol"`
	Action     domain.Action `json:"action"`
	Confidence float64       `json:"confidence"`
	CreatedAt  time.Time     `json:"created_at"`

	PredictedDirection string   `json:"predicted_direction"`
	PredictedMagnitude *float64 `json:"predicted_magnitude,omitempty"` // signed percent
	PredictedHorizon   string   `json:"predicted_horizon,omitempty"`

	Status           string     `json:"status"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	ActualDirection  string     `json:"actual_direction,omitempty"`
	ActualMagnitude  float64    `json:"actual_magnitude"` // realized percent change
	DirectionCorrect bool       `json:"direction_correct"`
	MagnitudeError   *float64   `json:"magnitude_error,omitempty"`
}

// Engine owns the bounded forecast list. Writes serialize behind one
// mutex; extraction and resolution are sub-millisecond.
type Engine struct {
	mu        sync.Mutex
	forecasts []*Forecast
	byID      map[string]*Forecast
	now       func() time.Time
}

// NewEngine creates a forecast engine.
func NewEngine() *Engine {
	return &Engine{
		byID: make(map[string]*Forecast),
		now:  time.Now,
	}
}

// RegisterForecast extracts a prediction from the decision's reasoning
// and stores it pending. Returns the stored forecast.
func (e *Engine) RegisterForecast(agentID, roundID, symbol string, action domain.Action, reasoning string, confidence float64) *Forecast {
	f := &Forecast{
		ID:                 uuid.NewString(),
		AgentID:            agentID,
		RoundID:            roundID,
		Symbol:             symbol,
		Action:             action,
		Confidence:         confidence,
		CreatedAt:          e.now(),
		PredictedDirection: extractDirection(action, reasoning),
		PredictedMagnitude: extractMagnitude(reasoning),
		PredictedHorizon:   extractHorizon(reasoning),
		Status:             StatusPending,
	}

	e.mu.Lock()
	if len(e.forecasts) >= MaxForecasts {
		evicted := e.forecasts[0]
		e.forecasts = e.forecasts[1:]
		delete(e.byID, evicted.ID)
	}
	e.forecasts = append(e.forecasts, f)
	e.byID[f.ID] = f
	e.mu.Unlock()

	log.Debug().
		Str("agent_id", agentID).
		Str("symbol", symbol).
		Str("direction", f.PredictedDirection).
		Str("horizon", f.PredictedHorizon).
		Msg("Forecast registered")

	return f
}

// ResolveForecast scores a pending forecast against a realized price
// change percentage. Returns nil when the id is unknown or the forecast
// was already resolved.
func (e *Engine) ResolveForecast(id string, priceChangePct float64) *Forecast {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.byID[id]
	if !ok || f.Status != StatusPending {
		return nil
	}
	e.resolveLocked(f, priceChangePct)
	return f
}

// BatchResolvePending resolves every still-pending forecast for the
// symbol in one pass and returns how many were resolved.
func (e *Engine) BatchResolvePending(symbol string, priceChangePct float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	resolved := 0
	for _, f := range e.forecasts {
		if f.Symbol == symbol && f.Status == StatusPending {
			e.resolveLocked(f, priceChangePct)
			resolved++
		}
	}
	return resolved
}

func (e *Engine) resolveLocked(f *Forecast, pct float64) {
	now := e.now()
	f.Status = StatusResolved
	f.ResolvedAt = &now
	f.ActualMagnitude = pct
	f.ActualDirection = actualDirection(pct)
	f.DirectionCorrect = directionCorrect(f.PredictedDirection, f.ActualDirection, pct)
	if f.PredictedMagnitude != nil {
		err := math.Abs(*f.PredictedMagnitude - pct)
		f.MagnitudeError = &err
	}
}

// actualDirection buckets a realized move: >0.5% up, <-0.5% down, flat
// in between.
func actualDirection(pct float64) string {
	switch {
	case pct > 0.5:
		return DirectionUp
	case pct < -0.5:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// directionCorrect gives credit for exact matches and for calls that
// were right in sign even when the move was too small to bucket.
func directionCorrect(predicted, actual string, pct float64) bool {
	switch {
	case predicted == actual:
		return true
	case predicted == DirectionUp && pct > 0:
		return true
	case predicted == DirectionDown && pct < 0:
		return true
	case predicted == DirectionFlat && math.Abs(pct) < 1.0:
		return true
	}
	return false
}

// ByID returns a forecast, false when unknown or evicted.
func (e *Engine) ByID(id string) (*Forecast, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.byID[id]
	return f, ok
}

// PendingForSymbol returns the pending forecast count for a symbol.
func (e *Engine) PendingForSymbol(symbol string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, f := range e.forecasts {
		if f.Symbol == symbol && f.Status == StatusPending {
			n++
		}
	}
	return n
}

// Count returns the number of retained forecasts.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.forecasts)
}

// agentForecasts returns copies of the agent's forecasts in insertion
// order, so profile computation runs lock-free.
func (e *Engine) agentForecasts(agentID string) []Forecast {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Forecast, 0, 32)
	for _, f := range e.forecasts {
		if f.AgentID == agentID {
			out = append(out, *f)
		}
	}
	return out
}

// agentIDs returns every agent with at least one retained forecast.
func (e *Engine) agentIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0, 16)
	for _, f := range e.forecasts {
		if _, ok := seen[f.AgentID]; !ok {
			seen[f.AgentID] = struct{}{}
			ids = append(ids, f.AgentID)
		}
	}
	return ids
}
