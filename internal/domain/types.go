// Package domain holds the value types shared by the benchmarking
// engines: decision records produced by the orchestrator, market
// snapshots, and the position/trade shapes read from external storage.
package domain

import "time"

// Action is the trading action an agent chose for a round.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// RoundDecision is one agent's action for a single trading round.
// Produced externally by the orchestrator; never mutated by the engines.
type RoundDecision struct {
	AgentID    string  `json:"agent_id"`
	AgentName  string  `json:"agent_name"`
	Action     Action  `json:"action"`
	Symbol     string  `json:"symbol"`
	Quantity   float64 `json:"quantity"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Reasoning  string  `json:"reasoning"`
	Executed   bool    `json:"executed"`

	// Execution details, present only when the orchestrator attempted a fill.
	ExecutionError string   `json:"execution_error,omitempty"`
	ExecutionPrice *float64 `json:"execution_price,omitempty"`
	UsdcAmount     *float64 `json:"usdc_amount,omitempty"`
	DurationMs     int64    `json:"duration_ms,omitempty"`
}

// Active reports whether the decision takes a position (buy or sell).
func (d RoundDecision) Active() bool {
	return d.Action == ActionBuy || d.Action == ActionSell
}

// MarketTicker is one symbol's snapshot delivered alongside a round.
type MarketTicker struct {
	Symbol    string   `json:"symbol"`
	Price     float64  `json:"price"`
	Change24h *float64 `json:"change_24h"` // percent, nil when the feed had no 24h window
}

// Position is an agent's current holding as read from external storage.
type Position struct {
	Symbol           string  `json:"symbol"`
	Quantity         float64 `json:"quantity"`
	AverageCostBasis float64 `json:"average_cost_basis"`
}

// Value returns the position's notional value at cost basis.
func (p Position) Value() float64 {
	return p.Quantity * p.AverageCostBasis
}

// Trade is a recent fill as read from external storage.
type Trade struct {
	Side       Action    `json:"side"`
	UsdcAmount float64   `json:"usdc_amount"`
	CreatedAt  time.Time `json:"created_at"`
}
