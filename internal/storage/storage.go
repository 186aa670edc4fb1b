// Package storage defines the read-only interfaces the risk analyzer
// uses to fetch agent positions and recent trades, plus concrete
// adapters: a PostgreSQL repository, a Redis position cache, and a
// guarded client wrapping any source with a circuit breaker and rate
// limiter. Durable persistence itself belongs to the marketplace, not
// this engine.
package storage

import (
	"context"
	"errors"

	"github.com/moltapp/benchcore/internal/domain"
)

// ErrUnavailable reports that the backing store refused the read, for
// example because the circuit breaker is open.
var ErrUnavailable = errors.New("storage unavailable")

// PositionSource yields an agent's current positions.
type PositionSource interface {
	Positions(ctx context.Context, agentID string) ([]domain.Position, error)
}

// TradeSource yields an agent's most recent trades, newest first.
type TradeSource interface {
	RecentTrades(ctx context.Context, agentID string, limit int) ([]domain.Trade, error)
}

// Store combines both read sides.
type Store interface {
	PositionSource
	TradeSource
}
