package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/moltapp/benchcore/internal/domain"
)

// GuardedStore wraps any Store with a circuit breaker and rate limiter
// so a misbehaving backend cannot stall or overload the analyzers.
type GuardedStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuardedStore guards inner with a breaker that trips after 3
// consecutive failures (or a 5% failure rate past 20 requests) and a
// token-bucket limiter at rps requests per second.
func NewGuardedStore(inner Store, name string, rps float64, burst int) *GuardedStore {
	settings := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}
	return &GuardedStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Positions applies the limiter and breaker around the inner read.
func (g *GuardedStore) Positions(ctx context.Context, agentID string) ([]domain.Position, error) {
	out, err := g.execute(ctx, func() (interface{}, error) {
		return g.inner.Positions(ctx, agentID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Position), nil
}

// RecentTrades applies the limiter and breaker around the inner read.
func (g *GuardedStore) RecentTrades(ctx context.Context, agentID string, limit int) ([]domain.Trade, error) {
	out, err := g.execute(ctx, func() (interface{}, error) {
		return g.inner.RecentTrades(ctx, agentID, limit)
	})
	if err != nil {
		return nil, err
	}
	return out.([]domain.Trade), nil
}

func (g *GuardedStore) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("storage rate limit: %w", err)
	}
	out, err := g.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
		}
		return nil, err
	}
	return out, nil
}

// State exposes the breaker state for ops surfaces.
func (g *GuardedStore) State() gobreaker.State {
	return g.breaker.State()
}
