package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moltapp/benchcore/internal/domain"
)

type countingStore struct {
	positions []domain.Position
	trades    []domain.Trade
	err       error
	calls     int
}

func (s *countingStore) Positions(_ context.Context, _ string) ([]domain.Position, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.positions, nil
}

func (s *countingStore) RecentTrades(_ context.Context, _ string, _ int) ([]domain.Trade, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.trades, nil
}

func TestGuardedStore_PassesThrough(t *testing.T) {
	inner := &countingStore{
		positions: []domain.Position{{Symbol: "AAPLx", Quantity: 1, AverageCostBasis: 200}},
		trades:    []domain.Trade{{Side: domain.ActionBuy, UsdcAmount: 200}},
	}
	g := NewGuardedStore(inner, "test", 1000, 1000)
	ctx := context.Background()

	positions, err := g.Positions(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, inner.positions, positions)

	trades, err := g.RecentTrades(ctx, "agent-1", 10)
	require.NoError(t, err)
	assert.Equal(t, inner.trades, trades)
	assert.Equal(t, gobreaker.StateClosed, g.State())
}

func TestGuardedStore_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &countingStore{err: errors.New("connection refused")}
	g := NewGuardedStore(inner, "test", 1000, 1000)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Positions(ctx, "agent-1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable), "first failures surface the real error")
	}
	require.Equal(t, gobreaker.StateOpen, g.State())
	callsBefore := inner.calls

	_, err := g.Positions(ctx, "agent-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable), "open breaker maps to ErrUnavailable")
	assert.Equal(t, callsBefore, inner.calls, "open breaker must not touch the backend")
}

func TestGuardedStore_ContextCancelStopsLimiterWait(t *testing.T) {
	inner := &countingStore{}
	// Zero-ish rate: the second call would wait forever.
	g := NewGuardedStore(inner, "test", 0.0001, 1)
	ctx := context.Background()

	_, err := g.Positions(ctx, "agent-1")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = g.Positions(cancelled, "agent-1")
	assert.Error(t, err)
}
