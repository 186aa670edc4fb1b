package sim

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/moltapp/benchcore/internal/domain"
)

// MemoryStore is the in-memory position/trade backend the simulator
// maintains as synthetic fills land. It satisfies storage.Store.
type MemoryStore struct {
	mu        sync.Mutex
	positions map[string]map[string]*domain.Position // agent -> symbol -> position
	trades    map[string][]domain.Trade              // agent -> fills, oldest first
}

// NewMemoryStore creates an empty backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		positions: make(map[string]map[string]*domain.Position),
		trades:    make(map[string][]domain.Trade),
	}
}

// Positions implements storage.PositionSource.
func (m *MemoryStore) Positions(_ context.Context, agentID string) ([]domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Position, 0, len(m.positions[agentID]))
	for _, p := range m.positions[agentID] {
		if p.Quantity > 0 {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// RecentTrades implements storage.TradeSource, newest first.
func (m *MemoryStore) RecentTrades(_ context.Context, agentID string, limit int) ([]domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.trades[agentID]
	out := make([]domain.Trade, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// ApplyFill records an executed trade and adjusts the position book.
func (m *MemoryStore) ApplyFill(agentID, symbol string, side domain.Action, quantity, price float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.positions[agentID]
	if !ok {
		book = make(map[string]*domain.Position)
		m.positions[agentID] = book
	}
	pos, ok := book[symbol]
	if !ok {
		pos = &domain.Position{Symbol: symbol}
		book[symbol] = pos
	}

	switch side {
	case domain.ActionBuy:
		total := pos.AverageCostBasis*pos.Quantity + price*quantity
		pos.Quantity += quantity
		if pos.Quantity > 0 {
			pos.AverageCostBasis = total / pos.Quantity
		}
	case domain.ActionSell:
		pos.Quantity -= quantity
		if pos.Quantity < 0 {
			pos.Quantity = 0
		}
	}

	m.trades[agentID] = append(m.trades[agentID], domain.Trade{
		Side:       side,
		UsdcAmount: quantity * price,
		CreatedAt:  at,
	})
}

// PortfolioValue prices the agent's book at current market prices.
func (m *MemoryStore) PortfolioValue(agentID string, prices map[string]float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0.0
	for symbol, pos := range m.positions[agentID] {
		price, ok := prices[symbol]
		if !ok {
			price = pos.AverageCostBasis
		}
		total += pos.Quantity * price
	}
	return total
}
