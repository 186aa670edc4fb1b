package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/moltapp/benchcore/internal/domain"
)

// PostgresStore reads positions and trades from the marketplace
// database. All queries run under the configured timeout.
type PostgresStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to postgres and wraps the handle in a PostgresStore.
func Open(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresStore(db, timeout), nil
}

// NewPostgresStore wraps an existing sqlx handle.
func NewPostgresStore(db *sqlx.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

type positionRow struct {
	Symbol           string  `db:"symbol"`
	Quantity         float64 `db:"quantity"`
	AverageCostBasis float64 `db:"average_cost_basis"`
}

type tradeRow struct {
	Side       string    `db:"side"`
	UsdcAmount float64   `db:"usdc_amount"`
	CreatedAt  time.Time `db:"created_at"`
}

// Positions returns the agent's current holdings.
func (s *PostgresStore) Positions(ctx context.Context, agentID string) ([]domain.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []positionRow
	query := `
		SELECT symbol, quantity, average_cost_basis
		FROM positions
		WHERE agent_id = $1 AND quantity > 0
		ORDER BY symbol`
	if err := s.db.SelectContext(ctx, &rows, query, agentID); err != nil {
		return nil, fmt.Errorf("select positions for %s: %w", agentID, err)
	}

	out := make([]domain.Position, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Position{
			Symbol:           r.Symbol,
			Quantity:         r.Quantity,
			AverageCostBasis: r.AverageCostBasis,
		})
	}
	return out, nil
}

// RecentTrades returns the agent's latest fills, newest first.
func (s *PostgresStore) RecentTrades(ctx context.Context, agentID string, limit int) ([]domain.Trade, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []tradeRow
	query := `
		SELECT side, usdc_amount, created_at
		FROM trades
		WHERE agent_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	if err := s.db.SelectContext(ctx, &rows, query, agentID, limit); err != nil {
		return nil, fmt.Errorf("select trades for %s: %w", agentID, err)
	}

	out := make([]domain.Trade, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Trade{
			Side:       domain.Action(r.Side),
			UsdcAmount: r.UsdcAmount,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
