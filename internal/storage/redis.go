package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/moltapp/benchcore/internal/domain"
)

// CachedPositions layers a short-TTL redis cache over a PositionSource.
// Cache failures are soft: the call falls through to the source.
type CachedPositions struct {
	client *redis.Client
	source PositionSource
	ttl    time.Duration
}

// NewCachedPositions wraps source with a redis position cache.
func NewCachedPositions(client *redis.Client, source PositionSource, ttl time.Duration) *CachedPositions {
	return &CachedPositions{client: client, source: source, ttl: ttl}
}

func positionsKey(agentID string) string {
	return "benchcore:positions:" + agentID
}

// Positions serves from cache when possible, otherwise reads through
// and populates the cache.
func (c *CachedPositions) Positions(ctx context.Context, agentID string) ([]domain.Position, error) {
	key := positionsKey(agentID)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached []domain.Position
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
		log.Debug().Str("key", key).Msg("discarding unparseable cached positions")
	} else if err != redis.Nil {
		log.Debug().Err(err).Str("key", key).Msg("position cache read failed, falling through")
	}

	positions, err := c.source.Positions(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(positions); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			log.Debug().Err(setErr).Str("key", key).Msg("position cache write failed")
		}
	}
	return positions, nil
}

// Invalidate drops an agent's cached positions, for callers that know a
// fill just landed.
func (c *CachedPositions) Invalidate(ctx context.Context, agentID string) error {
	return c.client.Del(ctx, positionsKey(agentID)).Err()
}
