package cache

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"matchroom/internal/game"
)

const (
	statePrefix    = "game_state:"
	configPrefix   = "game_engine:"
	routingPrefix  = "lobby_game:"
	deadlinePrefix = "game_timeout:"
)

// DeadlineKey returns the Redis key whose expiration marks a match's move
// deadline. The key carries no payload; only its TTL matters.
func DeadlineKey(matchID string) string {
	return deadlinePrefix + matchID
}

// MatchIDFromDeadlineKey extracts the match ID from an expired-key
// notification, reporting false for keys outside the deadline namespace.
func MatchIDFromDeadlineKey(key string) (string, bool) {
	if !strings.HasPrefix(key, deadlinePrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, deadlinePrefix), true
}

// MatchCache handles Redis operations for match state, engine configuration
// and the lobby routing entry. All documents of one match share the same TTL
// and are written together where atomicity matters.
type MatchCache interface {
	CreateMatch(ctx context.Context, cfg *game.Config, st *game.State) error
	Config(ctx context.Context, matchID string) (*game.Config, error)
	State(ctx context.Context, matchID string) (*game.State, error)
	SaveState(ctx context.Context, matchID string, st *game.State) error
	SaveMatch(ctx context.Context, cfg *game.Config, st *game.State) error
	Delete(ctx context.Context, matchID string) error
	GameKind(ctx context.Context, matchID string) (string, error)
	SetDeadline(ctx context.Context, matchID string, remaining float64) error
	ClearDeadline(ctx context.Context, matchID string) error
}

type matchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchCache creates a new match cache. All match documents expire after
// ttl so abandoned matches clean themselves up.
func NewMatchCache(client *redis.Client, ttl time.Duration) MatchCache {
	return &matchCache{
		client: client,
		ttl:    ttl,
	}
}

// CreateMatch writes state, configuration and routing entry atomically, so
// a half-created match is never observable.
func (c *matchCache) CreateMatch(ctx context.Context, cfg *game.Config, st *game.State) error {
	stateData, err := json.Marshal(st)
	if err != nil {
		return err
	}
	cfgData, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, statePrefix+cfg.MatchID, stateData, c.ttl)
		pipe.Set(ctx, configPrefix+cfg.MatchID, cfgData, c.ttl)
		pipe.Set(ctx, routingPrefix+cfg.MatchID, cfg.GameKind, c.ttl)
		return nil
	})
	return err
}

func (c *matchCache) Config(ctx context.Context, matchID string) (*game.Config, error) {
	data, err := c.client.Get(ctx, configPrefix+matchID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg game.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *matchCache) State(ctx context.Context, matchID string) (*game.State, error) {
	data, err := c.client.Get(ctx, statePrefix+matchID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st game.State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *matchCache) SaveState(ctx context.Context, matchID string, st *game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statePrefix+matchID, data, c.ttl).Err()
}

// SaveMatch rewrites state and configuration together; the configuration
// carries the turn position, which must not drift from the state.
func (c *matchCache) SaveMatch(ctx context.Context, cfg *game.Config, st *game.State) error {
	stateData, err := json.Marshal(st)
	if err != nil {
		return err
	}
	cfgData, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, statePrefix+cfg.MatchID, stateData, c.ttl)
		pipe.Set(ctx, configPrefix+cfg.MatchID, cfgData, c.ttl)
		return nil
	})
	return err
}

func (c *matchCache) Delete(ctx context.Context, matchID string) error {
	return c.client.Del(ctx,
		statePrefix+matchID,
		configPrefix+matchID,
		routingPrefix+matchID,
		deadlinePrefix+matchID,
	).Err()
}

func (c *matchCache) GameKind(ctx context.Context, matchID string) (string, error) {
	kind, err := c.client.Get(ctx, routingPrefix+matchID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return kind, err
}

// SetDeadline arms the expiring deadline key. The TTL is the remaining
// seconds rounded up plus one, so the notification always fires after the
// clock has actually run out.
func (c *matchCache) SetDeadline(ctx context.Context, matchID string, remaining float64) error {
	ttl := time.Duration(math.Ceil(remaining)+1) * time.Second
	return c.client.Set(ctx, deadlinePrefix+matchID, "1", ttl).Err()
}

func (c *matchCache) ClearDeadline(ctx context.Context, matchID string) error {
	return c.client.Del(ctx, deadlinePrefix+matchID).Err()
}
