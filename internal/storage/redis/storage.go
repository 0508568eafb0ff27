package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Game updates use WATCH/MULTI so a concurrent write to the same game
// aborts the transaction instead of being overwritten.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying connection so other components can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, gameKey(game.ID), data, s.cfg.GameTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: game %s already exists", model.ErrConflict, game.ID)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getGame(ctx, s.client, id)
}

// getGame reads a game through any redis command issuer (client or tx)
func getGame(ctx context.Context, c redis.Cmdable, id model.GameID) (*model.Game, error) {
	data, err := c.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	key := gameKey(id)
	eventsKey := gameEventsKey(id)

	var updated *model.Game
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		game, err := getGame(ctx, tx, id)
		if err != nil {
			return err
		}

		events, err := fn(game)
		if err != nil {
			return err
		}
		game.Version++

		data, err := json.Marshal(game)
		if err != nil {
			return err
		}
		encoded := make([]interface{}, 0, len(events))
		for _, e := range events {
			b, err := json.Marshal(e)
			if err != nil {
				return err
			}
			encoded = append(encoded, string(b))
		}

		// Game document and log are written in one MULTI/EXEC
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.GameTTL)
			if len(encoded) > 0 {
				pipe.RPush(ctx, eventsKey, encoded...)
				if s.cfg.GameTTL > 0 {
					pipe.Expire(ctx, eventsKey, s.cfg.GameTTL) // Keep log TTL in sync
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = game
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, model.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) ListEvents(ctx context.Context, id model.GameID) ([]model.GameEvent, error) {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrGameNotFound
	}

	values, err := s.client.LRange(ctx, gameEventsKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]model.GameEvent, 0, len(values))
	for _, v := range values {
		var e model.GameEvent
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("decoding event for game %s: %w", id, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Format operations

func (s *Storage) SaveFormat(ctx context.Context, format model.GameFormatRules) error {
	data, err := json.Marshal(format)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, formatKey(format.ID), data, 0)
	pipe.SAdd(ctx, formatIndexKey(), formatKey(format.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetFormat(ctx context.Context, id model.FormatID) (model.GameFormatRules, error) {
	data, err := s.client.Get(ctx, formatKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.GameFormatRules{}, model.ErrFormatNotFound
		}
		return model.GameFormatRules{}, err
	}

	var format model.GameFormatRules
	if err := json.Unmarshal(data, &format); err != nil {
		return model.GameFormatRules{}, err
	}
	return format, nil
}

func (s *Storage) ListFormats(ctx context.Context) ([]model.GameFormatRules, error) {
	keys, err := s.client.SMembers(ctx, formatIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []model.GameFormatRules{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	formats := make([]model.GameFormatRules, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var f model.GameFormatRules
		if err := json.Unmarshal([]byte(str), &f); err != nil {
			continue // Skip invalid data
		}
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].ID < formats[j].ID })
	return formats, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, teamKey(team.ID), data, 0).Err()
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	data, err := s.client.Get(ctx, teamKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrTeamNotFound
		}
		return nil, err
	}

	var team model.Team
	if err := json.Unmarshal(data, &team); err != nil {
		return nil, err
	}
	return &team, nil
}
