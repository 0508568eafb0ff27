package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/courtside/internal/publish"
)

// DefaultStream is the stream key game updates are appended to
const DefaultStream = "courtside:stream:games"

// Publisher appends game updates to a Redis stream
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// New creates a stream publisher. maxLen caps the stream approximately; zero
// leaves it unbounded.
func New(client *redis.Client, stream string, maxLen int64) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Publish writes one entry per event followed by the new snapshot
func (p *Publisher) Publish(ctx context.Context, update publish.Update) error {
	snapshot, err := json.Marshal(update.View())
	if err != nil {
		return fmt.Errorf("marshaling game update: %w", err)
	}

	gameID := string(update.Game.ID)
	pipe := p.client.Pipeline()
	for _, e := range update.Events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling game event: %w", err)
		}
		pipe.XAdd(ctx, p.args(map[string]interface{}{
			"type":    publish.TypeGameEvent,
			"game_id": gameID,
			"seq":     strconv.Itoa(e.Seq),
			"action":  string(e.Action),
			"data":    string(data),
		}))
	}
	pipe.XAdd(ctx, p.args(map[string]interface{}{
		"type":    publish.TypeGameUpdate,
		"game_id": gameID,
		"version": strconv.FormatInt(update.Game.Version, 10),
		"status":  string(update.Game.Status),
		"data":    string(snapshot),
	}))

	_, err = pipe.Exec(ctx)
	return err
}

func (p *Publisher) args(values map[string]interface{}) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args
}
