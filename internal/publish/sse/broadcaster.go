package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/publish"
)

// Broadcaster publishes committed game updates to the game's live viewers
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// Ensure Broadcaster implements Publisher
var _ publish.Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends one game-event per appended event, then the new snapshot.
// Games nobody is watching are skipped.
func (b *Broadcaster) Publish(_ context.Context, update publish.Update) error {
	hub := b.hubManager.GetHub(update.Game.ID)
	if hub == nil {
		return nil
	}

	for _, e := range update.Events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling game event: %w", err)
		}
		hub.BroadcastEvent(publish.TypeGameEvent, string(data))
	}

	if !hub.Advance(update.Game.Version) {
		b.logger.Debug("sse stale game update skipped",
			slog.String("game_id", string(update.Game.ID)),
			slog.Int64("version", update.Game.Version))
		return nil
	}
	msg, err := SnapshotMessage(update.View())
	if err != nil {
		return err
	}
	hub.Broadcast(msg)

	b.logger.Debug("sse game update broadcast",
		slog.String("game_id", string(update.Game.ID)),
		slog.Int("events", len(update.Events)),
		slog.Int("viewers", hub.ClientCount()))
	return nil
}

// SnapshotMessage frames a game view as a game-update event
func SnapshotMessage(view model.GameView) ([]byte, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshaling game update: %w", err)
	}
	return formatSSEMessage(publish.TypeGameUpdate, string(data)), nil
}
