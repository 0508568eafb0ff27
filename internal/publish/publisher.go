package publish

import (
	"context"
	"errors"

	"github.com/mcoot/courtside/internal/model"
)

// Message types carried by every publisher
const (
	TypeGameUpdate = "game-update"
	TypeGameEvent  = "game-event"
)

// Update is a committed change to a game: the new snapshot plus the events
// the transaction appended
type Update struct {
	Game   *model.Game
	Events []model.GameEvent
	// RemainingSeconds is the live clock when the update was committed
	RemainingSeconds int
}

// View is the read model published for the snapshot
func (u Update) View() model.GameView {
	return model.NewGameView(u.Game, u.RemainingSeconds)
}

// Publisher delivers committed game updates to viewers and downstream consumers
type Publisher interface {
	Publish(ctx context.Context, update Update) error
}

// Multi fans an update out to several publishers. Every publisher is tried;
// failures are joined.
type Multi []Publisher

// Publish implements Publisher
func (m Multi) Publish(ctx context.Context, update Update) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, update); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards updates
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, Update) error { return nil }
