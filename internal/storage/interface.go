package storage

import (
	"context"

	"github.com/mcoot/courtside/internal/model"
)

// UpdateFunc mutates a private copy of a game inside a transaction and returns
// the events to append to the game's log. Returning an error aborts the
// transaction with nothing written. It may be invoked more than once and must
// not have side effects outside the game it is given.
type UpdateFunc func(game *model.Game) ([]model.GameEvent, error)

// Storage defines the interface for data persistence
type Storage interface {
	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// UpdateGame atomically reads the game, applies fn, then writes the game
	// and appends the returned events. Returns model.ErrConflict when a
	// concurrent writer won the race.
	UpdateGame(ctx context.Context, id model.GameID, fn UpdateFunc) (*model.Game, error)
	// ListEvents returns the game's log ordered by sequence number
	ListEvents(ctx context.Context, id model.GameID) ([]model.GameEvent, error)

	// Format operations
	SaveFormat(ctx context.Context, format model.GameFormatRules) error
	GetFormat(ctx context.Context, id model.FormatID) (model.GameFormatRules, error)
	ListFormats(ctx context.Context) ([]model.GameFormatRules, error)

	// Team operations
	SaveTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
}
