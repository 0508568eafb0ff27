package response

import (
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/services/boxscore"
)

// Game is the API view of a game, the same view live viewers receive
type Game = model.GameView

// GameFromModel builds the API view of a game
func GameFromModel(g *model.Game, remaining int) Game {
	return model.NewGameView(g, remaining)
}

// Event is the response for a recorded action
type Event struct {
	Event model.GameEvent `json:"event"`
	Game  Game            `json:"game"`
}

// Events lists a game's event log
type Events struct {
	Events []model.GameEvent `json:"events"`
}

// Verification reports whether replaying the log reproduces the snapshot
type Verification struct {
	Consistent bool                `json:"consistent"`
	Mismatches []boxscore.Mismatch `json:"mismatches"`
}

// Formats lists the available format rules
type Formats struct {
	Formats []model.GameFormatRules `json:"formats"`
}

// Health is the health check response
type Health struct {
	Status string `json:"status"`
}
