package model

// GameView is a game snapshot plus values derived at read time. It is what
// API clients and live viewers receive.
type GameView struct {
	*Game

	// LiveRemainingSeconds accounts for the running clock segment
	LiveRemainingSeconds int                     `json:"live_remaining_seconds"`
	TimeoutsRemaining    map[TeamSide]int        `json:"timeouts_remaining"`
	PerformanceIndex     map[PlayerID]int        `json:"performance_index"`
	BelowMinimumPlay     map[TeamSide][]PlayerID `json:"below_minimum_play,omitempty"`
}

// NewGameView derives the read model for a game with remaining seconds left
// on the live clock
func NewGameView(g *Game, remaining int) GameView {
	view := GameView{
		Game:                 g,
		LiveRemainingSeconds: remaining,
		TimeoutsRemaining: map[TeamSide]int{
			SideHome: g.TimeoutsRemaining(SideHome),
			SideAway: g.TimeoutsRemaining(SideAway),
		},
		PerformanceIndex: make(map[PlayerID]int, len(g.Players)),
	}
	for id, b := range g.Players {
		view.PerformanceIndex[id] = b.PerformanceIndex()
	}
	if g.Status == GameStatusCompleted {
		view.BelowMinimumPlay = make(map[TeamSide][]PlayerID)
		for _, side := range []TeamSide{SideHome, SideAway} {
			if below := g.BelowMinimumPlay(side); len(below) > 0 {
				view.BelowMinimumPlay[side] = below
			}
		}
	}
	return view
}
