package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusCancelled  GameStatus = "cancelled"
)

// IsFinished returns true for terminal statuses
func (s GameStatus) IsFinished() bool {
	return s == GameStatusCompleted || s == GameStatusCancelled
}

// TeamSide identifies the home or away team of a game
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Valid reports whether the side is home or away
func (s TeamSide) Valid() bool {
	return s == SideHome || s == SideAway
}

// Opponent returns the other side
func (s TeamSide) Opponent() TeamSide {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// TeamState is one team's participation in a game
type TeamState struct {
	TeamID TeamID `json:"team_id"`
	Name   string `json:"name"`

	// Roster is the pre-game selection, in selection order
	Roster []RosterPlayer `json:"roster"`
	// OnCourt is always a subset of Roster
	OnCourt []PlayerID `json:"on_court"`

	Score        int       `json:"score"`
	Stats        TeamStats `json:"stats"`
	TimeoutsUsed int       `json:"timeouts_used"`
}

// RosterPlayer returns the game roster entry for a player
func (t *TeamState) RosterPlayer(id PlayerID) (RosterPlayer, bool) {
	for _, p := range t.Roster {
		if p.ID == id {
			return p, true
		}
	}
	return RosterPlayer{}, false
}

// ClockState is the authoritative game clock.
// While running, StartedAt marks the start of the current unflushed segment.
type ClockState struct {
	Period           int        `json:"period"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Running          bool       `json:"running"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
}

// Game is the root aggregate for a single scheduled match
type Game struct {
	ID       GameID          `json:"id"`
	FormatID FormatID        `json:"format_id"`
	Format   GameFormatRules `json:"format"`
	Status   GameStatus      `json:"status"`

	Home TeamState `json:"home"`
	Away TeamState `json:"away"`

	Clock ClockState `json:"clock"`

	Players map[PlayerID]*PlayerBoxScore         `json:"players"`
	Scorers map[ScorerCategory]*ScorerAssignment `json:"scorers"`

	// EventCount is the sequence number of the last logged event
	EventCount int `json:"event_count"`
	// Version increments on every committed write
	Version int64 `json:"version"`

	ScheduledAt time.Time  `json:"scheduled_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Team returns the state for a side. Callers validate the side first.
func (g *Game) Team(side TeamSide) *TeamState {
	if side == SideAway {
		return &g.Away
	}
	return &g.Home
}

// SideOf returns which game roster a player belongs to
func (g *Game) SideOf(id PlayerID) (TeamSide, bool) {
	if _, ok := g.Home.RosterPlayer(id); ok {
		return SideHome, true
	}
	if _, ok := g.Away.RosterPlayer(id); ok {
		return SideAway, true
	}
	return "", false
}

// IsFinalPeriod returns true if the clock is in the format's last period
func (g *Game) IsFinalPeriod() bool {
	return g.Clock.Period >= g.Format.PeriodCount
}

// TimeoutsRemaining returns the unused timeouts for a side
func (g *Game) TimeoutsRemaining(side TeamSide) int {
	remaining := g.Format.TimeoutAllotment - g.Team(side).TimeoutsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BoxScore returns the player's box score, creating it on first appearance
func (g *Game) BoxScore(p RosterPlayer, side TeamSide) *PlayerBoxScore {
	if g.Players == nil {
		g.Players = make(map[PlayerID]*PlayerBoxScore)
	}
	if b, ok := g.Players[p.ID]; ok {
		return b
	}
	b := NewPlayerBoxScore(p, side)
	g.Players[p.ID] = b
	return b
}

// PlayerPointsTotal sums points over a side's box scores
func (g *Game) PlayerPointsTotal(side TeamSide) int {
	total := 0
	for _, b := range g.Players {
		if b.Side == side {
			total += b.Points
		}
	}
	return total
}

// BelowMinimumPlay lists rostered players who have appeared in fewer distinct
// periods than the format requires
func (g *Game) BelowMinimumPlay(side TeamSide) []PlayerID {
	if g.Format.MinimumPeriods == 0 {
		return nil
	}
	var below []PlayerID
	for _, p := range g.Team(side).Roster {
		played := 0
		if b, ok := g.Players[p.ID]; ok {
			played = b.PeriodsPlayedCount()
		}
		if played < g.Format.MinimumPeriods {
			below = append(below, p.ID)
		}
	}
	return below
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	c.Home = g.Home.clone()
	c.Away = g.Away.clone()
	if g.Clock.StartedAt != nil {
		t := *g.Clock.StartedAt
		c.Clock.StartedAt = &t
	}
	if g.StartedAt != nil {
		t := *g.StartedAt
		c.StartedAt = &t
	}
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	c.Players = make(map[PlayerID]*PlayerBoxScore, len(g.Players))
	for id, b := range g.Players {
		c.Players[id] = b.Clone()
	}
	c.Scorers = make(map[ScorerCategory]*ScorerAssignment, len(g.Scorers))
	for cat, a := range g.Scorers {
		if a == nil {
			continue
		}
		ac := *a
		c.Scorers[cat] = &ac
	}
	return &c
}

func (t TeamState) clone() TeamState {
	c := t
	c.Roster = append([]RosterPlayer{}, t.Roster...)
	c.OnCourt = append([]PlayerID{}, t.OnCourt...)
	return c
}
