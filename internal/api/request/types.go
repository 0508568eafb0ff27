package request

import (
	"time"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/services/game"
)

// CreateGameRequest is the request body for scheduling a game
type CreateGameRequest struct {
	HomeTeamID  model.TeamID   `json:"home_team_id"`
	AwayTeamID  model.TeamID   `json:"away_team_id"`
	FormatID    model.FormatID `json:"format_id"`
	ScheduledAt time.Time      `json:"scheduled_at,omitempty"`
}

// SetRosterRequest is the request body for selecting a side's game roster
type SetRosterRequest struct {
	PlayerIDs []model.PlayerID `json:"player_ids"`
}

// RecordEventRequest is the request body for logging a game action
type RecordEventRequest = game.EventInput

// SubstituteRequest is the request body for a substitution. PlayerOut may be
// empty when the court has room.
type SubstituteRequest struct {
	Side      model.TeamSide `json:"side"`
	PlayerIn  model.PlayerID `json:"player_in"`
	PlayerOut model.PlayerID `json:"player_out,omitempty"`
}

// TeamRequest is the request body for saving a team
type TeamRequest struct {
	Name    string               `json:"name"`
	Players []model.RosterPlayer `json:"players"`
}

// FormatRequest is the request body for saving format rules
type FormatRequest struct {
	Name                  string `json:"name"`
	PeriodCount           int    `json:"period_count"`
	PeriodDurationSeconds int    `json:"period_duration_seconds"`
	TimeoutAllotment      int    `json:"timeout_allotment"`
	RequiredOnCourt       int    `json:"required_on_court"`
	MinimumPeriods        int    `json:"minimum_periods"`
}
