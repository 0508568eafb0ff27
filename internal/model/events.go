package model

import "time"

// GameEventAction identifies what happened in a logged game event
type GameEventAction string

const (
	ActionShotMade1P       GameEventAction = "shot_made_1p"
	ActionShotMiss1P       GameEventAction = "shot_miss_1p"
	ActionShotMade2P       GameEventAction = "shot_made_2p"
	ActionShotMiss2P       GameEventAction = "shot_miss_2p"
	ActionShotMade3P       GameEventAction = "shot_made_3p"
	ActionShotMiss3P       GameEventAction = "shot_miss_3p"
	ActionReboundOffensive GameEventAction = "rebound_offensive"
	ActionReboundDefensive GameEventAction = "rebound_defensive"
	ActionAssist           GameEventAction = "assist"
	ActionSteal            GameEventAction = "steal"
	ActionBlock            GameEventAction = "block"
	ActionTurnover         GameEventAction = "turnover"
	ActionFoul             GameEventAction = "foul"
	ActionBlockAgainst     GameEventAction = "block_against"
	ActionFoulReceived     GameEventAction = "foul_received"
	ActionTeamFoul         GameEventAction = "team_foul"
	ActionTimeout          GameEventAction = "timeout"
	ActionSubstitutionIn   GameEventAction = "substitution_in"
	ActionSubstitutionOut  GameEventAction = "substitution_out"
)

// AllActions lists every known action in display order
var AllActions = []GameEventAction{
	ActionShotMade1P, ActionShotMiss1P,
	ActionShotMade2P, ActionShotMiss2P,
	ActionShotMade3P, ActionShotMiss3P,
	ActionReboundOffensive, ActionReboundDefensive,
	ActionAssist, ActionSteal, ActionBlock, ActionTurnover,
	ActionFoul, ActionBlockAgainst, ActionFoulReceived,
	ActionTeamFoul, ActionTimeout,
	ActionSubstitutionIn, ActionSubstitutionOut,
}

// Valid reports whether the action is a known kind
func (a GameEventAction) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// IsTeamAction reports whether the action is recorded against a team rather than a player
func (a GameEventAction) IsTeamAction() bool {
	return a == ActionTeamFoul || a == ActionTimeout
}

// IsSubstitution reports whether the action is a lineup change
func (a GameEventAction) IsSubstitution() bool {
	return a == ActionSubstitutionIn || a == ActionSubstitutionOut
}

// PointValue returns the points a made shot is worth, or 0 for anything else
func (a GameEventAction) PointValue() int {
	switch a {
	case ActionShotMade1P:
		return 1
	case ActionShotMade2P:
		return 2
	case ActionShotMade3P:
		return 3
	default:
		return 0
	}
}

// ScorerCategory is the unit of mutual exclusion among concurrent scorers
type ScorerCategory string

const (
	CategoryShots ScorerCategory = "shots"
	CategoryFouls ScorerCategory = "fouls"
	CategoryOther ScorerCategory = "other"
)

// AllCategories lists the scorer categories
var AllCategories = []ScorerCategory{CategoryShots, CategoryFouls, CategoryOther}

// Valid reports whether the category is known
func (c ScorerCategory) Valid() bool {
	return c == CategoryShots || c == CategoryFouls || c == CategoryOther
}

// ScorerAssignment records who holds a scorer category
type ScorerAssignment struct {
	ScorerID    string    `json:"scorer_id"`
	DisplayName string    `json:"display_name"`
	ClaimedAt   time.Time `json:"claimed_at"`
}

// GameEvent is an immutable entry in a game's event log
type GameEvent struct {
	ID              string          `json:"id"`
	GameID          GameID          `json:"game_id"`
	Seq             int             `json:"seq"`
	Side            TeamSide        `json:"side"`
	PlayerID        PlayerID        `json:"player_id,omitempty"`
	PlayerName      string          `json:"player_name,omitempty"`
	Action          GameEventAction `json:"action"`
	Period          int             `json:"period"`
	GameTimeSeconds int             `json:"game_time_seconds"`
	CreatedAt       time.Time       `json:"created_at"`
	ScorerID        string          `json:"scorer_id"`
	ScorerName      string          `json:"scorer_name,omitempty"`
}
