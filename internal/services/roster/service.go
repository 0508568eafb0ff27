package roster

import (
	"fmt"

	"github.com/mcoot/courtside/internal/model"
)

// Service manages one team's game roster and on-court subset.
// It knows nothing about the other team; cross-court checks belong to the caller.
type Service struct{}

// New creates a new RosterState service
func New() *Service {
	return &Service{}
}

// InRoster reports whether the player was selected for the game
func (s *Service) InRoster(team *model.TeamState, id model.PlayerID) bool {
	_, ok := team.RosterPlayer(id)
	return ok
}

// IsOnCourt reports whether the player is currently in play
func (s *Service) IsOnCourt(team *model.TeamState, id model.PlayerID) bool {
	for _, p := range team.OnCourt {
		if p == id {
			return true
		}
	}
	return false
}

// Seed puts the first n roster players on court, in roster order
func (s *Service) Seed(team *model.TeamState, n int) ([]model.PlayerID, error) {
	if len(team.Roster) < n {
		return nil, fmt.Errorf("%w: %s has %d of %d players", model.ErrInsufficientRoster, team.Name, len(team.Roster), n)
	}
	team.OnCourt = make([]model.PlayerID, 0, n)
	for _, p := range team.Roster[:n] {
		team.OnCourt = append(team.OnCourt, p.ID)
	}
	return append([]model.PlayerID{}, team.OnCourt...), nil
}

// Substitute brings playerIn onto the court. With playerOut set, playerOut
// leaves first; without it playerIn is added only while the court has room.
// New arrivals always join the end of the court list.
func (s *Service) Substitute(team *model.TeamState, required int, playerIn, playerOut model.PlayerID) error {
	if !s.InRoster(team, playerIn) {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotInRoster, playerIn)
	}
	if s.IsOnCourt(team, playerIn) {
		return fmt.Errorf("%w: %s", model.ErrPlayerAlreadyOnCourt, playerIn)
	}

	if playerOut == "" {
		if len(team.OnCourt) >= required {
			return model.ErrCourtFull
		}
		team.OnCourt = append(team.OnCourt, playerIn)
		return nil
	}

	if !s.Remove(team, playerOut) {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotOnCourt, playerOut)
	}
	team.OnCourt = append(team.OnCourt, playerIn)
	return nil
}

// Remove takes a player off the court, reporting whether they were on it
func (s *Service) Remove(team *model.TeamState, id model.PlayerID) bool {
	for i, p := range team.OnCourt {
		if p == id {
			team.OnCourt = append(team.OnCourt[:i:i], team.OnCourt[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the court and returns who was on it
func (s *Service) Clear(team *model.TeamState) []model.PlayerID {
	cleared := team.OnCourt
	team.OnCourt = []model.PlayerID{}
	return cleared
}
