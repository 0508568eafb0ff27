package testutil

import (
	"fmt"

	"github.com/mcoot/courtside/internal/model"
)

// NewTeam builds a team with n players whose ids are "<id>-p1".."<id>-pN"
func NewTeam(id model.TeamID, name string, n int) *model.Team {
	team := &model.Team{ID: id, Name: name, Players: make([]model.RosterPlayer, 0, n)}
	for i := 1; i <= n; i++ {
		team.Players = append(team.Players, model.RosterPlayer{
			ID:           PlayerID(id, i),
			Name:         fmt.Sprintf("%s Player %d", name, i),
			JerseyNumber: i,
		})
	}
	return team
}

// PlayerID returns the id NewTeam gives its i-th player
func PlayerID(team model.TeamID, i int) model.PlayerID {
	return model.PlayerID(fmt.Sprintf("%s-p%d", team, i))
}

// PlayerIDs returns the ids of players 1..n of a NewTeam team
func PlayerIDs(team model.TeamID, n int) []model.PlayerID {
	ids := make([]model.PlayerID, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, PlayerID(team, i))
	}
	return ids
}

// Scorer returns a caller that can manage a game but holds no privilege
func Scorer(id string) model.Caller {
	return model.Caller{ID: id, DisplayName: id, Permission: model.Permission{CanManage: true}}
}

// Admin returns a privileged caller
func Admin() model.Caller {
	return model.Caller{ID: "admin", DisplayName: "Admin", Permission: model.Permission{CanManage: true, IsPrivileged: true}}
}

// Viewer returns a read-only caller
func Viewer() model.Caller {
	return model.Caller{ID: "viewer", DisplayName: "Viewer"}
}
