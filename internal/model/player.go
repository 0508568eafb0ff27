package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// TeamID uniquely identifies a team
type TeamID string

// RosterPlayer is a member of a team's player pool
type RosterPlayer struct {
	ID           PlayerID `json:"id"`
	Name         string   `json:"name"`
	JerseyNumber int      `json:"jersey_number"`
}

// Team is a club team with its full season roster
type Team struct {
	ID        TeamID         `json:"id"`
	Name      string         `json:"name"`
	Players   []RosterPlayer `json:"players"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Role is the account role asserted by the identity provider
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleClubAdmin  Role = "club_admin"
	RoleCoach      Role = "coach"
	RoleScorer     Role = "scorer"
	RoleViewer     Role = "viewer"
)

// Identity is a verified user as presented by the identity provider
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Permission is the caller's capability on a single game
type Permission struct {
	CanManage    bool
	IsPrivileged bool
}

// Caller identifies whoever is invoking a game operation.
// Identity and permission are always passed explicitly.
type Caller struct {
	ID          string
	DisplayName string
	Permission  Permission
}

// CanMutate reports whether the caller may change game state at all
func (c Caller) CanMutate() bool {
	return c.Permission.CanManage || c.Permission.IsPrivileged
}
