package model

import "sort"

// PlayerBoxScore accumulates a single player's statistics for one game
type PlayerBoxScore struct {
	PlayerID     PlayerID `json:"player_id"`
	Name         string   `json:"name"`
	JerseyNumber int      `json:"jersey_number"`
	Side         TeamSide `json:"side"`

	Points            int `json:"points"`
	FreeThrowsMade    int `json:"ft_made"`
	FreeThrowsAtt     int `json:"ft_attempted"`
	TwoPointsMade     int `json:"fg2_made"`
	TwoPointsAtt      int `json:"fg2_attempted"`
	ThreePointsMade   int `json:"fg3_made"`
	ThreePointsAtt    int `json:"fg3_attempted"`
	OffensiveRebounds int `json:"offensive_rebounds"`
	DefensiveRebounds int `json:"defensive_rebounds"`
	Assists           int `json:"assists"`
	Steals            int `json:"steals"`
	Blocks            int `json:"blocks"`
	Turnovers         int `json:"turnovers"`
	PersonalFouls     int `json:"personal_fouls"`
	BlocksAgainst     int `json:"blocks_against"`
	FoulsDrawn        int `json:"fouls_drawn"`
	PlusMinus         int `json:"plus_minus"`

	TimePlayedSeconds int `json:"time_played_seconds"`
	// PeriodsPlayed is kept sorted and duplicate-free
	PeriodsPlayed []int `json:"periods_played"`
}

// NewPlayerBoxScore creates an empty box score for a rostered player
func NewPlayerBoxScore(p RosterPlayer, side TeamSide) *PlayerBoxScore {
	return &PlayerBoxScore{
		PlayerID:      p.ID,
		Name:          p.Name,
		JerseyNumber:  p.JerseyNumber,
		Side:          side,
		PeriodsPlayed: []int{},
	}
}

// TotalRebounds returns offensive plus defensive rebounds
func (b *PlayerBoxScore) TotalRebounds() int {
	return b.OffensiveRebounds + b.DefensiveRebounds
}

// MissedFieldGoals returns missed two and three point attempts
func (b *PlayerBoxScore) MissedFieldGoals() int {
	return (b.TwoPointsAtt - b.TwoPointsMade) + (b.ThreePointsAtt - b.ThreePointsMade)
}

// MissedFreeThrows returns missed one point attempts
func (b *PlayerBoxScore) MissedFreeThrows() int {
	return b.FreeThrowsAtt - b.FreeThrowsMade
}

// PerformanceIndex is always derived from the counting stats, never stored
func (b *PlayerBoxScore) PerformanceIndex() int {
	positive := b.Points + b.TotalRebounds() + b.Assists + b.Steals + b.Blocks + b.FoulsDrawn
	negative := b.MissedFieldGoals() + b.MissedFreeThrows() + b.Turnovers + b.PersonalFouls + b.BlocksAgainst
	return positive - negative
}

// MarkPeriodPlayed records an appearance in the given period
func (b *PlayerBoxScore) MarkPeriodPlayed(period int) {
	i := sort.SearchInts(b.PeriodsPlayed, period)
	if i < len(b.PeriodsPlayed) && b.PeriodsPlayed[i] == period {
		return
	}
	b.PeriodsPlayed = append(b.PeriodsPlayed, 0)
	copy(b.PeriodsPlayed[i+1:], b.PeriodsPlayed[i:])
	b.PeriodsPlayed[i] = period
}

// PeriodsPlayedCount returns the number of distinct periods appeared in
func (b *PlayerBoxScore) PeriodsPlayedCount() int {
	return len(b.PeriodsPlayed)
}

// Clone returns a deep copy
func (b *PlayerBoxScore) Clone() *PlayerBoxScore {
	c := *b
	c.PeriodsPlayed = append([]int{}, b.PeriodsPlayed...)
	return &c
}

// TeamStats are per-team aggregates derived from the event log
type TeamStats struct {
	FreeThrowsMade    int `json:"ft_made"`
	FreeThrowsAtt     int `json:"ft_attempted"`
	TwoPointsMade     int `json:"fg2_made"`
	TwoPointsAtt      int `json:"fg2_attempted"`
	ThreePointsMade   int `json:"fg3_made"`
	ThreePointsAtt    int `json:"fg3_attempted"`
	OffensiveRebounds int `json:"offensive_rebounds"`
	DefensiveRebounds int `json:"defensive_rebounds"`
	Assists           int `json:"assists"`
	Steals            int `json:"steals"`
	Blocks            int `json:"blocks"`
	Turnovers         int `json:"turnovers"`
	PersonalFouls     int `json:"personal_fouls"`
	TeamFouls         int `json:"team_fouls"`
	FoulsDrawn        int `json:"fouls_drawn"`
	BlocksAgainst     int `json:"blocks_against"`
	Timeouts          int `json:"timeouts"`
}

// Fouls returns personal plus team fouls
func (s TeamStats) Fouls() int {
	return s.PersonalFouls + s.TeamFouls
}
