package boxscore

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mcoot/courtside/internal/model"
)

// Service derives box scores and team aggregates from game events.
// Apply is the only place a statistic changes, whether the event is new or
// being replayed from the log.
type Service struct{}

// New creates a new box-score service
func New() *Service {
	return &Service{}
}

// Apply folds one event into the game's box scores, team aggregates, score
// and courts. Substitution events are idempotent against the court so they
// may follow a lineup change that has already been made.
func (s *Service) Apply(g *model.Game, e model.GameEvent) error {
	if !e.Side.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidSide, e.Side)
	}
	team := g.Team(e.Side)

	if e.Action.IsTeamAction() {
		switch e.Action {
		case model.ActionTeamFoul:
			team.Stats.TeamFouls++
		case model.ActionTimeout:
			team.Stats.Timeouts++
			team.TimeoutsUsed++
		}
		return nil
	}

	p, ok := team.RosterPlayer(e.PlayerID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrPlayerNotInRoster, e.PlayerID)
	}
	box := g.BoxScore(p, e.Side)

	switch e.Action {
	case model.ActionShotMade1P, model.ActionShotMade2P, model.ActionShotMade3P:
		points := e.Action.PointValue()
		box.Points += points
		team.Score += points
		s.shotAttempt(box, &team.Stats, points, true)
		s.creditPlusMinus(g, e.Side, points)
	case model.ActionShotMiss1P:
		s.shotAttempt(box, &team.Stats, 1, false)
	case model.ActionShotMiss2P:
		s.shotAttempt(box, &team.Stats, 2, false)
	case model.ActionShotMiss3P:
		s.shotAttempt(box, &team.Stats, 3, false)
	case model.ActionReboundOffensive:
		box.OffensiveRebounds++
		team.Stats.OffensiveRebounds++
	case model.ActionReboundDefensive:
		box.DefensiveRebounds++
		team.Stats.DefensiveRebounds++
	case model.ActionAssist:
		box.Assists++
		team.Stats.Assists++
	case model.ActionSteal:
		box.Steals++
		team.Stats.Steals++
	case model.ActionBlock:
		box.Blocks++
		team.Stats.Blocks++
	case model.ActionTurnover:
		box.Turnovers++
		team.Stats.Turnovers++
	case model.ActionFoul:
		box.PersonalFouls++
		team.Stats.PersonalFouls++
	case model.ActionBlockAgainst:
		box.BlocksAgainst++
		team.Stats.BlocksAgainst++
	case model.ActionFoulReceived:
		box.FoulsDrawn++
		team.Stats.FoulsDrawn++
	case model.ActionSubstitutionIn:
		if !onCourt(team, e.PlayerID) {
			team.OnCourt = append(team.OnCourt, e.PlayerID)
		}
		box.MarkPeriodPlayed(e.Period)
	case model.ActionSubstitutionOut:
		for i, id := range team.OnCourt {
			if id == e.PlayerID {
				team.OnCourt = append(team.OnCourt[:i:i], team.OnCourt[i+1:]...)
				break
			}
		}
	default:
		return fmt.Errorf("%w: %s", model.ErrInvalidAction, e.Action)
	}
	return nil
}

func (s *Service) shotAttempt(box *model.PlayerBoxScore, stats *model.TeamStats, value int, made bool) {
	hit := 0
	if made {
		hit = 1
	}
	switch value {
	case 1:
		box.FreeThrowsAtt++
		box.FreeThrowsMade += hit
		stats.FreeThrowsAtt++
		stats.FreeThrowsMade += hit
	case 2:
		box.TwoPointsAtt++
		box.TwoPointsMade += hit
		stats.TwoPointsAtt++
		stats.TwoPointsMade += hit
	case 3:
		box.ThreePointsAtt++
		box.ThreePointsMade += hit
		stats.ThreePointsAtt++
		stats.ThreePointsMade += hit
	}
}

// creditPlusMinus adds points to everyone on the scoring side's court and
// subtracts them from everyone on the opponent's
func (s *Service) creditPlusMinus(g *model.Game, scoring model.TeamSide, points int) {
	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		delta := points
		if side != scoring {
			delta = -points
		}
		team := g.Team(side)
		for _, id := range team.OnCourt {
			if p, ok := team.RosterPlayer(id); ok {
				g.BoxScore(p, side).PlusMinus += delta
			}
		}
	}
}

func onCourt(team *model.TeamState, id model.PlayerID) bool {
	for _, p := range team.OnCourt {
		if p == id {
			return true
		}
	}
	return false
}

// Replay rebuilds a game's derived state from its rosters and event log alone
func (s *Service) Replay(base *model.Game, events []model.GameEvent) (*model.Game, error) {
	g := base.Clone()
	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		team := g.Team(side)
		team.OnCourt = []model.PlayerID{}
		team.Score = 0
		team.Stats = model.TeamStats{}
		team.TimeoutsUsed = 0
	}
	g.Players = make(map[model.PlayerID]*model.PlayerBoxScore)

	for _, e := range events {
		if err := s.Apply(g, e); err != nil {
			return nil, fmt.Errorf("replaying event %d: %w", e.Seq, err)
		}
	}
	return g, nil
}

// Mismatch describes one field where the stored snapshot and the replayed
// log disagree
type Mismatch struct {
	Field    string `json:"field"`
	Snapshot any    `json:"snapshot"`
	Replayed any    `json:"replayed"`
}

// Compare lists every derived field that differs between the snapshot and a
// replay. Time played is excluded since it comes from the clock.
func (s *Service) Compare(snapshot, replayed *model.Game) []Mismatch {
	var out []Mismatch
	check := func(field string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			out = append(out, Mismatch{Field: field, Snapshot: a, Replayed: b})
		}
	}

	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		a, b := snapshot.Team(side), replayed.Team(side)
		check(string(side)+".score", a.Score, b.Score)
		check(string(side)+".stats", a.Stats, b.Stats)
		check(string(side)+".timeouts_used", a.TimeoutsUsed, b.TimeoutsUsed)
		check(string(side)+".on_court", normalizeCourt(a.OnCourt), normalizeCourt(b.OnCourt))
	}

	ids := make(map[model.PlayerID]struct{})
	for id := range snapshot.Players {
		ids[id] = struct{}{}
	}
	for id := range replayed.Players {
		ids[id] = struct{}{}
	}
	sorted := make([]model.PlayerID, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, id := range sorted {
		a, b := withoutClock(snapshot.Players[id]), withoutClock(replayed.Players[id])
		check("players."+string(id), a, b)
	}
	return out
}

func withoutClock(b *model.PlayerBoxScore) *model.PlayerBoxScore {
	if b == nil {
		return nil
	}
	c := b.Clone()
	c.TimePlayedSeconds = 0
	if len(c.PeriodsPlayed) == 0 {
		c.PeriodsPlayed = nil
	}
	return c
}

// normalizeCourt treats nil and empty courts as equal
func normalizeCourt(court []model.PlayerID) []model.PlayerID {
	if len(court) == 0 {
		return nil
	}
	return court
}

// Verify replays the log and compares it with the snapshot
func (s *Service) Verify(snapshot *model.Game, events []model.GameEvent) ([]Mismatch, error) {
	replayed, err := s.Replay(snapshot, events)
	if err != nil {
		return nil, err
	}
	return s.Compare(snapshot, replayed), nil
}
