package boxscore

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courtside/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	game    *model.Game
	events  []model.GameEvent
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
	s.events = nil
	s.game = &model.Game{
		ID:     "game-1",
		Format: model.HalfCourtFormat(),
		Status: model.GameStatusInProgress,
		Home: model.TeamState{
			Roster: []model.RosterPlayer{
				{ID: "h1", Name: "Ann", JerseyNumber: 4},
				{ID: "h2", Name: "Bea", JerseyNumber: 5},
				{ID: "h3", Name: "Cat", JerseyNumber: 6},
				{ID: "h4", Name: "Dot", JerseyNumber: 7},
			},
		},
		Away: model.TeamState{
			Roster: []model.RosterPlayer{
				{ID: "a1", Name: "Eve", JerseyNumber: 10},
				{ID: "a2", Name: "Fay", JerseyNumber: 11},
				{ID: "a3", Name: "Gus", JerseyNumber: 12},
			},
		},
		Clock:   model.ClockState{Period: 1, RemainingSeconds: 600},
		Players: map[model.PlayerID]*model.PlayerBoxScore{},
	}
	for _, id := range []model.PlayerID{"h1", "h2", "h3"} {
		s.apply(model.SideHome, id, model.ActionSubstitutionIn)
	}
	for _, id := range []model.PlayerID{"a1", "a2", "a3"} {
		s.apply(model.SideAway, id, model.ActionSubstitutionIn)
	}
}

func (s *ServiceSuite) apply(side model.TeamSide, player model.PlayerID, action model.GameEventAction) {
	e := model.GameEvent{
		GameID:   s.game.ID,
		Seq:      len(s.events) + 1,
		Side:     side,
		PlayerID: player,
		Action:   action,
		Period:   s.game.Clock.Period,
	}
	s.Require().NoError(s.service.Apply(s.game, e))
	s.events = append(s.events, e)
}

func (s *ServiceSuite) TestSubstitutionInSeedsCourtAndPeriods() {
	s.Equal([]model.PlayerID{"h1", "h2", "h3"}, s.game.Home.OnCourt)
	s.Equal([]int{1}, s.game.Players["h1"].PeriodsPlayed)
	s.Equal("Ann", s.game.Players["h1"].Name)
	s.Equal(model.SideAway, s.game.Players["a1"].Side)
}

func (s *ServiceSuite) TestMadeTwoPointer() {
	s.apply(model.SideHome, "h1", model.ActionShotMade2P)

	h1 := s.game.Players["h1"]
	s.Equal(2, h1.Points)
	s.Equal(1, h1.TwoPointsMade)
	s.Equal(1, h1.TwoPointsAtt)
	s.Equal(2, s.game.Home.Score)
	s.Equal(1, s.game.Home.Stats.TwoPointsMade)
	s.Equal(2, h1.PerformanceIndex())
}

func (s *ServiceSuite) TestMadeShotMovesPlusMinusOnBothCourts() {
	s.apply(model.SideAway, "a2", model.ActionShotMade3P)

	for _, id := range []model.PlayerID{"a1", "a2", "a3"} {
		s.Equal(3, s.game.Players[id].PlusMinus, string(id))
	}
	for _, id := range []model.PlayerID{"h1", "h2", "h3"} {
		s.Equal(-3, s.game.Players[id].PlusMinus, string(id))
	}
}

func (s *ServiceSuite) TestBenchPlayerPlusMinusUnchanged() {
	s.apply(model.SideHome, "h1", model.ActionShotMade1P)

	_, ok := s.game.Players["h4"]
	s.False(ok)
}

func (s *ServiceSuite) TestMissedShotsCountAttempts() {
	s.apply(model.SideHome, "h2", model.ActionShotMiss1P)
	s.apply(model.SideHome, "h2", model.ActionShotMiss2P)
	s.apply(model.SideHome, "h2", model.ActionShotMiss3P)

	h2 := s.game.Players["h2"]
	s.Equal(1, h2.FreeThrowsAtt)
	s.Equal(1, h2.TwoPointsAtt)
	s.Equal(1, h2.ThreePointsAtt)
	s.Equal(0, h2.Points)
	s.Equal(2, h2.MissedFieldGoals())
	s.Equal(1, h2.MissedFreeThrows())
	s.Equal(-3, h2.PerformanceIndex())
	s.Equal(0, s.game.Home.Score)
}

func (s *ServiceSuite) TestPerformanceIndexFormula() {
	for _, a := range []model.GameEventAction{
		model.ActionShotMade2P, model.ActionShotMade3P, model.ActionReboundOffensive,
		model.ActionReboundDefensive, model.ActionAssist, model.ActionSteal,
		model.ActionBlock, model.ActionFoulReceived,
	} {
		s.apply(model.SideHome, "h3", a)
	}
	for _, a := range []model.GameEventAction{
		model.ActionShotMiss2P, model.ActionShotMiss1P, model.ActionTurnover,
		model.ActionFoul, model.ActionBlockAgainst,
	} {
		s.apply(model.SideHome, "h3", a)
	}

	// (5 + 1 + 1 + 1 + 1 + 1 + 1) - (1 + 1 + 1 + 1 + 1)
	s.Equal(6, s.game.Players["h3"].PerformanceIndex())
}

func (s *ServiceSuite) TestTeamAggregates() {
	s.apply(model.SideAway, "a1", model.ActionFoul)
	s.apply(model.SideAway, "a1", model.ActionBlockAgainst)
	s.apply(model.SideAway, "", model.ActionTeamFoul)
	s.apply(model.SideAway, "", model.ActionTimeout)

	stats := s.game.Away.Stats
	s.Equal(1, stats.PersonalFouls)
	s.Equal(1, stats.TeamFouls)
	s.Equal(2, stats.Fouls())
	s.Equal(1, stats.BlocksAgainst)
	s.Equal(1, stats.Timeouts)
	s.Equal(1, s.game.Away.TimeoutsUsed)
}

func (s *ServiceSuite) TestSubstitutionOut() {
	s.apply(model.SideHome, "h1", model.ActionSubstitutionOut)
	s.apply(model.SideHome, "h4", model.ActionSubstitutionIn)

	s.Equal([]model.PlayerID{"h2", "h3", "h4"}, s.game.Home.OnCourt)
}

func (s *ServiceSuite) TestSubstitutionIsIdempotentAgainstCourt() {
	s.apply(model.SideHome, "h1", model.ActionSubstitutionIn)
	s.Equal([]model.PlayerID{"h1", "h2", "h3"}, s.game.Home.OnCourt)
}

func (s *ServiceSuite) TestApplyRejectsUnknownPlayerAndAction() {
	err := s.service.Apply(s.game, model.GameEvent{Side: model.SideHome, PlayerID: "ghost", Action: model.ActionSteal})
	s.ErrorIs(err, model.ErrPlayerNotInRoster)

	err = s.service.Apply(s.game, model.GameEvent{Side: model.SideHome, PlayerID: "h1", Action: "dunk"})
	s.ErrorIs(err, model.ErrInvalidAction)

	err = s.service.Apply(s.game, model.GameEvent{Side: "middle", Action: model.ActionTimeout})
	s.ErrorIs(err, model.ErrInvalidSide)
}

func (s *ServiceSuite) TestScoreEqualsSumOfPlayerPoints() {
	s.apply(model.SideHome, "h1", model.ActionShotMade3P)
	s.apply(model.SideHome, "h2", model.ActionShotMade1P)
	s.apply(model.SideAway, "a3", model.ActionShotMade2P)

	s.Equal(s.game.PlayerPointsTotal(model.SideHome), s.game.Home.Score)
	s.Equal(s.game.PlayerPointsTotal(model.SideAway), s.game.Away.Score)
}

func (s *ServiceSuite) TestReplayReproducesSnapshot() {
	s.apply(model.SideHome, "h1", model.ActionShotMade2P)
	s.apply(model.SideAway, "a1", model.ActionReboundDefensive)
	s.apply(model.SideHome, "h2", model.ActionSubstitutionOut)
	s.apply(model.SideHome, "h4", model.ActionSubstitutionIn)
	s.apply(model.SideAway, "a2", model.ActionShotMade3P)
	s.apply(model.SideHome, "", model.ActionTimeout)
	s.game.Players["h1"].TimePlayedSeconds = 120

	mismatches, err := s.service.Verify(s.game, s.events)
	s.Require().NoError(err)
	s.Empty(mismatches)

	replayed, err := s.service.Replay(s.game, s.events)
	s.Require().NoError(err)
	s.Equal(s.game.Home.Score, replayed.Home.Score)
	s.Equal(s.game.Players["h4"].PlusMinus, replayed.Players["h4"].PlusMinus)
	s.Equal(0, replayed.Players["h1"].TimePlayedSeconds)
}

func (s *ServiceSuite) TestCompareDetectsDivergence() {
	s.apply(model.SideHome, "h1", model.ActionShotMade2P)
	s.game.Home.Score = 5
	s.game.Players["h1"].Assists = 3

	mismatches, err := s.service.Verify(s.game, s.events)
	s.Require().NoError(err)

	fields := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		fields = append(fields, m.Field)
	}
	s.Contains(fields, "home.score")
	s.Contains(fields, "players.h1")
}

func (s *ServiceSuite) TestReplayDoesNotMutateBase() {
	s.apply(model.SideHome, "h1", model.ActionShotMade2P)

	_, err := s.service.Replay(s.game, nil)
	s.Require().NoError(err)
	s.Equal(2, s.game.Home.Score)
	s.Len(s.game.Home.OnCourt, 3)
}
