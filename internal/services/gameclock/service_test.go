package gameclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courtside/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
	game    *model.Game
	t0      time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
	s.t0 = time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)
	s.game = &model.Game{
		ID:     "game-1",
		Format: model.HalfCourtFormat(),
		Status: model.GameStatusInProgress,
		Home: model.TeamState{
			Roster:  []model.RosterPlayer{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}},
			OnCourt: []model.PlayerID{"h1", "h2", "h3"},
		},
		Away: model.TeamState{
			Roster:  []model.RosterPlayer{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "a4"}},
			OnCourt: []model.PlayerID{"a1", "a2"},
		},
		Clock:   model.ClockState{Period: 1, RemainingSeconds: 600},
		Players: map[model.PlayerID]*model.PlayerBoxScore{},
	}
}

func (s *ServiceSuite) timePlayed(id model.PlayerID) int {
	b, ok := s.game.Players[id]
	if !ok {
		return 0
	}
	return b.TimePlayedSeconds
}

func (s *ServiceSuite) TestPauseAfter37SecondsFlushesToEveryOnCourtPlayer() {
	s.Require().NoError(s.service.Toggle(s.game, s.t0))
	s.True(s.game.Clock.Running)

	s.Require().NoError(s.service.Toggle(s.game, s.t0.Add(37*time.Second)))

	s.False(s.game.Clock.Running)
	s.Nil(s.game.Clock.StartedAt)
	s.Equal(563, s.game.Clock.RemainingSeconds)
	for _, id := range []model.PlayerID{"h1", "h2", "h3", "a1", "a2"} {
		s.Equal(37, s.timePlayed(id), "player %s", id)
	}
	s.Equal(0, s.timePlayed("a3"))
}

func (s *ServiceSuite) TestFlushFloorsAndKeepsRemainder() {
	_ = s.service.Toggle(s.game, s.t0)

	flushed := s.service.Flush(s.game, s.t0.Add(10*time.Second+700*time.Millisecond))
	s.Equal(10, flushed)
	s.True(s.game.Clock.Running)
	s.Equal(s.t0.Add(10*time.Second), *s.game.Clock.StartedAt)

	// The 700ms carried over completes another second
	flushed = s.service.Flush(s.game, s.t0.Add(11*time.Second+100*time.Millisecond))
	s.Equal(1, flushed)
	s.Equal(589, s.game.Clock.RemainingSeconds)
	s.Equal(11, s.timePlayed("h1"))
}

func (s *ServiceSuite) TestFlushIsClampedToRemaining() {
	s.game.Clock.RemainingSeconds = 5
	_ = s.service.Toggle(s.game, s.t0)

	s.Equal(5, s.service.Flush(s.game, s.t0.Add(time.Minute)))
	s.Equal(0, s.game.Clock.RemainingSeconds)
	s.Equal(5, s.timePlayed("a1"))
}

func (s *ServiceSuite) TestFlushIgnoresClockSkewBackwards() {
	_ = s.service.Toggle(s.game, s.t0)

	s.Equal(0, s.service.Flush(s.game, s.t0.Add(-5*time.Second)))
	s.Equal(600, s.game.Clock.RemainingSeconds)
}

func (s *ServiceSuite) TestFlushPausedClockIsNoop() {
	s.Equal(0, s.service.Flush(s.game, s.t0.Add(time.Hour)))
	s.Equal(600, s.game.Clock.RemainingSeconds)
	s.Empty(s.game.Players)
}

func (s *ServiceSuite) TestToggleRequiresInProgress() {
	s.game.Status = model.GameStatusScheduled
	s.ErrorIs(s.service.Toggle(s.game, s.t0), model.ErrInvalidState)

	s.game.Status = model.GameStatusCompleted
	s.ErrorIs(s.service.Toggle(s.game, s.t0), model.ErrInvalidState)
}

func (s *ServiceSuite) TestStartWithNoTimeLeftFails() {
	s.game.Clock.RemainingSeconds = 0
	s.ErrorIs(s.service.Toggle(s.game, s.t0), model.ErrInvalidState)
	s.False(s.game.Clock.Running)
}

func (s *ServiceSuite) TestRemainingAndGameTimeDoNotMutate() {
	_ = s.service.Toggle(s.game, s.t0)
	now := s.t0.Add(90 * time.Second)

	s.Equal(510, s.service.Remaining(s.game, now))
	s.Equal(90, s.service.GameTime(s.game, now))
	s.Equal(600, s.game.Clock.RemainingSeconds)
	s.Empty(s.game.Players)
}

func (s *ServiceSuite) TestResetForPeriod() {
	_ = s.service.Toggle(s.game, s.t0)

	s.service.ResetForPeriod(s.game, 2)

	s.Equal(2, s.game.Clock.Period)
	s.Equal(600, s.game.Clock.RemainingSeconds)
	s.False(s.game.Clock.Running)
	s.Nil(s.game.Clock.StartedAt)
}
