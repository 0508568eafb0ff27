package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courtside/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newGame(id model.GameID) *model.Game {
	return &model.Game{
		ID:        id,
		FormatID:  model.FormatStandard,
		Format:    model.StandardFormat(),
		Status:    model.GameStatusScheduled,
		Home:      model.TeamState{TeamID: "home", Name: "Hawks"},
		Away:      model.TeamState{TeamID: "away", Name: "Owls"},
		Clock:     model.ClockState{Period: 1, RemainingSeconds: 600},
		Players:   map[model.PlayerID]*model.PlayerBoxScore{},
		Scorers:   map[model.ScorerCategory]*model.ScorerAssignment{},
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Game tests

func (s *StorageSuite) TestCreateAndGetGame() {
	err := s.storage.CreateGame(s.ctx, s.newGame("game-1"))
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), retrieved.ID)
	s.Equal(model.GameStatusScheduled, retrieved.Status)
}

func (s *StorageSuite) TestCreateGameTwiceConflicts() {
	s.Require().NoError(s.storage.CreateGame(s.ctx, s.newGame("game-1")))

	dup := s.newGame("game-1")
	dup.Status = model.GameStatusCancelled
	err := s.storage.CreateGame(s.ctx, dup)
	s.ErrorIs(err, model.ErrConflict)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusScheduled, retrieved.Status)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGetGameReturnsCopy() {
	_ = s.storage.CreateGame(s.ctx, s.newGame("game-1"))

	g, _ := s.storage.GetGame(s.ctx, "game-1")
	g.Home.Score = 99

	again, _ := s.storage.GetGame(s.ctx, "game-1")
	s.Equal(0, again.Home.Score)
}

func (s *StorageSuite) TestUpdateGameAppliesChangesAndEvents() {
	_ = s.storage.CreateGame(s.ctx, s.newGame("game-1"))

	updated, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.GameEvent, error) {
		g.Home.Score = 2
		g.EventCount++
		return []model.GameEvent{{GameID: g.ID, Seq: g.EventCount, Action: model.ActionShotMade2P}}, nil
	})
	s.Require().NoError(err)
	s.Equal(2, updated.Home.Score)
	s.Equal(int64(1), updated.Version)

	events, err := s.storage.ListEvents(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Len(events, 1)
	s.Equal(model.ActionShotMade2P, events[0].Action)
}

func (s *StorageSuite) TestUpdateGameErrorWritesNothing() {
	_ = s.storage.CreateGame(s.ctx, s.newGame("game-1"))
	boom := errors.New("boom")

	_, err := s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.GameEvent, error) {
		g.Home.Score = 50
		return []model.GameEvent{{Action: model.ActionShotMade3P}}, boom
	})
	s.ErrorIs(err, boom)

	g, _ := s.storage.GetGame(s.ctx, "game-1")
	s.Equal(0, g.Home.Score)
	s.Equal(int64(0), g.Version)
	events, _ := s.storage.ListEvents(s.ctx, "game-1")
	s.Empty(events)
}

func (s *StorageSuite) TestUpdateGameNotFound() {
	_, err := s.storage.UpdateGame(s.ctx, "nonexistent", func(g *model.Game) ([]model.GameEvent, error) {
		return nil, nil
	})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestConcurrentUpdatesAreSerialized() {
	_ = s.storage.CreateGame(s.ctx, s.newGame("game-1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.storage.UpdateGame(s.ctx, "game-1", func(g *model.Game) ([]model.GameEvent, error) {
				g.Home.Stats.PersonalFouls++
				g.EventCount++
				return []model.GameEvent{{Seq: g.EventCount, Action: model.ActionFoul}}, nil
			})
		}()
	}
	wg.Wait()

	g, _ := s.storage.GetGame(s.ctx, "game-1")
	s.Equal(50, g.Home.Stats.PersonalFouls)
	events, _ := s.storage.ListEvents(s.ctx, "game-1")
	s.Len(events, 50)
	for i, e := range events {
		s.Equal(i+1, e.Seq)
	}
}

// Format tests

func (s *StorageSuite) TestSaveAndListFormats() {
	_ = s.storage.SaveFormat(s.ctx, model.StandardFormat())
	_ = s.storage.SaveFormat(s.ctx, model.HalfCourtFormat())

	f, err := s.storage.GetFormat(s.ctx, model.FormatHalfCourt)
	s.Require().NoError(err)
	s.Equal(3, f.RequiredOnCourt)

	formats, err := s.storage.ListFormats(s.ctx)
	s.Require().NoError(err)
	s.Len(formats, 2)
	s.Equal(model.FormatHalfCourt, formats[0].ID)
}

func (s *StorageSuite) TestGetFormatNotFound() {
	_, err := s.storage.GetFormat(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrFormatNotFound)
}

// Team tests

func (s *StorageSuite) TestSaveAndGetTeam() {
	team := &model.Team{
		ID:      "team-1",
		Name:    "Hawks",
		Players: []model.RosterPlayer{{ID: "p1", Name: "Ann", JerseyNumber: 4}},
	}
	s.Require().NoError(s.storage.SaveTeam(s.ctx, team))

	retrieved, err := s.storage.GetTeam(s.ctx, "team-1")
	s.Require().NoError(err)
	s.Equal("Hawks", retrieved.Name)
	s.Len(retrieved.Players, 1)
}

func (s *StorageSuite) TestGetTeamNotFound() {
	_, err := s.storage.GetTeam(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrTeamNotFound)
}
