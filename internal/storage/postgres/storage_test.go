package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courtside/internal/model"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/courtside", migrateURL("postgres://u:p@db:5432/courtside"))
	assert.Equal(t, "pgx5://db/courtside", migrateURL("postgresql://db/courtside"))
	assert.Equal(t, "pgx5://db/courtside", migrateURL("pgx5://db/courtside"))
}

// StorageSuite runs against a real database when TEST_DATABASE_URL is set
type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	s.ctx = context.Background()
	cfg := DefaultConfig()
	cfg.URL = os.Getenv("TEST_DATABASE_URL")

	st, err := New(s.ctx, cfg)
	s.Require().NoError(err)
	s.storage = st
}

func (s *StorageSuite) TearDownSuite() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) newGame() *model.Game {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Game{
		ID:        model.GameID(uuid.NewString()),
		FormatID:  model.FormatStandard,
		Format:    model.StandardFormat(),
		Status:    model.GameStatusScheduled,
		Home:      model.TeamState{TeamID: "home", Name: "Hawks"},
		Away:      model.TeamState{TeamID: "away", Name: "Owls"},
		Clock:     model.ClockState{Period: 1, RemainingSeconds: 600},
		Players:   map[model.PlayerID]*model.PlayerBoxScore{},
		Scorers:   map[model.ScorerCategory]*model.ScorerAssignment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *StorageSuite) TestCreateAndGetGame() {
	game := s.newGame()
	s.Require().NoError(s.storage.CreateGame(s.ctx, game))

	retrieved, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal("Owls", retrieved.Away.Name)

	s.ErrorIs(s.storage.CreateGame(s.ctx, game), model.ErrConflict)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestUpdateGameWritesEvents() {
	game := s.newGame()
	_ = s.storage.CreateGame(s.ctx, game)

	updated, err := s.storage.UpdateGame(s.ctx, game.ID, func(g *model.Game) ([]model.GameEvent, error) {
		g.Home.Score = 1
		g.EventCount++
		return []model.GameEvent{{GameID: g.ID, Seq: g.EventCount, Action: model.ActionShotMade1P}}, nil
	})
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Version)

	events, err := s.storage.ListEvents(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(model.ActionShotMade1P, events[0].Action)
}

func (s *StorageSuite) TestUpdateGameErrorRollsBack() {
	game := s.newGame()
	_ = s.storage.CreateGame(s.ctx, game)
	boom := errors.New("boom")

	_, err := s.storage.UpdateGame(s.ctx, game.ID, func(g *model.Game) ([]model.GameEvent, error) {
		g.Home.Score = 9
		return nil, boom
	})
	s.ErrorIs(err, boom)

	g, _ := s.storage.GetGame(s.ctx, game.ID)
	s.Equal(0, g.Home.Score)
}

func (s *StorageSuite) TestConcurrentUpdatesAreSerialized() {
	game := s.newGame()
	_ = s.storage.CreateGame(s.ctx, game)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.storage.UpdateGame(s.ctx, game.ID, func(g *model.Game) ([]model.GameEvent, error) {
				g.EventCount++
				return []model.GameEvent{{Seq: g.EventCount, Action: model.ActionSteal}}, nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	events, err := s.storage.ListEvents(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(events, 10)
}

func (s *StorageSuite) TestFormatsAndTeams() {
	s.Require().NoError(s.storage.SaveFormat(s.ctx, model.HalfCourtFormat()))
	f, err := s.storage.GetFormat(s.ctx, model.FormatHalfCourt)
	s.Require().NoError(err)
	s.Equal(3, f.RequiredOnCourt)

	teamID := model.TeamID(uuid.NewString())
	s.Require().NoError(s.storage.SaveTeam(s.ctx, &model.Team{ID: teamID, Name: "Hawks"}))
	team, err := s.storage.GetTeam(s.ctx, teamID)
	s.Require().NoError(err)
	s.Equal("Hawks", team.Name)

	_, err = s.storage.GetTeam(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrTeamNotFound)
}
