package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Each game is guarded by its own lock, so writers to one game are
// serialized while different games proceed independently.
type Storage struct {
	mu sync.RWMutex

	games   map[model.GameID]*gameEntry
	formats map[model.FormatID]model.GameFormatRules
	teams   map[model.TeamID]*model.Team
}

type gameEntry struct {
	mu     sync.Mutex
	game   *model.Game
	events []model.GameEvent
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:   make(map[model.GameID]*gameEntry),
		formats: make(map[model.FormatID]model.GameFormatRules),
		teams:   make(map[model.TeamID]*model.Team),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) entry(id model.GameID) (*gameEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.games[id]
	return e, ok
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[game.ID]; exists {
		return fmt.Errorf("%w: game %s already exists", model.ErrConflict, game.ID)
	}
	s.games[game.ID] = &gameEntry{game: game.Clone()}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, model.ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game.Clone(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateFunc) (*model.Game, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, model.ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.game.Clone()
	events, err := fn(working)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	working.Version = e.game.Version + 1
	e.game = working
	e.events = append(e.events, events...)
	return working.Clone(), nil
}

func (s *Storage) ListEvents(ctx context.Context, id model.GameID) ([]model.GameEvent, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, model.ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]model.GameEvent, len(e.events))
	copy(result, e.events)
	return result, nil
}

// Format operations

func (s *Storage) SaveFormat(ctx context.Context, format model.GameFormatRules) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formats[format.ID] = format
	return nil
}

func (s *Storage) GetFormat(ctx context.Context, id model.FormatID) (model.GameFormatRules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.formats[id]
	if !ok {
		return model.GameFormatRules{}, model.ErrFormatNotFound
	}
	return f, nil
}

func (s *Storage) ListFormats(ctx context.Context) ([]model.GameFormatRules, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	formats := make([]model.GameFormatRules, 0, len(s.formats))
	for _, f := range s.formats {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].ID < formats[j].ID })
	return formats, nil
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *team
	c.Players = append([]model.RosterPlayer{}, team.Players...)
	s.teams[team.ID] = &c
	return nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	c := *t
	c.Players = append([]model.RosterPlayer{}, t.Players...)
	return &c, nil
}
