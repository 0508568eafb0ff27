package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/courtside/internal/dependencies/clock"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/storage"
)

// Service serves game formats and team rosters to the game engine
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new catalog service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// DefaultFormats are installed when missing
func DefaultFormats() []model.GameFormatRules {
	return []model.GameFormatRules{model.StandardFormat(), model.HalfCourtFormat()}
}

// EnsureDefaultFormats installs built-in formats that are not yet stored.
// Stored formats with the same id are left alone.
func (s *Service) EnsureDefaultFormats(ctx context.Context) error {
	for _, f := range DefaultFormats() {
		_, err := s.storage.GetFormat(ctx, f.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrFormatNotFound) {
			return err
		}
		if err := s.storage.SaveFormat(ctx, f); err != nil {
			return err
		}
		s.logger.Info("installed default format", slog.String("format_id", string(f.ID)))
	}
	return nil
}

// GetFormat returns the rules for a format
func (s *Service) GetFormat(ctx context.Context, id model.FormatID) (model.GameFormatRules, error) {
	return s.storage.GetFormat(ctx, id)
}

// ListFormats returns all known formats ordered by id
func (s *Service) ListFormats(ctx context.Context) ([]model.GameFormatRules, error) {
	return s.storage.ListFormats(ctx)
}

// SaveFormat validates and stores a format. Games keep the snapshot taken when
// they were created, so edits never affect existing games.
func (s *Service) SaveFormat(ctx context.Context, format model.GameFormatRules) error {
	if !format.Validate() {
		return fmt.Errorf("%w: %s", model.ErrInvalidFormat, format.ID)
	}
	if err := s.storage.SaveFormat(ctx, format); err != nil {
		return err
	}
	s.logger.Info("format saved",
		slog.String("format_id", string(format.ID)),
		slog.Int("required_on_court", format.RequiredOnCourt),
	)
	return nil
}

// GetTeam returns a team with its full roster
func (s *Service) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return s.storage.GetTeam(ctx, id)
}

// SaveTeam validates and stores a team roster
func (s *Service) SaveTeam(ctx context.Context, team *model.Team) error {
	if err := validateTeam(team); err != nil {
		return err
	}
	team.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveTeam(ctx, team); err != nil {
		return err
	}
	s.logger.Info("team saved",
		slog.String("team_id", string(team.ID)),
		slog.Int("player_count", len(team.Players)),
	)
	return nil
}

// GetRosterPlayers returns the team's player pool
func (s *Service) GetRosterPlayers(ctx context.Context, id model.TeamID) ([]model.RosterPlayer, error) {
	team, err := s.storage.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	return team.Players, nil
}

func validateTeam(team *model.Team) error {
	if team.ID == "" || strings.TrimSpace(team.Name) == "" {
		return fmt.Errorf("%w: id and name are required", model.ErrInvalidTeam)
	}
	seen := make(map[model.PlayerID]bool, len(team.Players))
	for _, p := range team.Players {
		if p.ID == "" {
			return fmt.Errorf("%w: player without id", model.ErrInvalidTeam)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player %s", model.ErrInvalidTeam, p.ID)
		}
		if p.JerseyNumber < 0 {
			return fmt.Errorf("%w: negative jersey number for %s", model.ErrInvalidTeam, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}
