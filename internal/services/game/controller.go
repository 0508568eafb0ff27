package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/courtside/internal/dependencies/clock"
	"github.com/mcoot/courtside/internal/dependencies/ids"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/publish"
	"github.com/mcoot/courtside/internal/services/boxscore"
	"github.com/mcoot/courtside/internal/services/catalog"
	"github.com/mcoot/courtside/internal/services/gameclock"
	"github.com/mcoot/courtside/internal/services/roster"
	"github.com/mcoot/courtside/internal/services/scorer"
	"github.com/mcoot/courtside/internal/storage"
)

// MaxTransactionRetries bounds how often a write is retried after losing a
// race with a concurrent writer
const MaxTransactionRetries = 3

// errUnchanged aborts a transaction that would not change the game
var errUnchanged = errors.New("unchanged")

// EventInput is a scorer's report of something that happened on court
type EventInput struct {
	Side     model.TeamSide        `json:"side"`
	PlayerID model.PlayerID        `json:"player_id,omitempty"`
	Action   model.GameEventAction `json:"action"`
	// Period the scorer believes is in play. Zero skips the staleness check.
	Period int `json:"period,omitempty"`
	// GameTimeSeconds is what the scorer's display showed. The logged value
	// always comes from the server clock.
	GameTimeSeconds int `json:"game_time_seconds,omitempty"`
}

// Controller is the game state machine. Every mutation runs as one storage
// transaction: load, validate, apply all deltas and append events, write once.
type Controller struct {
	storage   storage.Storage
	catalog   *catalog.Service
	gameClock *gameclock.Service
	roster    *roster.Service
	scorers   *scorer.Service
	boxScores *boxscore.Service
	publisher publish.Publisher
	clock     clock.Clock
	ids       ids.Generator
	logger    *slog.Logger
}

// NewController creates a new game controller
func NewController(
	storage storage.Storage,
	catalog *catalog.Service,
	gameClock *gameclock.Service,
	roster *roster.Service,
	scorers *scorer.Service,
	boxScores *boxscore.Service,
	publisher publish.Publisher,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = publish.Nop{}
	}
	return &Controller{
		storage:   storage,
		catalog:   catalog,
		gameClock: gameClock,
		roster:    roster,
		scorers:   scorers,
		boxScores: boxScores,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
		logger:    logger,
	}
}

// eventLog appends events to the game inside a transaction, folding each one
// into the box scores as it goes
type eventLog struct {
	c      *Controller
	game   *model.Game
	caller model.Caller
	now    time.Time
	events []model.GameEvent
}

func (l *eventLog) append(side model.TeamSide, playerID model.PlayerID, action model.GameEventAction) (model.GameEvent, error) {
	g := l.game
	e := model.GameEvent{
		ID:              l.c.ids.NewID(),
		GameID:          g.ID,
		Seq:             g.EventCount + 1,
		Side:            side,
		PlayerID:        playerID,
		Action:          action,
		Period:          g.Clock.Period,
		GameTimeSeconds: l.c.gameClock.GameTime(g, l.now),
		CreatedAt:       l.now,
		ScorerID:        l.caller.ID,
		ScorerName:      l.caller.DisplayName,
	}
	if p, ok := g.Team(side).RosterPlayer(playerID); ok {
		e.PlayerName = p.Name
	}

	if err := l.c.boxScores.Apply(g, e); err != nil {
		return model.GameEvent{}, err
	}
	g.EventCount = e.Seq
	l.events = append(l.events, e)
	return e, nil
}

type mutation func(g *model.Game, log *eventLog) error

// mutate runs fn inside a storage transaction, retrying on write conflicts,
// and publishes the committed result
func (c *Controller) mutate(ctx context.Context, gameID model.GameID, op string, caller model.Caller, fn mutation) (*model.Game, []model.GameEvent, error) {
	if !caller.CanMutate() {
		return nil, nil, fmt.Errorf("%w: %s cannot manage game %s", model.ErrPermissionDenied, caller.ID, gameID)
	}

	var (
		game     *model.Game
		appended []model.GameEvent
		err      error
	)
	for attempt := 1; attempt <= MaxTransactionRetries; attempt++ {
		now := c.clock.Now()
		game, err = c.storage.UpdateGame(ctx, gameID, func(g *model.Game) ([]model.GameEvent, error) {
			log := &eventLog{c: c, game: g, caller: caller, now: now}
			if err := fn(g, log); err != nil {
				return nil, err
			}
			g.UpdatedAt = now
			appended = log.events
			return log.events, nil
		})
		if !errors.Is(err, model.ErrConflict) {
			break
		}
		c.logger.Warn("game write conflict",
			slog.String("game_id", string(gameID)),
			slog.String("op", op),
			slog.Int("attempt", attempt),
		)
	}

	if errors.Is(err, errUnchanged) {
		game, err = c.storage.GetGame(ctx, gameID)
		return game, nil, err
	}
	if err != nil {
		c.logger.Debug("game operation rejected",
			slog.String("game_id", string(gameID)),
			slog.String("op", op),
			slog.String("caller", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, nil, err
	}

	c.logger.Info("game updated",
		slog.String("game_id", string(gameID)),
		slog.String("op", op),
		slog.String("caller", caller.ID),
		slog.Int64("version", game.Version),
		slog.Int("events", len(appended)),
	)
	c.publish(ctx, game, appended)
	return game, appended, nil
}

func (c *Controller) publish(ctx context.Context, game *model.Game, events []model.GameEvent) {
	update := publish.Update{
		Game:             game,
		Events:           events,
		RemainingSeconds: c.RemainingSeconds(game),
	}
	if err := c.publisher.Publish(ctx, update); err != nil {
		c.logger.Error("failed to publish game update",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func requireUnfinished(g *model.Game) error {
	if g.Status.IsFinished() {
		return fmt.Errorf("%w: game is %s", model.ErrInvalidState, g.Status)
	}
	return nil
}

func requireStatus(g *model.Game, allowed ...model.GameStatus) error {
	for _, s := range allowed {
		if g.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: game is %s", model.ErrInvalidState, g.Status)
}

// CreateGame schedules a game between two teams under a format. The format
// rules are copied into the game so later edits do not affect it.
func (c *Controller) CreateGame(ctx context.Context, caller model.Caller, home, away model.TeamID, formatID model.FormatID, scheduledAt time.Time) (*model.Game, error) {
	if !caller.CanMutate() {
		return nil, fmt.Errorf("%w: %s cannot create games", model.ErrPermissionDenied, caller.ID)
	}
	if home == away {
		return nil, fmt.Errorf("%w: a team cannot play itself", model.ErrInvalidTeam)
	}

	format, err := c.catalog.GetFormat(ctx, formatID)
	if err != nil {
		return nil, err
	}
	homeTeam, err := c.catalog.GetTeam(ctx, home)
	if err != nil {
		return nil, err
	}
	awayTeam, err := c.catalog.GetTeam(ctx, away)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	if scheduledAt.IsZero() {
		scheduledAt = now
	}
	game := &model.Game{
		ID:       model.GameID(c.ids.NewID()),
		FormatID: format.ID,
		Format:   format,
		Status:   model.GameStatusScheduled,
		Home: model.TeamState{
			TeamID:  homeTeam.ID,
			Name:    homeTeam.Name,
			Roster:  []model.RosterPlayer{},
			OnCourt: []model.PlayerID{},
		},
		Away: model.TeamState{
			TeamID:  awayTeam.ID,
			Name:    awayTeam.Name,
			Roster:  []model.RosterPlayer{},
			OnCourt: []model.PlayerID{},
		},
		Players:     make(map[model.PlayerID]*model.PlayerBoxScore),
		Scorers:     make(map[model.ScorerCategory]*model.ScorerAssignment),
		ScheduledAt: scheduledAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.gameClock.ResetForPeriod(game, 1)

	if err := c.storage.CreateGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("home", string(home)),
		slog.String("away", string(away)),
		slog.String("format", string(format.ID)),
	)
	c.publish(ctx, game, nil)
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// ListEvents returns the game's event log in order
func (c *Controller) ListEvents(ctx context.Context, gameID model.GameID) ([]model.GameEvent, error) {
	return c.storage.ListEvents(ctx, gameID)
}

// RemainingSeconds is the live countdown for a game as of now
func (c *Controller) RemainingSeconds(g *model.Game) int {
	return c.gameClock.Remaining(g, c.clock.Now())
}

// VerifyBoxScores replays the event log and reports where it disagrees with
// the stored box scores. An empty result means they match.
func (c *Controller) VerifyBoxScores(ctx context.Context, gameID model.GameID) ([]boxscore.Mismatch, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	events, err := c.storage.ListEvents(ctx, gameID)
	if err != nil {
		return nil, err
	}
	// The log may already hold events committed after the snapshot was read
	for i, e := range events {
		if e.Seq > game.EventCount {
			events = events[:i]
			break
		}
	}

	mismatches, err := c.boxScores.Verify(game, events)
	if err != nil {
		return nil, err
	}
	if len(mismatches) > 0 {
		c.logger.Warn("box score diverged from event log",
			slog.String("game_id", string(gameID)),
			slog.Int("mismatches", len(mismatches)),
		)
	}
	return mismatches, nil
}

// SetGameRoster selects which of a team's players are eligible for the game.
// Only allowed before the game starts.
func (c *Controller) SetGameRoster(ctx context.Context, gameID model.GameID, caller model.Caller, side model.TeamSide, playerIDs []model.PlayerID) (*model.Game, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidSide, side)
	}

	current, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	pool, err := c.catalog.GetRosterPlayers(ctx, current.Team(side).TeamID)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.PlayerID]model.RosterPlayer, len(pool))
	for _, p := range pool {
		byID[p.ID] = p
	}

	selected := make([]model.RosterPlayer, 0, len(playerIDs))
	seen := make(map[model.PlayerID]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			continue
		}
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not on %s", model.ErrPlayerNotFound, id, current.Team(side).Name)
		}
		seen[id] = true
		selected = append(selected, p)
	}

	game, _, err := c.mutate(ctx, gameID, "set_roster", caller, func(g *model.Game, _ *eventLog) error {
		if err := requireStatus(g, model.GameStatusScheduled); err != nil {
			return err
		}
		for _, p := range selected {
			if owner, ok := g.SideOf(p.ID); ok && owner != side {
				return fmt.Errorf("%w: %s is on the %s roster", model.ErrInvalidTeam, p.ID, owner)
			}
		}
		team := g.Team(side)
		team.Roster = append([]model.RosterPlayer{}, selected...)
		team.OnCourt = []model.PlayerID{}
		return nil
	})
	return game, err
}

// Start moves a scheduled game in progress with the first players of each
// roster on court
func (c *Controller) Start(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "start", caller, func(g *model.Game, log *eventLog) error {
		if err := requireStatus(g, model.GameStatusScheduled); err != nil {
			return err
		}
		required := g.Format.RequiredOnCourt
		for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
			if n := len(g.Team(side).Roster); n < required {
				return fmt.Errorf("%w: %s has %d of %d players", model.ErrInsufficientRoster, side, n, required)
			}
		}

		g.Status = model.GameStatusInProgress
		started := log.now
		g.StartedAt = &started
		c.gameClock.ResetForPeriod(g, 1)

		for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
			starters, err := c.roster.Seed(g.Team(side), required)
			if err != nil {
				return err
			}
			for _, id := range starters {
				if _, err := log.append(side, id, model.ActionSubstitutionIn); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return game, err
}

// RecordEvent logs a statistic and updates the box scores in the same write
func (c *Controller) RecordEvent(ctx context.Context, gameID model.GameID, caller model.Caller, in EventInput) (*model.Game, model.GameEvent, error) {
	if !in.Action.Valid() || in.Action.IsSubstitution() {
		return nil, model.GameEvent{}, fmt.Errorf("%w: %q", model.ErrInvalidAction, in.Action)
	}
	if !in.Side.Valid() {
		return nil, model.GameEvent{}, fmt.Errorf("%w: %q", model.ErrInvalidSide, in.Side)
	}

	var recorded model.GameEvent
	game, _, err := c.mutate(ctx, gameID, "record_event", caller, func(g *model.Game, log *eventLog) error {
		if err := requireStatus(g, model.GameStatusInProgress); err != nil {
			return err
		}
		if err := c.scorers.Authorize(g, caller, in.Action); err != nil {
			return err
		}
		if in.Period != 0 && in.Period != g.Clock.Period {
			return fmt.Errorf("%w: event for period %d but period %d is in play", model.ErrInvalidState, in.Period, g.Clock.Period)
		}

		playerID := in.PlayerID
		if in.Action.IsTeamAction() {
			playerID = ""
			if in.Action == model.ActionTimeout {
				if g.TimeoutsRemaining(in.Side) == 0 {
					return fmt.Errorf("%w: %s", model.ErrNoTimeoutsRemaining, in.Side)
				}
				c.gameClock.Pause(g, log.now)
			}
		} else if !c.roster.IsOnCourt(g.Team(in.Side), playerID) {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotOnCourt, playerID)
		}

		e, err := log.append(in.Side, playerID, in.Action)
		if err != nil {
			return err
		}
		recorded = e
		return nil
	})
	if err != nil {
		return nil, model.GameEvent{}, err
	}
	return game, recorded, nil
}

// Substitute brings playerIn on court, swapping out playerOut when given.
// Elapsed clock time is credited to the outgoing lineup first.
func (c *Controller) Substitute(ctx context.Context, gameID model.GameID, caller model.Caller, side model.TeamSide, playerIn, playerOut model.PlayerID) (*model.Game, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidSide, side)
	}

	game, _, err := c.mutate(ctx, gameID, "substitute", caller, func(g *model.Game, log *eventLog) error {
		if err := requireStatus(g, model.GameStatusInProgress); err != nil {
			return err
		}
		if c.roster.IsOnCourt(g.Team(side.Opponent()), playerIn) {
			return fmt.Errorf("%w: %s", model.ErrPlayerOnOpposingCourt, playerIn)
		}

		c.gameClock.Flush(g, log.now)

		if err := c.roster.Substitute(g.Team(side), g.Format.RequiredOnCourt, playerIn, playerOut); err != nil {
			return err
		}
		if playerOut != "" {
			if _, err := log.append(side, playerOut, model.ActionSubstitutionOut); err != nil {
				return err
			}
		}
		_, err := log.append(side, playerIn, model.ActionSubstitutionIn)
		return err
	})
	return game, err
}

// EndPeriod closes the current period. Both courts are cleared so each team
// picks a new lineup; after the final period the game completes.
func (c *Controller) EndPeriod(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "end_period", caller, func(g *model.Game, log *eventLog) error {
		if err := requireStatus(g, model.GameStatusInProgress); err != nil {
			return err
		}

		c.gameClock.Pause(g, log.now)
		for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
			for _, id := range c.roster.Clear(g.Team(side)) {
				if _, err := log.append(side, id, model.ActionSubstitutionOut); err != nil {
					return err
				}
			}
		}

		if g.IsFinalPeriod() {
			c.finish(g, log.now)
			return nil
		}
		c.gameClock.ResetForPeriod(g, g.Clock.Period+1)
		return nil
	})
	return game, err
}

// Complete ends an in-progress game immediately
func (c *Controller) Complete(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "complete", caller, func(g *model.Game, log *eventLog) error {
		if err := requireStatus(g, model.GameStatusInProgress); err != nil {
			return err
		}
		c.gameClock.Pause(g, log.now)
		c.finish(g, log.now)
		return nil
	})
	return game, err
}

func (c *Controller) finish(g *model.Game, now time.Time) {
	g.Status = model.GameStatusCompleted
	g.Clock.Running = false
	g.Clock.StartedAt = nil
	g.Clock.RemainingSeconds = 0
	completed := now
	g.CompletedAt = &completed
}

// Cancel abandons a game that has not finished
func (c *Controller) Cancel(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "cancel", caller, func(g *model.Game, log *eventLog) error {
		if err := requireUnfinished(g); err != nil {
			return err
		}
		c.gameClock.Pause(g, log.now)
		g.Status = model.GameStatusCancelled
		return nil
	})
	return game, err
}

// ToggleClock starts or pauses the game clock
func (c *Controller) ToggleClock(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "toggle_clock", caller, func(g *model.Game, log *eventLog) error {
		return c.gameClock.Toggle(g, log.now)
	})
	return game, err
}

// ClaimCategory assigns a scorer category to the caller
func (c *Controller) ClaimCategory(ctx context.Context, gameID model.GameID, caller model.Caller, category model.ScorerCategory) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "claim_category", caller, func(g *model.Game, log *eventLog) error {
		if err := requireUnfinished(g); err != nil {
			return err
		}
		if held, ok := c.scorers.Holder(g, category); ok && held.ScorerID == caller.ID {
			return errUnchanged
		}
		return c.scorers.Claim(g, category, caller, log.now)
	})
	return game, err
}

// ReleaseCategory gives up a scorer category. Releasing a category the caller
// does not hold changes nothing.
func (c *Controller) ReleaseCategory(ctx context.Context, gameID model.GameID, caller model.Caller, category model.ScorerCategory) (*model.Game, error) {
	game, _, err := c.mutate(ctx, gameID, "release_category", caller, func(g *model.Game, _ *eventLog) error {
		released, err := c.scorers.Release(g, category, caller)
		if err != nil {
			return err
		}
		if !released {
			return errUnchanged
		}
		return nil
	})
	return game, err
}
