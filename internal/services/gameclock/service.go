package gameclock

import (
	"time"

	"github.com/mcoot/courtside/internal/model"
)

// Service applies the authoritative clock model to a game.
// The clock never ticks on the server: remaining time is stored at the last
// pause and elapsed time is folded in whenever someone reads it.
type Service struct{}

// New creates a new GameClock service
func New() *Service {
	return &Service{}
}

// elapsed returns whole seconds run since the segment began, clamped to the time left
func elapsed(c model.ClockState, now time.Time) int {
	if !c.Running || c.StartedAt == nil {
		return 0
	}
	secs := int(now.Sub(*c.StartedAt) / time.Second)
	if secs < 0 {
		return 0
	}
	if secs > c.RemainingSeconds {
		return c.RemainingSeconds
	}
	return secs
}

// Flush folds elapsed time into the clock and into the time played of every
// player on either court. A running clock keeps running from the new segment
// start. Returns the seconds flushed.
func (s *Service) Flush(g *model.Game, now time.Time) int {
	secs := elapsed(g.Clock, now)
	if secs == 0 {
		return 0
	}

	g.Clock.RemainingSeconds -= secs
	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		team := g.Team(side)
		for _, id := range team.OnCourt {
			p, ok := team.RosterPlayer(id)
			if !ok {
				continue
			}
			g.BoxScore(p, side).TimePlayedSeconds += secs
		}
	}

	// Keep the sub-second remainder in the running segment
	started := g.Clock.StartedAt.Add(time.Duration(secs) * time.Second)
	g.Clock.StartedAt = &started
	return secs
}

// Pause flushes and stops the clock. Pausing a stopped clock does nothing.
func (s *Service) Pause(g *model.Game, now time.Time) {
	if !g.Clock.Running {
		return
	}
	s.Flush(g, now)
	g.Clock.Running = false
	g.Clock.StartedAt = nil
}

// Toggle pauses a running clock or starts a paused one
func (s *Service) Toggle(g *model.Game, now time.Time) error {
	if g.Status != model.GameStatusInProgress {
		return model.ErrInvalidState
	}

	if g.Clock.Running {
		s.Pause(g, now)
		return nil
	}

	if g.Clock.RemainingSeconds <= 0 {
		return model.ErrInvalidState
	}
	started := now
	g.Clock.Running = true
	g.Clock.StartedAt = &started
	return nil
}

// Remaining returns the seconds left in the period as of now, without mutating
func (s *Service) Remaining(g *model.Game, now time.Time) int {
	return g.Clock.RemainingSeconds - elapsed(g.Clock, now)
}

// GameTime returns seconds played in the current period as of now
func (s *Service) GameTime(g *model.Game, now time.Time) int {
	played := g.Format.PeriodDurationSeconds - s.Remaining(g, now)
	if played < 0 {
		return 0
	}
	return played
}

// ResetForPeriod stops the clock and loads a full period
func (s *Service) ResetForPeriod(g *model.Game, period int) {
	g.Clock = model.ClockState{
		Period:           period,
		RemainingSeconds: g.Format.PeriodDurationSeconds,
	}
}
