package scorer

import (
	"fmt"
	"time"

	"github.com/mcoot/courtside/internal/model"
)

// Service is the registry of which scorer holds each stat category on a game
type Service struct{}

// New creates a new ScorerAssignmentRegistry service
func New() *Service {
	return &Service{}
}

// CategoryFor maps an action to the category whose holder may record it.
// Substitutions belong to no category.
func (s *Service) CategoryFor(action model.GameEventAction) (model.ScorerCategory, bool) {
	switch action {
	case model.ActionShotMade1P, model.ActionShotMiss1P,
		model.ActionShotMade2P, model.ActionShotMiss2P,
		model.ActionShotMade3P, model.ActionShotMiss3P:
		return model.CategoryShots, true
	case model.ActionFoul, model.ActionFoulReceived, model.ActionTeamFoul:
		return model.CategoryFouls, true
	case model.ActionReboundOffensive, model.ActionReboundDefensive,
		model.ActionAssist, model.ActionSteal, model.ActionBlock,
		model.ActionBlockAgainst, model.ActionTurnover, model.ActionTimeout:
		return model.CategoryOther, true
	default:
		return "", false
	}
}

// Holder returns the current assignment for a category, if any
func (s *Service) Holder(g *model.Game, category model.ScorerCategory) (*model.ScorerAssignment, bool) {
	a, ok := g.Scorers[category]
	return a, ok && a != nil
}

// Claim assigns the category to the caller. Claiming a category the caller
// already holds changes nothing.
func (s *Service) Claim(g *model.Game, category model.ScorerCategory, caller model.Caller, now time.Time) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %s", model.ErrInvalidCategory, category)
	}

	if held, ok := s.Holder(g, category); ok {
		if held.ScorerID == caller.ID {
			return nil
		}
		return fmt.Errorf("%w: %s is held by %s", model.ErrCategoryAlreadyClaimed, category, held.DisplayName)
	}

	if g.Scorers == nil {
		g.Scorers = make(map[model.ScorerCategory]*model.ScorerAssignment)
	}
	g.Scorers[category] = &model.ScorerAssignment{
		ScorerID:    caller.ID,
		DisplayName: caller.DisplayName,
		ClaimedAt:   now,
	}
	return nil
}

// Release clears the category only if the caller holds it.
// Returns whether anything changed.
func (s *Service) Release(g *model.Game, category model.ScorerCategory, caller model.Caller) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("%w: %s", model.ErrInvalidCategory, category)
	}

	held, ok := s.Holder(g, category)
	if !ok || held.ScorerID != caller.ID {
		return false, nil
	}
	delete(g.Scorers, category)
	return true, nil
}

// Authorize checks the caller may record the action. Privileged callers
// bypass category ownership.
func (s *Service) Authorize(g *model.Game, caller model.Caller, action model.GameEventAction) error {
	if caller.Permission.IsPrivileged {
		return nil
	}

	category, ok := s.CategoryFor(action)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrInvalidAction, action)
	}

	held, ok := s.Holder(g, category)
	if !ok || held.ScorerID != caller.ID {
		return fmt.Errorf("%w: %s category not held by caller", model.ErrPermissionDenied, category)
	}
	return nil
}
