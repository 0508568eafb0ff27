package access

import (
	"context"
	"log/slog"

	"github.com/mcoot/courtside/internal/model"
)

// Service resolves what a verified user may do on a game
type Service struct {
	logger *slog.Logger
}

// New creates a new access service
func New(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// CallerPermission maps the user's role to a permission on the game.
// Unknown roles are read-only.
func (s *Service) CallerPermission(ctx context.Context, gameID model.GameID, user model.Identity) model.Permission {
	switch user.Role {
	case model.RoleSuperAdmin:
		return model.Permission{CanManage: true, IsPrivileged: true}
	case model.RoleClubAdmin, model.RoleCoach, model.RoleScorer:
		return model.Permission{CanManage: true}
	case model.RoleViewer, "":
		return model.Permission{}
	default:
		s.logger.Warn("unknown role treated as read-only",
			slog.String("user_id", user.ID),
			slog.String("role", string(user.Role)),
			slog.String("game_id", string(gameID)),
		)
		return model.Permission{}
	}
}

// Caller builds the explicit caller passed into game operations
func (s *Service) Caller(ctx context.Context, gameID model.GameID, user model.Identity) model.Caller {
	return model.Caller{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Permission:  s.CallerPermission(ctx, gameID, user),
	}
}
