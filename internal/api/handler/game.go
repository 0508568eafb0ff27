package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/courtside/internal/api/request"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/publish/sse"
	"github.com/mcoot/courtside/internal/services/access"
	"github.com/mcoot/courtside/internal/services/game"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController *game.Controller
	accessService  *access.Service
	hubManager     *sse.HubManager
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(
	gameController *game.Controller,
	accessService *access.Service,
	hubManager *sse.HubManager,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		accessService:  accessService,
		hubManager:     hubManager,
		logger:         logger,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

func (h *GameHandler) caller(r *http.Request, id model.GameID) model.Caller {
	return h.accessService.Caller(r.Context(), id, identity(r))
}

func (h *GameHandler) writeGame(w http.ResponseWriter, status int, g *model.Game) {
	response.JSON(w, status, response.GameFromModel(g, h.gameController.RemainingSeconds(g)))
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.HomeTeamID == "" || req.AwayTeamID == "" {
		WriteError(w, NewInvalidRequestError("home_team_id and away_team_id are required"))
		return
	}
	if req.FormatID == "" {
		req.FormatID = model.FormatStandard
	}

	g, err := h.gameController.CreateGame(r.Context(), h.caller(r, ""), req.HomeTeamID, req.AwayTeamID, req.FormatID, req.ScheduledAt)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusCreated, g)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusOK, g)
}

// Events handles GET /api/v1/games/{id}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.gameController.ListEvents(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	if events == nil {
		events = []model.GameEvent{}
	}
	response.JSON(w, http.StatusOK, response.Events{Events: events})
}

// Verify handles GET /api/v1/games/{id}/verify
func (h *GameHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mismatches, err := h.gameController.VerifyBoxScores(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Verification{
		Consistent: len(mismatches) == 0,
		Mismatches: mismatches,
	})
}

// SetRoster handles PUT /api/v1/games/{id}/roster/{side}
func (h *GameHandler) SetRoster(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	var req request.SetRosterRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	side := model.TeamSide(mux.Vars(r)["side"])
	g, err := h.gameController.SetGameRoster(r.Context(), id, h.caller(r, id), side, req.PlayerIDs)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusOK, g)
}

// gameOp is a controller operation that takes no arguments beyond the caller
type gameOp func(ctx context.Context, gameID model.GameID, caller model.Caller) (*model.Game, error)

func (h *GameHandler) handleOp(op gameOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := gameID(r)
		g, err := op(r.Context(), id, h.caller(r, id))
		if err != nil {
			WriteError(w, err)
			return
		}
		h.writeGame(w, http.StatusOK, g)
	}
}

// Start handles POST /api/v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.handleOp(h.gameController.Start)(w, r)
}

// EndPeriod handles POST /api/v1/games/{id}/end-period
func (h *GameHandler) EndPeriod(w http.ResponseWriter, r *http.Request) {
	h.handleOp(h.gameController.EndPeriod)(w, r)
}

// Complete handles POST /api/v1/games/{id}/complete
func (h *GameHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.handleOp(h.gameController.Complete)(w, r)
}

// Cancel handles POST /api/v1/games/{id}/cancel
func (h *GameHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.handleOp(h.gameController.Cancel)(w, r)
}

// ToggleClock handles POST /api/v1/games/{id}/clock/toggle
func (h *GameHandler) ToggleClock(w http.ResponseWriter, r *http.Request) {
	h.handleOp(h.gameController.ToggleClock)(w, r)
}

// RecordEvent handles POST /api/v1/games/{id}/events
func (h *GameHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	var req request.RecordEventRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, event, err := h.gameController.RecordEvent(r.Context(), id, h.caller(r, id), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.Event{
		Event: event,
		Game:  response.GameFromModel(g, h.gameController.RemainingSeconds(g)),
	})
}

// Substitute handles POST /api/v1/games/{id}/substitutions
func (h *GameHandler) Substitute(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	var req request.SubstituteRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerIn == "" {
		WriteError(w, NewInvalidRequestError("player_in is required"))
		return
	}

	g, err := h.gameController.Substitute(r.Context(), id, h.caller(r, id), req.Side, req.PlayerIn, req.PlayerOut)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusOK, g)
}

// ClaimScorer handles POST /api/v1/games/{id}/scorers/{category}/claim
func (h *GameHandler) ClaimScorer(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	category := model.ScorerCategory(mux.Vars(r)["category"])

	g, err := h.gameController.ClaimCategory(r.Context(), id, h.caller(r, id), category)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusOK, g)
}

// ReleaseScorer handles POST /api/v1/games/{id}/scorers/{category}/release
func (h *GameHandler) ReleaseScorer(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	category := model.ScorerCategory(mux.Vars(r)["category"])

	g, err := h.gameController.ReleaseCategory(r.Context(), id, h.caller(r, id), category)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.writeGame(w, http.StatusOK, g)
}

// Stream handles GET /api/v1/games/{id}/stream
func (h *GameHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	g, err := h.gameController.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	initial, err := sse.SnapshotMessage(response.GameFromModel(g, h.gameController.RemainingSeconds(g)))
	if err != nil {
		h.logger.Error("failed to build initial snapshot",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()))
		WriteError(w, NewInternalError())
		return
	}

	viewer := identity(r)
	hub := h.hubManager.GetOrCreateHub(id)
	hub.Advance(g.Version)
	h.logger.Debug("viewer connected",
		slog.String("game_id", string(id)),
		slog.String("viewer_id", viewer.ID))

	sse.ServeSSE(w, r, hub, viewer.ID, initial)
}
