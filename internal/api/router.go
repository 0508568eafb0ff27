package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/courtside/internal/api/handler"
	"github.com/mcoot/courtside/internal/api/middleware"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/publish/sse"
	"github.com/mcoot/courtside/internal/services/access"
	"github.com/mcoot/courtside/internal/services/auth"
	"github.com/mcoot/courtside/internal/services/catalog"
	"github.com/mcoot/courtside/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	AccessService  *access.Service
	CatalogService *catalog.Service
	GameController *game.Controller
	HubManager     *sse.HubManager
	// CORSOrigins lists browser origins allowed to call the API
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	catalogHandler := handler.NewCatalogHandler(cfg.CatalogService, cfg.AccessService)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.AccessService, cfg.HubManager, cfg.Logger)

	// API subrouter with common middleware. Reads are public; a present token
	// still identifies the viewer.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.OptionalAuth(cfg.AuthService))

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireIdentity(h)
	}

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Catalog routes
	api.HandleFunc("/formats", catalogHandler.ListFormats).Methods(http.MethodGet)
	api.HandleFunc("/formats/{id}", catalogHandler.GetFormat).Methods(http.MethodGet)
	api.Handle("/formats/{id}", authed(catalogHandler.PutFormat)).Methods(http.MethodPut)
	api.HandleFunc("/teams/{id}", catalogHandler.GetTeam).Methods(http.MethodGet)
	api.Handle("/teams/{id}", authed(catalogHandler.PutTeam)).Methods(http.MethodPut)

	// Game reads
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/verify", gameHandler.Verify).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/stream", gameHandler.Stream).Methods(http.MethodGet)

	// Game mutations
	api.Handle("/games", authed(gameHandler.Create)).Methods(http.MethodPost)
	api.Handle("/games/{id}/roster/{side}", authed(gameHandler.SetRoster)).Methods(http.MethodPut)
	api.Handle("/games/{id}/start", authed(gameHandler.Start)).Methods(http.MethodPost)
	api.Handle("/games/{id}/end-period", authed(gameHandler.EndPeriod)).Methods(http.MethodPost)
	api.Handle("/games/{id}/complete", authed(gameHandler.Complete)).Methods(http.MethodPost)
	api.Handle("/games/{id}/cancel", authed(gameHandler.Cancel)).Methods(http.MethodPost)
	api.Handle("/games/{id}/clock/toggle", authed(gameHandler.ToggleClock)).Methods(http.MethodPost)
	api.Handle("/games/{id}/events", authed(gameHandler.RecordEvent)).Methods(http.MethodPost)
	api.Handle("/games/{id}/substitutions", authed(gameHandler.Substitute)).Methods(http.MethodPost)
	api.Handle("/games/{id}/scorers/{category}/claim", authed(gameHandler.ClaimScorer)).Methods(http.MethodPost)
	api.Handle("/games/{id}/scorers/{category}/release", authed(gameHandler.ReleaseScorer)).Methods(http.MethodPost)

	return middleware.CORS(cfg.CORSOrigins)(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
