package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/courtside/internal/api"
	"github.com/mcoot/courtside/internal/api/apierr"
	"github.com/mcoot/courtside/internal/api/request"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/factory"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp

	admin  string
	coach  string
	scorer string
	viewer string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })
	require.NoError(t, app.SeedTeams(context.Background(), 6))

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.TestLogger(t),
		AuthService:    app.AuthService,
		AccessService:  app.AccessService,
		CatalogService: app.CatalogService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
	})

	return &testServer{
		handler: router,
		app:     app,
		admin:   app.Token("root", model.RoleSuperAdmin),
		coach:   app.Token("coach", model.RoleCoach),
		scorer:  app.Token("scorer", model.RoleScorer),
		viewer:  app.Token("fan", model.RoleViewer),
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeGame(t *testing.T, rr *httptest.ResponseRecorder) response.Game {
	t.Helper()
	var g response.Game
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &g), rr.Body.String())
	require.NotNil(t, g.Game)
	return g
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, code, resp.Error.Code)
}

// startedGame creates a half-court game with four players a side and starts it
func (ts *testServer) startedGame(t *testing.T) string {
	t.Helper()
	ts.app.MockIDs.Queue("g1")

	rr := ts.request(http.MethodPost, "/api/v1/games", request.CreateGameRequest{
		HomeTeamID: "home", AwayTeamID: "away", FormatID: model.FormatHalfCourt,
	}, ts.coach)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	for _, side := range []model.TeamSide{model.SideHome, model.SideAway} {
		rr = ts.request(http.MethodPut, "/api/v1/games/g1/roster/"+string(side), request.SetRosterRequest{
			PlayerIDs: testutil.PlayerIDs(model.TeamID(side), 4),
		}, ts.coach)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = ts.request(http.MethodPost, "/api/v1/games/g1/start", nil, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return "g1"
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestFormats(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/formats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var formats response.Formats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &formats))
	assert.Len(t, formats.Formats, 2)

	rr = ts.request(http.MethodGet, "/api/v1/formats/nope", nil, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeFormatNotFound)

	body := request.FormatRequest{
		Name: "Junior 4x8", PeriodCount: 4, PeriodDurationSeconds: 480,
		TimeoutAllotment: 2, RequiredOnCourt: 5, MinimumPeriods: 2,
	}
	rr = ts.request(http.MethodPut, "/api/v1/formats/junior", body, ts.coach)
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodPut, "/api/v1/formats/junior", body, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/formats/junior", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var format model.GameFormatRules
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &format))
	assert.Equal(t, 2, format.MinimumPeriods)

	body.PeriodCount = 0
	rr = ts.request(http.MethodPut, "/api/v1/formats/junior", body, ts.admin)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidFormat)
}

func TestTeams(t *testing.T) {
	ts := newTestServer(t)

	body := request.TeamRequest{
		Name: "Falcons",
		Players: []model.RosterPlayer{
			{ID: "f1", Name: "Ada", JerseyNumber: 4},
			{ID: "f2", Name: "Bo", JerseyNumber: 7},
		},
	}
	rr := ts.request(http.MethodPut, "/api/v1/teams/falcons", body, ts.viewer)
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodPut, "/api/v1/teams/falcons", body, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/teams/falcons", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var team model.Team
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &team))
	assert.Equal(t, "Falcons", team.Name)
	assert.Len(t, team.Players, 2)

	body.Players = append(body.Players, model.RosterPlayer{ID: "f1", Name: "Dup"})
	rr = ts.request(http.MethodPut, "/api/v1/teams/falcons", body, ts.coach)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidTeam)

	rr = ts.request(http.MethodGet, "/api/v1/teams/ghosts", nil, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeTeamNotFound)
}

func TestMutationsRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	body := request.CreateGameRequest{HomeTeamID: "home", AwayTeamID: "away"}

	rr := ts.request(http.MethodPost, "/api/v1/games", body, "")
	assertErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodPost, "/api/v1/games", body, "not-a-jwt")
	assertErrorCode(t, rr, http.StatusUnauthorized, apierr.CodeUnauthorized)

	rr = ts.request(http.MethodPost, "/api/v1/games", body, ts.viewer)
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)
}

func TestCreateGameValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"home": "x"}, ts.coach)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/v1/games", request.CreateGameRequest{HomeTeamID: "home"}, ts.coach)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/v1/games", request.CreateGameRequest{
		HomeTeamID: "home", AwayTeamID: "away", FormatID: "pickup",
	}, ts.coach)
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeFormatNotFound)

	rr = ts.request(http.MethodGet, "/api/v1/games/missing", nil, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestStartWithShortRoster(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockIDs.Queue("g1")

	rr := ts.request(http.MethodPost, "/api/v1/games", request.CreateGameRequest{
		HomeTeamID: "home", AwayTeamID: "away",
	}, ts.coach)
	require.Equal(t, http.StatusCreated, rr.Code)
	g := decodeGame(t, rr)
	assert.Equal(t, model.FormatStandard, g.FormatID)

	rr = ts.request(http.MethodPut, "/api/v1/games/g1/roster/home", request.SetRosterRequest{
		PlayerIDs: testutil.PlayerIDs("home", 2),
	}, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/g1/start", nil, ts.coach)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeInsufficientRoster)

	rr = ts.request(http.MethodPut, "/api/v1/games/g1/roster/middle", request.SetRosterRequest{}, ts.coach)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidSide)
}

func TestGameFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startedGame(t)
	base := "/api/v1/games/" + id

	rr := ts.request(http.MethodPost, base+"/scorers/shots/claim", nil, ts.scorer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, base+"/scorers/shots/claim", nil, ts.coach)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeCategoryAlreadyClaimed)

	rr = ts.request(http.MethodPost, base+"/scorers/points/claim", nil, ts.coach)
	assertErrorCode(t, rr, http.StatusBadRequest, apierr.CodeInvalidCategory)

	rr = ts.request(http.MethodPost, base+"/clock/toggle", nil, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code)
	ts.app.MockClock.Advance(30 * time.Second)

	rr = ts.request(http.MethodPost, base+"/events", request.RecordEventRequest{
		Side: model.SideHome, PlayerID: testutil.PlayerID("home", 1), Action: model.ActionShotMade2P,
	}, ts.scorer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var recorded response.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recorded))
	assert.Equal(t, 30, recorded.Event.GameTimeSeconds)
	assert.Equal(t, "scorer", recorded.Event.ScorerID)
	assert.Equal(t, 2, recorded.Game.Home.Score)
	assert.Equal(t, 570, recorded.Game.LiveRemainingSeconds)

	// fouls category is unclaimed
	rr = ts.request(http.MethodPost, base+"/events", request.RecordEventRequest{
		Side: model.SideAway, PlayerID: testutil.PlayerID("away", 1), Action: model.ActionFoul,
	}, ts.coach)
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodPost, base+"/events", request.RecordEventRequest{
		Side: model.SideHome, PlayerID: testutil.PlayerID("home", 4), Action: model.ActionShotMade3P,
	}, ts.scorer)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodePlayerNotOnCourt)

	rr = ts.request(http.MethodPost, base+"/substitutions", request.SubstituteRequest{
		Side: model.SideHome, PlayerIn: testutil.PlayerID("home", 4),
	}, ts.coach)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeCourtFull)

	rr = ts.request(http.MethodPost, base+"/substitutions", request.SubstituteRequest{
		Side: model.SideHome, PlayerIn: testutil.PlayerID("home", 4), PlayerOut: testutil.PlayerID("home", 1),
	}, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	g := decodeGame(t, rr)
	assert.Contains(t, g.Home.OnCourt, testutil.PlayerID("home", 4))
	assert.Equal(t, 30, g.Players[testutil.PlayerID("home", 1)].TimePlayedSeconds)

	rr = ts.request(http.MethodPost, base+"/substitutions", request.SubstituteRequest{
		Side: model.SideHome, PlayerIn: testutil.PlayerID("away", 1), PlayerOut: testutil.PlayerID("home", 2),
	}, ts.coach)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodePlayerOnOpposingCourt)

	rr = ts.request(http.MethodPost, base+"/scorers/shots/release", nil, ts.scorer)
	require.Equal(t, http.StatusOK, rr.Code)
	g = decodeGame(t, rr)
	assert.Nil(t, g.Scorers[model.CategoryShots])

	rr = ts.request(http.MethodPost, base+"/end-period", nil, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	g = decodeGame(t, rr)
	assert.Equal(t, model.GameStatusCompleted, g.Status)
	assert.Equal(t, 2, g.Home.Score)
	assert.Equal(t, 2, g.PerformanceIndex[testutil.PlayerID("home", 1)])

	rr = ts.request(http.MethodPost, base+"/cancel", nil, ts.coach)
	assertErrorCode(t, rr, http.StatusConflict, apierr.CodeInvalidState)

	rr = ts.request(http.MethodGet, base+"/events", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var events response.Events
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.NotEmpty(t, events.Events)
	for i, e := range events.Events {
		assert.Equal(t, i+1, e.Seq)
	}

	rr = ts.request(http.MethodGet, base+"/verify", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var verification response.Verification
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &verification))
	assert.True(t, verification.Consistent)
	assert.Empty(t, verification.Mismatches)
}

func TestCompleteAndCancel(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startedGame(t)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/complete", nil, ts.viewer)
	assertErrorCode(t, rr, http.StatusForbidden, apierr.CodePermissionDenied)

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/complete", nil, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code)
	g := decodeGame(t, rr)
	assert.Equal(t, model.GameStatusCompleted, g.Status)
	require.NotNil(t, g.CompletedAt)

	ts.app.MockIDs.Queue("g2")
	rr = ts.request(http.MethodPost, "/api/v1/games", request.CreateGameRequest{
		HomeTeamID: "home", AwayTeamID: "away",
	}, ts.coach)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/g2/cancel", nil, ts.coach)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.GameStatusCancelled, decodeGame(t, rr).Status)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/games", nil)
	req.Header.Set("Origin", "https://scores.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

// readEvent reads one SSE frame and returns its event name and data
func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case line == "" && name != "":
			return name, data
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data += strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestStreamDeliversUpdates(t *testing.T) {
	ts := newTestServer(t)
	id := ts.startedGame(t)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/games/" + id + "/stream?token=" + ts.viewer)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, _ := readEvent(t, reader)
	assert.Equal(t, "connected", name)

	name, data := readEvent(t, reader)
	require.Equal(t, "game-update", name)
	var snapshot response.Game
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	require.NotNil(t, snapshot.Game)
	assert.Equal(t, model.GameStatusInProgress, snapshot.Status)

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/events", request.RecordEventRequest{
		Side: model.SideAway, Action: model.ActionTimeout,
	}, ts.admin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	name, data = readEvent(t, reader)
	require.Equal(t, "game-event", name)
	var event model.GameEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, model.ActionTimeout, event.Action)

	name, data = readEvent(t, reader)
	require.Equal(t, "game-update", name)
	require.NoError(t, json.Unmarshal([]byte(data), &snapshot))
	assert.Equal(t, 1, snapshot.Away.TimeoutsUsed)

	// Viewers get the same read model as GET /games/{id}
	rr = ts.request(http.MethodGet, "/api/v1/games/"+id, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	current := decodeGame(t, rr)
	assert.Equal(t, current.Version, snapshot.Version)
	assert.Equal(t, current.TimeoutsRemaining, snapshot.TimeoutsRemaining)
	assert.Equal(t, current.PerformanceIndex, snapshot.PerformanceIndex)
	assert.Equal(t, current.LiveRemainingSeconds, snapshot.LiveRemainingSeconds)
}

func TestStreamUnknownGame(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/games/nope/stream", nil, "")
	assertErrorCode(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}
