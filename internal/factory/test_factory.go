package factory

import (
	"context"
	"time"

	"github.com/mcoot/courtside/internal/dependencies/mocks"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/publish"
	"github.com/mcoot/courtside/internal/services/auth"
	"github.com/mcoot/courtside/internal/storage/memory"
	"github.com/mcoot/courtside/internal/testutil"
)

// TestSecret signs tokens in test apps
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Extra publishers receive every committed update alongside the SSE broadcaster.
func NewTestApp(publishers ...publish.Publisher) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = TestSecret

	app := newWithDependencies(store, mockClock, mockIDs, authCfg, testutil.NopLogger(), publishers...)
	if err := app.CatalogService.EnsureDefaultFormats(context.Background()); err != nil {
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}

// SeedTeams saves a home and away team with n players each, using the
// testutil.NewTeam naming
func (t *TestApp) SeedTeams(ctx context.Context, n int) error {
	if err := t.CatalogService.SaveTeam(ctx, testutil.NewTeam("home", "Hawks", n)); err != nil {
		return err
	}
	return t.CatalogService.SaveTeam(ctx, testutil.NewTeam("away", "Owls", n))
}

// Token issues a bearer token for a user with the given role
func (t *TestApp) Token(id string, role model.Role) string {
	token, err := t.AuthService.IssueToken(model.Identity{ID: id, DisplayName: id, Role: role})
	if err != nil {
		panic(err)
	}
	return token
}
