package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrFormatNotFound = errors.New("game format not found")
	ErrTeamNotFound   = errors.New("team not found")

	// Game state errors
	ErrInvalidState        = errors.New("operation not allowed in current game state")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInsufficientRoster  = errors.New("insufficient players on game roster")
	ErrNoTimeoutsRemaining = errors.New("no timeouts remaining")
	ErrInvalidAction       = errors.New("invalid game action")
	ErrInvalidSide         = errors.New("invalid team side")

	// Catalog errors
	ErrInvalidFormat = errors.New("invalid game format rules")
	ErrInvalidTeam   = errors.New("invalid team")

	// Court and roster errors
	ErrCourtFull             = errors.New("court is full")
	ErrPlayerAlreadyOnCourt  = errors.New("player is already on court")
	ErrPlayerNotOnCourt      = errors.New("player is not on court")
	ErrPlayerNotInRoster     = errors.New("player is not on the game roster")
	ErrPlayerOnOpposingCourt = errors.New("player is on the opposing team's court")

	// Scorer errors
	ErrCategoryAlreadyClaimed = errors.New("scorer category already claimed")
	ErrInvalidCategory        = errors.New("invalid scorer category")

	// Storage errors
	ErrConflict = errors.New("concurrent modification conflict")
)
