package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodePermissionDenied       = "PERMISSION_DENIED"
	CodeGameNotFound           = "GAME_NOT_FOUND"
	CodePlayerNotFound         = "PLAYER_NOT_FOUND"
	CodeFormatNotFound         = "FORMAT_NOT_FOUND"
	CodeTeamNotFound           = "TEAM_NOT_FOUND"
	CodeInvalidState           = "INVALID_STATE"
	CodeInsufficientRoster     = "INSUFFICIENT_ROSTER"
	CodeNoTimeoutsRemaining    = "NO_TIMEOUTS_REMAINING"
	CodeInvalidAction          = "INVALID_ACTION"
	CodeInvalidSide            = "INVALID_SIDE"
	CodeInvalidFormat          = "INVALID_FORMAT"
	CodeInvalidTeam            = "INVALID_TEAM"
	CodeCourtFull              = "COURT_FULL"
	CodePlayerAlreadyOnCourt   = "PLAYER_ALREADY_ON_COURT"
	CodePlayerNotOnCourt       = "PLAYER_NOT_ON_COURT"
	CodePlayerNotInRoster      = "PLAYER_NOT_IN_ROSTER"
	CodePlayerOnOpposingCourt  = "PLAYER_ON_OPPOSING_COURT"
	CodeCategoryAlreadyClaimed = "CATEGORY_ALREADY_CLAIMED"
	CodeInvalidCategory        = "INVALID_CATEGORY"
	CodeConflict               = "CONFLICT"
	CodeInternalError          = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

type mapping struct {
	target error
	status int
	code   string
}

// mappings is checked in order; the first match wins
var mappings = []mapping{
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound},
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrFormatNotFound, http.StatusNotFound, CodeFormatNotFound},
	{model.ErrTeamNotFound, http.StatusNotFound, CodeTeamNotFound},
	{model.ErrPermissionDenied, http.StatusForbidden, CodePermissionDenied},
	{model.ErrInvalidState, http.StatusConflict, CodeInvalidState},
	{model.ErrInsufficientRoster, http.StatusConflict, CodeInsufficientRoster},
	{model.ErrNoTimeoutsRemaining, http.StatusConflict, CodeNoTimeoutsRemaining},
	{model.ErrCourtFull, http.StatusConflict, CodeCourtFull},
	{model.ErrPlayerAlreadyOnCourt, http.StatusConflict, CodePlayerAlreadyOnCourt},
	{model.ErrPlayerNotOnCourt, http.StatusConflict, CodePlayerNotOnCourt},
	{model.ErrPlayerOnOpposingCourt, http.StatusConflict, CodePlayerOnOpposingCourt},
	{model.ErrCategoryAlreadyClaimed, http.StatusConflict, CodeCategoryAlreadyClaimed},
	{model.ErrConflict, http.StatusConflict, CodeConflict},
	{model.ErrPlayerNotInRoster, http.StatusUnprocessableEntity, CodePlayerNotInRoster},
	{model.ErrInvalidAction, http.StatusBadRequest, CodeInvalidAction},
	{model.ErrInvalidSide, http.StatusBadRequest, CodeInvalidSide},
	{model.ErrInvalidCategory, http.StatusBadRequest, CodeInvalidCategory},
	{model.ErrInvalidFormat, http.StatusBadRequest, CodeInvalidFormat},
	{model.ErrInvalidTeam, http.StatusBadRequest, CodeInvalidTeam},
	{auth.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrMissingKey, http.StatusUnauthorized, CodeUnauthorized},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, err.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewPermissionDeniedError creates a forbidden error
func NewPermissionDeniedError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodePermissionDenied, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
