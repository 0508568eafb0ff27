package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/courtside/internal/api/apierr"
	"github.com/mcoot/courtside/internal/middleware"
)

// Recovery turns handler panics into JSON 500 responses
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs each API request
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
