package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/courtside/internal/api/apierr"
	"github.com/mcoot/courtside/internal/api/middleware"
	"github.com/mcoot/courtside/internal/model"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}

// decode reads a JSON request body, rejecting unknown fields
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body: " + err.Error())
	}
	return nil
}

// identity returns the authenticated user, or an anonymous viewer
func identity(r *http.Request) model.Identity {
	if id := middleware.GetIdentity(r.Context()); id != nil {
		return *id
	}
	return model.Identity{Role: model.RoleViewer}
}
