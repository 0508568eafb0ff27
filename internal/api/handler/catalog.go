package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/courtside/internal/api/apierr"
	"github.com/mcoot/courtside/internal/api/request"
	"github.com/mcoot/courtside/internal/api/response"
	"github.com/mcoot/courtside/internal/model"
	"github.com/mcoot/courtside/internal/services/access"
	"github.com/mcoot/courtside/internal/services/catalog"
)

// CatalogHandler handles format and team endpoints
type CatalogHandler struct {
	catalogService *catalog.Service
	accessService  *access.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service, accessService *access.Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		accessService:  accessService,
	}
}

func (h *CatalogHandler) permission(r *http.Request) model.Permission {
	return h.accessService.CallerPermission(r.Context(), "", identity(r))
}

// ListFormats handles GET /api/v1/formats
func (h *CatalogHandler) ListFormats(w http.ResponseWriter, r *http.Request) {
	formats, err := h.catalogService.ListFormats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Formats{Formats: formats})
}

// GetFormat handles GET /api/v1/formats/{id}
func (h *CatalogHandler) GetFormat(w http.ResponseWriter, r *http.Request) {
	format, err := h.catalogService.GetFormat(r.Context(), model.FormatID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, format)
}

// PutFormat handles PUT /api/v1/formats/{id}
func (h *CatalogHandler) PutFormat(w http.ResponseWriter, r *http.Request) {
	if !h.permission(r).IsPrivileged {
		WriteError(w, apierr.NewPermissionDeniedError("only administrators can change format rules"))
		return
	}

	var req request.FormatRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	format := model.GameFormatRules{
		ID:                    model.FormatID(mux.Vars(r)["id"]),
		Name:                  req.Name,
		PeriodCount:           req.PeriodCount,
		PeriodDurationSeconds: req.PeriodDurationSeconds,
		TimeoutAllotment:      req.TimeoutAllotment,
		RequiredOnCourt:       req.RequiredOnCourt,
		MinimumPeriods:        req.MinimumPeriods,
	}
	if err := h.catalogService.SaveFormat(r.Context(), format); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, format)
}

// GetTeam handles GET /api/v1/teams/{id}
func (h *CatalogHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.catalogService.GetTeam(r.Context(), model.TeamID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, team)
}

// PutTeam handles PUT /api/v1/teams/{id}
func (h *CatalogHandler) PutTeam(w http.ResponseWriter, r *http.Request) {
	if !h.permission(r).CanManage {
		WriteError(w, apierr.NewPermissionDeniedError("read-only users cannot edit teams"))
		return
	}

	var req request.TeamRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	team := &model.Team{
		ID:      model.TeamID(mux.Vars(r)["id"]),
		Name:    req.Name,
		Players: req.Players,
	}
	if err := h.catalogService.SaveTeam(r.Context(), team); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, team)
}
