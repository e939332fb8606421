package location

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zipmap/zip-api/internal/pkg/errorhandler"
	"github.com/zipmap/zip-api/internal/pkg/kakao"
	"github.com/zipmap/zip-api/internal/pkg/logger"
	"github.com/zipmap/zip-api/internal/pkg/response"
	"github.com/zipmap/zip-api/internal/pkg/validator"
)

// Handler handles location HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates location handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Search handles GET /places/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, "Query parameter q is required")
		return
	}

	places, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, places)
}

// Resolve handles POST /locations
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	id, err := h.service.ResolveOrCreate(r.Context(), req.Name, req.Address, *req.Latitude, *req.Longitude)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, LocationIDResponse{ID: id})
}

// List handles GET /locations
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, locations)
}

// GetByID handles GET /locations/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid location ID")
		return
	}

	loc, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, loc)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the response
		logger.FromContext(ctx).Debug().Err(err).Msg("Place search abandoned by client")
	case errors.Is(err, ErrLocationNotFound):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found", err)
	case errors.Is(err, ErrNoResults):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "NO_RESULTS", "No places matched the query", err)
	case errors.Is(err, ErrExternalService):
		var statusErr *kakao.StatusError
		if errors.As(err, &statusErr) {
			errorhandler.LogExternalServiceError(ctx, "kakao", "keyword_search", statusErr.StatusCode, err, statusErr.Body)
		}
		errorhandler.HandleError(ctx, w, http.StatusBadGateway, "UPSTREAM_ERROR", "Place search is unavailable", err)
	default:
		errorhandler.Internal(ctx, w, err)
	}
}
