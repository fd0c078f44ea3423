package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/http/response"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

// GET /venues/nearby?lat=..&lng=..&radius=..&venue_types=..&genders=..&open_now=..
func (h *Handlers) NearbyVenues(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		response.BadRequest(w, "lat is required and must be between -90 and 90")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		response.BadRequest(w, "lng is required and must be between -180 and 180")
		return
	}

	var radius float64
	if v := r.URL.Query().Get("radius"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil || radius < 0 {
			response.BadRequest(w, "radius must be a non-negative number of meters")
			return
		}
	}

	results, err := h.searchService.Nearby(r.Context(), lat, lng, radius, parseFilters(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "Nearby search failed", "error", err)
		response.InternalError(w, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"venues": results})
}

// GET /venues/{id}
func (h *Handlers) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	detail, err := h.venueService.Get(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load venue", "error", err, "venue_id", id)
		response.InternalError(w, "failed to load venue")
		return
	}
	if detail == nil {
		response.NotFound(w, "venue not found")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// POST /venues
func (h *Handlers) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	venue, err := h.venueService.Create(r.Context(), &req, userID(r))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, venue)
}

// PATCH /venues/{id}
func (h *Handlers) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	var req domain.UpdateVenueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	venue, err := h.venueService.Update(r.Context(), id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if venue == nil {
		response.NotFound(w, "venue not found")
		return
	}

	writeJSON(w, http.StatusOK, venue)
}

// DELETE /venues/{id}
func (h *Handlers) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	deleted, err := h.venueService.Delete(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to delete venue", "error", err, "venue_id", id)
		response.InternalError(w, "failed to delete venue")
		return
	}
	if !deleted {
		response.NotFound(w, "venue not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /venues/{id}/refresh-hours
func (h *Handlers) RefreshVenueHours(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	parsed, err := h.venueService.RefreshHours(r.Context(), id)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"hours": parsed})
}

// GET /venues/{id}/photos
func (h *Handlers) ListVenuePhotos(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	photos, err := h.venueService.ListVenuePhotos(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list venue photos", "error", err, "venue_id", id)
		response.InternalError(w, "failed to list photos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos})
}

// POST /venues/{id}/stations
func (h *Handlers) CreateStation(w http.ResponseWriter, r *http.Request) {
	venueID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid venue id")
		return
	}

	var req domain.CreateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	station, err := h.venueService.CreateStation(r.Context(), venueID, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, station)
}
