package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/http/response"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

// GET /stations/{id}
func (h *Handlers) GetStation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	station, err := h.venueService.GetStation(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to load station", "error", err, "station_id", id)
		response.InternalError(w, "failed to load station")
		return
	}
	if station == nil {
		response.NotFound(w, "station not found")
		return
	}

	writeJSON(w, http.StatusOK, station)
}

// PATCH /stations/{id}
func (h *Handlers) UpdateStation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	var req domain.UpdateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	station, err := h.venueService.UpdateStation(r.Context(), id, &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if station == nil {
		response.NotFound(w, "station not found")
		return
	}

	writeJSON(w, http.StatusOK, station)
}

// POST /stations/{id}/reports
func (h *Handlers) CreateReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	var req domain.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	report, err := h.reportService.CreateReport(r.Context(), id, userID(r), &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

// GET /stations/{id}/reports
func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	limit, offset := parsePagination(r)
	reports, err := h.reportService.ListReports(r.Context(), id, limit, offset)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list reports", "error", err, "station_id", id)
		response.InternalError(w, "failed to list reports")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// PUT /stations/{id}/vote
func (h *Handlers) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	uid := userID(r)
	if uid == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.reportService.Vote(r.Context(), id, *uid, req.Value); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DELETE /stations/{id}/vote
func (h *Handlers) Unvote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	uid := userID(r)
	if uid == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.reportService.Unvote(r.Context(), id, *uid); err != nil {
		logger.ErrorContext(r.Context(), "Failed to remove vote", "error", err, "station_id", id)
		response.InternalError(w, "failed to remove vote")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /stations/{id}/photos
func (h *Handlers) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	var req domain.CreatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	photo, err := h.reportService.AddPhoto(r.Context(), id, userID(r), &req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, photo)
}

// GET /stations/{id}/photos
func (h *Handlers) ListStationPhotos(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid station id")
		return
	}

	photos, err := h.reportService.ListStationPhotos(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list station photos", "error", err, "station_id", id)
		response.InternalError(w, "failed to list photos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"photos": photos})
}
