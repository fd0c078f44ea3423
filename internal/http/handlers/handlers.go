package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/http/middleware"
	"github.com/diaperpal/diaperpal-api/internal/service"
	"github.com/diaperpal/diaperpal-api/pkg/config"
)

type Handlers struct {
	searchService service.SearchService
	venueService  service.VenueService
	reportService service.ReportService
	authService   service.AuthService
	config        *config.Config
}

func New(
	searchService service.SearchService,
	venueService service.VenueService,
	reportService service.ReportService,
	authService service.AuthService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		searchService: searchService,
		venueService:  venueService,
		reportService: reportService,
		authService:   authService,
		config:        cfg,
	}
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Helper to parse pagination parameters
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// userID returns the authenticated user's ID, or nil for anonymous requests.
func userID(r *http.Request) *int64 {
	if claims := middleware.Claims(r); claims != nil {
		id := claims.Sub
		return &id
	}
	return nil
}

// parseFilters reads the nearby-search filter query params. Unknown values
// are dropped rather than rejected; an empty set means no filtering.
func parseFilters(r *http.Request) domain.SearchFilters {
	var f domain.SearchFilters

	if raw := r.URL.Query().Get("venue_types"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if t, ok := domain.ParseVenueType(strings.TrimSpace(s)); ok {
				f.VenueTypes = append(f.VenueTypes, t)
			}
		}
	}
	if raw := r.URL.Query().Get("genders"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if g, ok := domain.ParseGender(strings.TrimSpace(s)); ok {
				f.Genders = append(f.Genders, g)
			}
		}
	}
	if v := r.URL.Query().Get("open_now"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.OpenNow = b
		}
	}
	return f
}
