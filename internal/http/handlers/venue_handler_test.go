package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/pkg/config"
)

type mockSearchService struct {
	gotLat     float64
	gotLng     float64
	gotRadius  float64
	gotFilters domain.SearchFilters
	results    []domain.VenueResult
	err        error
}

func (m *mockSearchService) Nearby(_ context.Context, lat, lng, radius float64, filters domain.SearchFilters) ([]domain.VenueResult, error) {
	m.gotLat, m.gotLng, m.gotRadius, m.gotFilters = lat, lng, radius, filters
	return m.results, m.err
}

type mockVenueService struct {
	detail *domain.VenueDetail
}

func (m *mockVenueService) Create(context.Context, *domain.CreateVenueRequest, *int64) (*domain.Venue, error) {
	return nil, nil
}
func (m *mockVenueService) Get(context.Context, uuid.UUID) (*domain.VenueDetail, error) {
	return m.detail, nil
}
func (m *mockVenueService) Update(context.Context, uuid.UUID, *domain.UpdateVenueRequest) (*domain.Venue, error) {
	return nil, nil
}
func (m *mockVenueService) Delete(context.Context, uuid.UUID) (bool, error) { return false, nil }
func (m *mockVenueService) RefreshHours(context.Context, uuid.UUID) (domain.HoursJSON, error) {
	return nil, nil
}
func (m *mockVenueService) CreateStation(context.Context, uuid.UUID, *domain.CreateStationRequest) (*domain.Station, error) {
	return nil, nil
}
func (m *mockVenueService) UpdateStation(context.Context, uuid.UUID, *domain.UpdateStationRequest) (*domain.Station, error) {
	return nil, nil
}
func (m *mockVenueService) GetStation(context.Context, uuid.UUID) (*domain.Station, error) {
	return nil, nil
}
func (m *mockVenueService) ListVenuePhotos(context.Context, uuid.UUID) ([]domain.Photo, error) {
	return nil, nil
}

func setupTestServer(search *mockSearchService, venues *mockVenueService) *httptest.Server {
	h := New(search, venues, nil, nil, &config.Config{})

	r := chi.NewRouter()
	r.Get("/venues/nearby", h.NearbyVenues)
	r.Get("/venues/{id}", h.GetVenue)
	return httptest.NewServer(r)
}

func TestNearbyVenues_RequiresCoordinates(t *testing.T) {
	srv := setupTestServer(&mockSearchService{}, &mockVenueService{})
	defer srv.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"missing lat", "/venues/nearby?lng=-74.0"},
		{"missing lng", "/venues/nearby?lat=40.7"},
		{"lat out of range", "/venues/nearby?lat=91&lng=-74.0"},
		{"lng out of range", "/venues/nearby?lat=40.7&lng=181"},
		{"negative radius", "/venues/nearby?lat=40.7&lng=-74.0&radius=-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.url)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestNearbyVenues_ParsesFilters(t *testing.T) {
	search := &mockSearchService{}
	srv := setupTestServer(search, &mockVenueService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/venues/nearby?lat=40.7&lng=-74.0&radius=5000&venue_types=cafe,park,bogus&genders=womens&open_now=true")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if search.gotLat != 40.7 || search.gotLng != -74.0 || search.gotRadius != 5000 {
		t.Errorf("coordinates not passed through: lat=%v lng=%v radius=%v", search.gotLat, search.gotLng, search.gotRadius)
	}
	// Unknown venue_types values are dropped, not rejected.
	if len(search.gotFilters.VenueTypes) != 2 {
		t.Errorf("expected 2 venue types, got %v", search.gotFilters.VenueTypes)
	}
	if len(search.gotFilters.Genders) != 1 || search.gotFilters.Genders[0] != domain.GenderWomens {
		t.Errorf("expected womens gender filter, got %v", search.gotFilters.Genders)
	}
	if !search.gotFilters.OpenNow {
		t.Error("expected open_now filter to be set")
	}
}

func TestNearbyVenues_PayloadShape(t *testing.T) {
	search := &mockSearchService{
		results: []domain.VenueResult{
			{
				ID:              uuid.New(),
				Name:            "Test Cafe",
				VenueType:       domain.VenueCafe,
				DistanceMeters:  1609.344,
				DistanceDisplay: "1.0 mi",
				IsOpen:          true,
				Stations:        []domain.Station{{ID: uuid.New(), Gender: domain.GenderAllGender, Status: domain.StatusVerifiedPresent}},
			},
		},
	}
	srv := setupTestServer(search, &mockVenueService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/venues/nearby?lat=40.7&lng=-74.0")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Venues []struct {
			Name            string  `json:"name"`
			DistanceMeters  float64 `json:"distance_m"`
			DistanceDisplay string  `json:"distance_display"`
			IsOpen          bool    `json:"is_open"`
			Stations        []struct {
				Status string `json:"status"`
			} `json:"stations"`
		} `json:"venues"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if len(payload.Venues) != 1 {
		t.Fatalf("expected 1 venue, got %d", len(payload.Venues))
	}
	v := payload.Venues[0]
	if v.Name != "Test Cafe" || v.DistanceDisplay != "1.0 mi" || !v.IsOpen {
		t.Errorf("unexpected venue payload: %+v", v)
	}
	if len(v.Stations) != 1 || v.Stations[0].Status != "verified_present" {
		t.Errorf("unexpected stations payload: %+v", v.Stations)
	}
}

func TestGetVenue_InvalidID(t *testing.T) {
	srv := setupTestServer(&mockSearchService{}, &mockVenueService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/venues/not-a-uuid")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid uuid, got %d", resp.StatusCode)
	}
}

func TestGetVenue_NotFound(t *testing.T) {
	srv := setupTestServer(&mockSearchService{}, &mockVenueService{detail: nil})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/venues/" + uuid.NewString())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown venue, got %d", resp.StatusCode)
	}
}
