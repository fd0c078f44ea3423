package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/pkg/config"
)

type mockVenueRepo struct {
	findNearby func(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.NearbyVenue, error)
}

func (m *mockVenueRepo) Create(context.Context, *domain.CreateVenueRequest, *int64) (*domain.Venue, error) {
	return nil, errors.New("not implemented")
}
func (m *mockVenueRepo) GetByID(context.Context, uuid.UUID) (*domain.Venue, error) {
	return nil, errors.New("not implemented")
}
func (m *mockVenueRepo) Update(context.Context, uuid.UUID, *domain.UpdateVenueRequest) (*domain.Venue, error) {
	return nil, errors.New("not implemented")
}
func (m *mockVenueRepo) UpdateHours(context.Context, uuid.UUID, domain.HoursJSON) error {
	return errors.New("not implemented")
}
func (m *mockVenueRepo) Delete(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}
func (m *mockVenueRepo) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.NearbyVenue, error) {
	return m.findNearby(ctx, lat, lng, radiusMeters)
}

type mockStationRepo struct {
	listVisible func(ctx context.Context, venueID uuid.UUID) ([]domain.Station, error)
}

func (m *mockStationRepo) Create(context.Context, uuid.UUID, *domain.CreateStationRequest) (*domain.Station, error) {
	return nil, errors.New("not implemented")
}
func (m *mockStationRepo) GetByID(context.Context, uuid.UUID) (*domain.Station, error) {
	return nil, errors.New("not implemented")
}
func (m *mockStationRepo) ListVisibleByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Station, error) {
	return m.listVisible(ctx, venueID)
}
func (m *mockStationRepo) Update(context.Context, uuid.UUID, *domain.UpdateStationRequest) (*domain.Station, error) {
	return nil, errors.New("not implemented")
}
func (m *mockStationRepo) SetStatus(context.Context, uuid.UUID, domain.StationStatus) error {
	return errors.New("not implemented")
}
func (m *mockStationRepo) UpsertVote(context.Context, uuid.UUID, int64, int) error {
	return errors.New("not implemented")
}
func (m *mockStationRepo) DeleteVote(context.Context, uuid.UUID, int64) error {
	return errors.New("not implemented")
}

func testSearchConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			DefaultRadiusMeters: 3000,
			MaxRadiusMeters:     40000,
			CacheTTL:            time.Minute,
		},
	}
}

func nearbyVenue(name string, vt domain.VenueType, distance float64, hrs domain.HoursJSON) domain.NearbyVenue {
	return domain.NearbyVenue{
		Venue: domain.Venue{
			ID:        uuid.New(),
			Name:      name,
			Address:   "123 Test St",
			VenueType: vt,
			Hours:     hrs,
		},
		DistanceMeters: distance,
	}
}

func station(gender domain.Gender) domain.Station {
	return domain.Station{
		ID:     uuid.New(),
		Gender: gender,
		Status: domain.StatusUnverified,
	}
}

// Monday 2024-01-01, 10:00 local time.
func mondayMorning() time.Time {
	return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
}

func alwaysOpenMonday() domain.HoursJSON {
	return domain.HoursJSON{"monday": &domain.DayHours{Open: "08:00", Close: "22:00"}}
}

func newTestSearchService(venues *mockVenueRepo, stations *mockStationRepo) *searchService {
	return &searchService{
		venueRepo:   venues,
		stationRepo: stations,
		searchCache: nil,
		config:      testSearchConfig(),
		now:         mondayMorning,
	}
}

func TestNearbyPreservesStoreOrderAndEnriches(t *testing.T) {
	venues := []domain.NearbyVenue{
		nearbyVenue("Closest Cafe", domain.VenueCafe, 402.3, alwaysOpenMonday()),
		nearbyVenue("Mid Park", domain.VenuePark, 1609.344, nil),
		nearbyVenue("Far Mall", domain.VenueMall, 4827.9, alwaysOpenMonday()),
	}

	repo := &mockVenueRepo{
		findNearby: func(_ context.Context, _, _, _ float64) ([]domain.NearbyVenue, error) {
			return venues, nil
		},
	}
	stations := &mockStationRepo{
		listVisible: func(_ context.Context, _ uuid.UUID) ([]domain.Station, error) {
			return []domain.Station{station(domain.GenderAllGender)}, nil
		},
	}

	svc := newTestSearchService(repo, stations)
	results, err := svc.Nearby(context.Background(), 40.0, -74.0, 3000, domain.SearchFilters{})
	if err != nil {
		t.Fatalf("Nearby returned error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"Closest Cafe", "Mid Park", "Far Mall"} {
		if results[i].Name != want {
			t.Errorf("result %d: expected %q, got %q", i, want, results[i].Name)
		}
	}

	if results[0].DistanceDisplay != "0.2 mi" {
		t.Errorf("expected distance display %q, got %q", "0.2 mi", results[0].DistanceDisplay)
	}
	if results[1].DistanceDisplay != "1.0 mi" {
		t.Errorf("expected distance display %q, got %q", "1.0 mi", results[1].DistanceDisplay)
	}

	if !results[0].IsOpen {
		t.Error("venue open monday morning should evaluate open")
	}
	if results[1].IsOpen {
		t.Error("venue with no hours data should evaluate closed")
	}
	if results[1].HoursToday != nil {
		t.Errorf("expected nil hours_today for venue without hours, got %+v", results[1].HoursToday)
	}
}

func TestNearbyStationFetchFailsOpen(t *testing.T) {
	good := nearbyVenue("Good", domain.VenueCafe, 100, alwaysOpenMonday())
	broken := nearbyVenue("Broken", domain.VenueCafe, 200, alwaysOpenMonday())

	repo := &mockVenueRepo{
		findNearby: func(_ context.Context, _, _, _ float64) ([]domain.NearbyVenue, error) {
			return []domain.NearbyVenue{good, broken}, nil
		},
	}
	stations := &mockStationRepo{
		listVisible: func(_ context.Context, venueID uuid.UUID) ([]domain.Station, error) {
			if venueID == broken.ID {
				return nil, errors.New("connection reset")
			}
			return []domain.Station{station(domain.GenderMens)}, nil
		},
	}

	svc := newTestSearchService(repo, stations)
	results, err := svc.Nearby(context.Background(), 40.0, -74.0, 3000, domain.SearchFilters{})
	if err != nil {
		t.Fatalf("a single failed station fetch must not fail the search: %v", err)
	}

	// The degraded venue has zero stations and is dropped by the
	// zero-station filter; the healthy one survives.
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "Good" {
		t.Errorf("expected the healthy venue, got %q", results[0].Name)
	}
}

func TestNearbyRepoErrorPropagates(t *testing.T) {
	repo := &mockVenueRepo{
		findNearby: func(_ context.Context, _, _, _ float64) ([]domain.NearbyVenue, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestSearchService(repo, &mockStationRepo{})

	if _, err := svc.Nearby(context.Background(), 40.0, -74.0, 3000, domain.SearchFilters{}); err == nil {
		t.Fatal("expected error when the venue lookup itself fails")
	}
}

func TestNearbyRadiusClamping(t *testing.T) {
	tests := []struct {
		name       string
		radius     float64
		wantRadius float64
	}{
		{"zero uses default", 0, 3000},
		{"negative uses default", -5, 3000},
		{"over max is clamped", 100000, 40000},
		{"in range passes through", 8000, 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRadius float64
			repo := &mockVenueRepo{
				findNearby: func(_ context.Context, _, _, radius float64) ([]domain.NearbyVenue, error) {
					gotRadius = radius
					return nil, nil
				},
			}
			svc := newTestSearchService(repo, &mockStationRepo{})

			if _, err := svc.Nearby(context.Background(), 40.0, -74.0, tt.radius, domain.SearchFilters{}); err != nil {
				t.Fatalf("Nearby returned error: %v", err)
			}
			if gotRadius != tt.wantRadius {
				t.Errorf("expected radius %v, got %v", tt.wantRadius, gotRadius)
			}
		})
	}
}

func resultWith(name string, vt domain.VenueType, isOpen bool, stations ...domain.Station) domain.VenueResult {
	return domain.VenueResult{
		ID:        uuid.New(),
		Name:      name,
		VenueType: vt,
		IsOpen:    isOpen,
		Stations:  stations,
	}
}

func names(results []domain.VenueResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	cafe := resultWith("Cafe", domain.VenueCafe, true, station(domain.GenderMens))
	park := resultWith("Park", domain.VenuePark, false, station(domain.GenderWomens))
	mall := resultWith("Mall", domain.VenueMall, true, station(domain.GenderAllGender))
	empty := resultWith("Empty", domain.VenueCafe, true)

	all := []domain.VenueResult{cafe, park, mall, empty}

	tests := []struct {
		name    string
		filters domain.SearchFilters
		want    []string
	}{
		{
			name:    "no filters drops only zero-station venues",
			filters: domain.SearchFilters{},
			want:    []string{"Cafe", "Park", "Mall"},
		},
		{
			name:    "venue type",
			filters: domain.SearchFilters{VenueTypes: []domain.VenueType{domain.VenuePark}},
			want:    []string{"Park"},
		},
		{
			name:    "multiple venue types",
			filters: domain.SearchFilters{VenueTypes: []domain.VenueType{domain.VenueCafe, domain.VenueMall}},
			want:    []string{"Cafe", "Mall"},
		},
		{
			name:    "open now",
			filters: domain.SearchFilters{OpenNow: true},
			want:    []string{"Cafe", "Mall"},
		},
		{
			name:    "gender match",
			filters: domain.SearchFilters{Genders: []domain.Gender{domain.GenderMens}},
			want:    []string{"Cafe", "Mall"},
		},
		{
			name:    "all_gender station satisfies any gender filter",
			filters: domain.SearchFilters{Genders: []domain.Gender{domain.GenderWomens}},
			want:    []string{"Park", "Mall"},
		},
		{
			name: "filters combine with AND",
			filters: domain.SearchFilters{
				VenueTypes: []domain.VenueType{domain.VenueCafe, domain.VenuePark},
				Genders:    []domain.Gender{domain.GenderWomens},
				OpenNow:    true,
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(ApplyFilters(all, tt.filters))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplyFiltersIdempotent(t *testing.T) {
	results := []domain.VenueResult{
		resultWith("Cafe", domain.VenueCafe, true, station(domain.GenderMens)),
		resultWith("Mall", domain.VenueMall, false, station(domain.GenderAllGender)),
		resultWith("Empty", domain.VenuePark, true),
	}
	filters := domain.SearchFilters{Genders: []domain.Gender{domain.GenderMens}}

	once := ApplyFilters(results, filters)
	twice := ApplyFilters(once, filters)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering is not idempotent: %v then %v", names(once), names(twice))
	}
}

func TestApplyFiltersPreservesOrder(t *testing.T) {
	results := []domain.VenueResult{
		resultWith("A", domain.VenueCafe, true, station(domain.GenderMens)),
		resultWith("B", domain.VenueCafe, true, station(domain.GenderMens)),
		resultWith("C", domain.VenueCafe, true, station(domain.GenderMens)),
	}

	got := names(ApplyFilters(results, domain.SearchFilters{VenueTypes: []domain.VenueType{domain.VenueCafe}}))
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("filter reordered results: %v", got)
	}
}
