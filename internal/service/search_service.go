package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diaperpal/diaperpal-api/internal/cache"
	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/geo"
	"github.com/diaperpal/diaperpal-api/internal/hours"
	"github.com/diaperpal/diaperpal-api/internal/repo/postgres"
	"github.com/diaperpal/diaperpal-api/pkg/config"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

// FetchResult is the named fail-open policy for per-venue attach fetches: a
// failed station lookup degrades to an empty list instead of aborting the
// whole search, and Degraded records that it happened so tests can assert
// the behavior deliberately.
type FetchResult[T any] struct {
	Value    []T
	Degraded bool
}

type SearchService interface {
	Nearby(ctx context.Context, lat, lng, radiusMeters float64, filters domain.SearchFilters) ([]domain.VenueResult, error)
}

type searchService struct {
	venueRepo   postgres.VenueRepository
	stationRepo postgres.StationRepository
	searchCache *cache.SearchCache
	config      *config.Config
	now         func() time.Time
}

func NewSearchService(
	venueRepo postgres.VenueRepository,
	stationRepo postgres.StationRepository,
	searchCache *cache.SearchCache,
	cfg *config.Config,
) SearchService {
	return &searchService{
		venueRepo:   venueRepo,
		stationRepo: stationRepo,
		searchCache: searchCache,
		config:      cfg,
		now:         time.Now,
	}
}

// Nearby runs the search pipeline: geospatial lookup, concurrent station
// attach, open/closed evaluation, distance formatting, then filters. The
// store returns venues nearest-first and that order is never disturbed.
// Open/closed is always evaluated against the current instant, cached fetch
// or not; it is derived per request and never stored.
func (s *searchService) Nearby(ctx context.Context, lat, lng, radiusMeters float64, filters domain.SearchFilters) ([]domain.VenueResult, error) {
	if radiusMeters <= 0 {
		radiusMeters = s.config.Search.DefaultRadiusMeters
	}
	if radiusMeters > s.config.Search.MaxRadiusMeters {
		radiusMeters = s.config.Search.MaxRadiusMeters
	}

	venues, ok := s.cachedVenues(ctx, lat, lng, radiusMeters)
	if !ok {
		var err error
		venues, err = s.fetchVenues(ctx, lat, lng, radiusMeters)
		if err != nil {
			return nil, err
		}
		if s.searchCache != nil {
			if err := s.searchCache.Set(ctx, lat, lng, radiusMeters, venues); err != nil {
				logger.WarnContext(ctx, "Failed to cache nearby results", "error", err)
			}
		}
	}

	now := s.now()
	results := make([]domain.VenueResult, 0, len(venues))
	for _, v := range venues {
		status := hours.Evaluate(v.Hours, now)
		results = append(results, domain.VenueResult{
			ID:               v.ID,
			Name:             v.Name,
			Address:          v.Address,
			Lat:              v.Lat,
			Lng:              v.Lng,
			VenueType:        v.VenueType,
			DistanceMeters:   v.DistanceMeters,
			DistanceDisplay:  geo.FormatMiles(v.DistanceMeters),
			IsOpen:           status.IsOpen,
			HoursToday:       status.HoursToday,
			Stations:         v.Stations,
			StationsDegraded: v.StationsDegraded,
		})
	}

	return ApplyFilters(results, filters), nil
}

func (s *searchService) cachedVenues(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.VenueWithStations, bool) {
	if s.searchCache == nil {
		return nil, false
	}
	return s.searchCache.Get(ctx, lat, lng, radiusMeters)
}

func (s *searchService) fetchVenues(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.VenueWithStations, error) {
	nearby, err := s.venueRepo.FindNearby(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("nearby lookup failed: %w", err)
	}

	// Station lookups are independent per venue; fan out and join. A failed
	// lookup degrades that venue to an empty station list (fail-open), which
	// the zero-station filter then drops from the result set.
	attached := make([]FetchResult[domain.Station], len(nearby))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	var mu sync.Mutex

	for i, v := range nearby {
		i, v := i, v
		g.Go(func() error {
			stations, err := s.stationRepo.ListVisibleByVenue(gctx, v.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.WarnContext(ctx, "Station fetch degraded to empty", "venue_id", v.ID, "error", err)
				attached[i] = FetchResult[domain.Station]{Degraded: true}
				return nil
			}
			attached[i] = FetchResult[domain.Station]{Value: stations}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	venues := make([]domain.VenueWithStations, 0, len(nearby))
	for i, v := range nearby {
		venues = append(venues, domain.VenueWithStations{
			NearbyVenue:      v,
			Stations:         attached[i].Value,
			StationsDegraded: attached[i].Degraded,
		})
	}
	return venues, nil
}

// ApplyFilters applies the four AND-combined nearby-search filters in order:
// zero visible stations, venue type, open-now, gender. verified_absent
// stations were already excluded at fetch time and never appear here.
func ApplyFilters(results []domain.VenueResult, filters domain.SearchFilters) []domain.VenueResult {
	typeSet := make(map[domain.VenueType]bool, len(filters.VenueTypes))
	for _, t := range filters.VenueTypes {
		typeSet[t] = true
	}
	genderSet := make(map[domain.Gender]bool, len(filters.Genders))
	for _, g := range filters.Genders {
		genderSet[g] = true
	}

	filtered := make([]domain.VenueResult, 0, len(results))
	for _, r := range results {
		if len(r.Stations) == 0 {
			continue
		}
		if len(typeSet) > 0 && !typeSet[r.VenueType] {
			continue
		}
		if filters.OpenNow && !r.IsOpen {
			continue
		}
		if len(genderSet) > 0 && !hasMatchingStation(r.Stations, genderSet) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// An all_gender station satisfies any gender filter.
func hasMatchingStation(stations []domain.Station, genderSet map[domain.Gender]bool) bool {
	for _, s := range stations {
		if s.Gender == domain.GenderAllGender || genderSet[s.Gender] {
			return true
		}
	}
	return false
}
