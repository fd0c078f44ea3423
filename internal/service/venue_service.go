package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/geo"
	"github.com/diaperpal/diaperpal-api/internal/hours"
	"github.com/diaperpal/diaperpal-api/internal/platform/places"
	"github.com/diaperpal/diaperpal-api/internal/repo/postgres"
	"github.com/diaperpal/diaperpal-api/pkg/config"
	"github.com/diaperpal/diaperpal-api/pkg/events"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

type VenueService interface {
	Create(ctx context.Context, req *domain.CreateVenueRequest, createdBy *int64) (*domain.Venue, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.VenueDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVenueRequest) (*domain.Venue, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	RefreshHours(ctx context.Context, id uuid.UUID) (domain.HoursJSON, error)
	CreateStation(ctx context.Context, venueID uuid.UUID, req *domain.CreateStationRequest) (*domain.Station, error)
	UpdateStation(ctx context.Context, id uuid.UUID, req *domain.UpdateStationRequest) (*domain.Station, error)
	GetStation(ctx context.Context, id uuid.UUID) (*domain.Station, error)
	ListVenuePhotos(ctx context.Context, venueID uuid.UUID) ([]domain.Photo, error)
}

type venueService struct {
	venueRepo   postgres.VenueRepository
	stationRepo postgres.StationRepository
	photoRepo   postgres.PhotoRepository
	placesAPI   places.Client
	eventBus    events.EventBus
	config      *config.Config
	now         func() time.Time
}

func NewVenueService(
	venueRepo postgres.VenueRepository,
	stationRepo postgres.StationRepository,
	photoRepo postgres.PhotoRepository,
	placesAPI places.Client,
	eventBus events.EventBus,
	cfg *config.Config,
) VenueService {
	return &venueService{
		venueRepo:   venueRepo,
		stationRepo: stationRepo,
		photoRepo:   photoRepo,
		placesAPI:   placesAPI,
		eventBus:    eventBus,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *venueService) Create(ctx context.Context, req *domain.CreateVenueRequest, createdBy *int64) (*domain.Venue, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// A known place_id lets the provider fill in the hours the submitter
	// didn't type. Provider failure is not fatal to venue creation.
	if req.PlaceID != nil && len(req.Hours) == 0 && s.placesAPI != nil {
		if details, err := s.placesAPI.GetDetails(ctx, *req.PlaceID); err != nil {
			logger.WarnContext(ctx, "Places lookup failed, creating venue without hours", "place_id", *req.PlaceID, "error", err)
		} else {
			req.Hours = hours.ParseWeekdayText(details.WeekdayText)
			if d := geo.Haversine(req.Lat, req.Lng, details.Location.Lat, details.Location.Lng); d > 500 {
				logger.WarnContext(ctx, "Submitted coordinates far from provider location",
					"place_id", *req.PlaceID, "distance_m", d)
			}
		}
	}

	venue, err := s.venueRepo.Create(ctx, req, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	event := events.VenueCreatedEvent{
		VenueID:   venue.ID.String(),
		Name:      venue.Name,
		VenueType: string(venue.VenueType),
		Lat:       venue.Lat,
		Lng:       venue.Lng,
		CreatedAt: venue.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.VenueCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish venue created event", "error", err, "venue_id", venue.ID)
	}

	return venue, nil
}

func (s *venueService) Get(ctx context.Context, id uuid.UUID) (*domain.VenueDetail, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, nil
	}

	// Stations degrade to empty on fetch failure, same policy as search.
	stations, err := s.stationRepo.ListVisibleByVenue(ctx, id)
	if err != nil {
		logger.WarnContext(ctx, "Station fetch degraded to empty", "venue_id", id, "error", err)
		stations = nil
	}

	now := s.now()
	status := hours.Evaluate(venue.Hours, now)
	return &domain.VenueDetail{
		Venue:      *venue,
		IsOpen:     status.IsOpen,
		HoursToday: status.HoursToday,
		Week:       hours.FormatWeek(venue.Hours, now),
		Stations:   stations,
	}, nil
}

func (s *venueService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVenueRequest) (*domain.Venue, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.venueRepo.Update(ctx, id, req)
}

func (s *venueService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.venueRepo.Delete(ctx, id)
}

// RefreshHours re-fetches provider details and re-parses the weekly hours
// text into the canonical model.
func (s *venueService) RefreshHours(ctx context.Context, id uuid.UUID) (domain.HoursJSON, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, fmt.Errorf("venue not found")
	}
	if venue.PlaceID == nil {
		return nil, fmt.Errorf("venue has no place_id to refresh from")
	}
	if s.placesAPI == nil {
		return nil, fmt.Errorf("places provider not configured")
	}

	details, err := s.placesAPI.GetDetails(ctx, *venue.PlaceID)
	if err != nil {
		return nil, fmt.Errorf("places lookup failed: %w", err)
	}

	parsed := hours.ParseWeekdayText(details.WeekdayText)
	if err := s.venueRepo.UpdateHours(ctx, id, parsed); err != nil {
		return nil, fmt.Errorf("failed to store refreshed hours: %w", err)
	}

	event := events.VenueHoursRefreshedEvent{
		VenueID:     id.String(),
		DaysParsed:  len(parsed),
		RefreshedAt: s.now(),
	}
	if err := s.eventBus.Publish(ctx, events.VenueHoursRefresh, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish hours refreshed event", "error", err, "venue_id", id)
	}

	return parsed, nil
}

func (s *venueService) CreateStation(ctx context.Context, venueID uuid.UUID, req *domain.CreateStationRequest) (*domain.Station, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, fmt.Errorf("venue not found")
	}

	station, err := s.stationRepo.Create(ctx, venueID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.StationCreated, map[string]string{
		"station_id": station.ID.String(),
		"venue_id":   venueID.String(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish station created event", "error", err, "station_id", station.ID)
	}

	return station, nil
}

func (s *venueService) UpdateStation(ctx context.Context, id uuid.UUID, req *domain.UpdateStationRequest) (*domain.Station, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.stationRepo.Update(ctx, id, req)
}

func (s *venueService) GetStation(ctx context.Context, id uuid.UUID) (*domain.Station, error) {
	return s.stationRepo.GetByID(ctx, id)
}

func (s *venueService) ListVenuePhotos(ctx context.Context, venueID uuid.UUID) ([]domain.Photo, error) {
	return s.photoRepo.ListByVenue(ctx, venueID)
}
