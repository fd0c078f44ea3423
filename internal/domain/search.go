package domain

import (
	"time"

	"github.com/google/uuid"
)

// NearbyVenue is a venue row as returned by the find_nearby_venues database
// function: the venue columns plus the computed distance in meters.
type NearbyVenue struct {
	Venue
	DistanceMeters float64 `json:"distance_m"`
}

// VenueWithStations is a nearby venue with its visible stations attached,
// before open/closed evaluation and filtering. This is the shape the search
// cache stores: evaluation is derived per request and never cached.
type VenueWithStations struct {
	NearbyVenue
	Stations         []Station `json:"stations"`
	StationsDegraded bool      `json:"stations_degraded"`
}

// SearchFilters are the user-specified post-fetch filters for nearby search.
// Empty sets mean "no filtering on that axis".
type SearchFilters struct {
	VenueTypes []VenueType
	Genders    []Gender
	OpenNow    bool
}

// VenueResult is the enriched search payload returned to the client. Stations
// never include verified_absent entries; that status is excluded at fetch
// time and must not reach this type.
type VenueResult struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	Lat             float64    `json:"lat"`
	Lng             float64    `json:"lng"`
	VenueType       VenueType  `json:"venue_type"`
	DistanceMeters  float64    `json:"distance_m"`
	DistanceDisplay string     `json:"distance_display"`
	IsOpen          bool       `json:"is_open"`
	HoursToday      *DayHours  `json:"hours_today"`
	Stations        []Station  `json:"stations"`
	StationsDegraded bool      `json:"-"`
}

// DaySchedule is one row of the weekly hours display.
type DaySchedule struct {
	Day     string `json:"day"`
	Open    string `json:"open,omitempty"`
	Close   string `json:"close,omitempty"`
	Closed  bool   `json:"closed"`
	IsToday bool   `json:"is_today"`
}

// VenueDetail is the single-venue payload with the full week rendered.
type VenueDetail struct {
	Venue
	IsOpen     bool          `json:"is_open"`
	HoursToday *DayHours     `json:"hours_today"`
	Week       []DaySchedule `json:"week"`
	Stations   []Station     `json:"stations"`
}

type Photo struct {
	ID          uuid.UUID `json:"id"`
	StationID   uuid.UUID `json:"station_id"`
	UserID      *int64    `json:"user_id,omitempty"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}
