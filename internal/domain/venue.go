package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type VenueType string

const (
	VenueCafe       VenueType = "cafe"
	VenueRestaurant VenueType = "restaurant"
	VenuePark       VenueType = "park"
	VenueStore      VenueType = "store"
	VenueLibrary    VenueType = "library"
	VenueMall       VenueType = "mall"
	VenueGasStation VenueType = "gas_station"
	VenueOther      VenueType = "other"
)

func ParseVenueType(s string) (VenueType, bool) {
	switch VenueType(s) {
	case VenueCafe, VenueRestaurant, VenuePark, VenueStore, VenueLibrary, VenueMall, VenueGasStation, VenueOther:
		return VenueType(s), true
	default:
		return "", false
	}
}

// DayHours is a single day's open/close pair in 24-hour "HH:MM" wall-clock
// strings. Close may be numerically <= Open, which encodes a window crossing
// midnight (open 18:00, close 02:00 the next day).
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// HoursJSON maps lowercase weekday names to that day's hours. A missing key
// or nil value means closed that day. A nil or empty map means no hours data
// at all, which is distinct from closed-all-week.
type HoursJSON map[string]*DayHours

// Weekdays is the frozen day-name vocabulary, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type Venue struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	VenueType VenueType  `json:"venue_type"`
	PlaceID   *string    `json:"place_id,omitempty"`
	Hours     HoursJSON  `json:"hours,omitempty"`
	CreatedBy *int64     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Gender string

const (
	GenderMens      Gender = "mens"
	GenderWomens    Gender = "womens"
	GenderAllGender Gender = "all_gender"
)

func ParseGender(s string) (Gender, bool) {
	switch Gender(s) {
	case GenderMens, GenderWomens, GenderAllGender:
		return Gender(s), true
	default:
		return "", false
	}
}

type StationStatus string

const (
	StatusVerifiedPresent StationStatus = "verified_present"
	// StatusVerifiedAbsent must never reach public-facing reads; repos
	// exclude it at fetch time.
	StatusVerifiedAbsent StationStatus = "verified_absent"
	StatusUnverified     StationStatus = "unverified"
)

func ParseStationStatus(s string) (StationStatus, bool) {
	switch StationStatus(s) {
	case StatusVerifiedPresent, StatusVerifiedAbsent, StatusUnverified:
		return StationStatus(s), true
	default:
		return "", false
	}
}

// Station is a single changing-station record at a venue.
type Station struct {
	ID            uuid.UUID     `json:"id"`
	VenueID       uuid.UUID     `json:"venue_id"`
	Gender        Gender        `json:"gender"`
	Status        StationStatus `json:"status"`
	Floor         *string       `json:"floor,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	UpvoteCount   int           `json:"upvote_count"`
	DownvoteCount int           `json:"downvote_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type CreateVenueRequest struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	VenueType string    `json:"venue_type"`
	PlaceID   *string   `json:"place_id,omitempty"`
	Hours     HoursJSON `json:"hours,omitempty"`
}

func (r *CreateVenueRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.VenueType = strings.ToLower(strings.TrimSpace(r.VenueType))
}

func (r *CreateVenueRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("lng must be between -180 and 180")
	}
	if _, ok := ParseVenueType(r.VenueType); !ok {
		return fmt.Errorf("invalid venue_type")
	}
	return nil
}

type UpdateVenueRequest struct {
	Name      *string    `json:"name,omitempty"`
	Address   *string    `json:"address,omitempty"`
	VenueType *string    `json:"venue_type,omitempty"`
	Hours     *HoursJSON `json:"hours,omitempty"`
}

func (r *UpdateVenueRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if r.VenueType != nil {
		if _, ok := ParseVenueType(*r.VenueType); !ok {
			return fmt.Errorf("invalid venue_type")
		}
	}
	return nil
}

type CreateStationRequest struct {
	Gender string  `json:"gender"`
	Floor  *string `json:"floor,omitempty"`
	Notes  string  `json:"notes,omitempty"`
}

func (r *CreateStationRequest) Validate() error {
	if _, ok := ParseGender(strings.ToLower(strings.TrimSpace(r.Gender))); !ok {
		return fmt.Errorf("invalid gender")
	}
	return nil
}

type UpdateStationRequest struct {
	Gender *string `json:"gender,omitempty"`
	Status *string `json:"status,omitempty"`
	Floor  *string `json:"floor,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (r *UpdateStationRequest) Validate() error {
	if r.Gender != nil {
		if _, ok := ParseGender(*r.Gender); !ok {
			return fmt.Errorf("invalid gender")
		}
	}
	if r.Status != nil {
		if _, ok := ParseStationStatus(*r.Status); !ok {
			return fmt.Errorf("invalid status")
		}
	}
	return nil
}
