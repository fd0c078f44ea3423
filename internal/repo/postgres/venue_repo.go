package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

type VenueRepository interface {
	Create(ctx context.Context, req *domain.CreateVenueRequest, createdBy *int64) (*domain.Venue, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Venue, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVenueRequest) (*domain.Venue, error)
	UpdateHours(ctx context.Context, id uuid.UUID, hours domain.HoursJSON) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.NearbyVenue, error)
}

type venueRepository struct {
	pool *pgxpool.Pool
}

func NewVenueRepository(pool *pgxpool.Pool) VenueRepository {
	return &venueRepository{pool: pool}
}

const venueCols = `id, name, address, lat, lng, venue_type, place_id, hours, created_by, created_at, updated_at`

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	var v domain.Venue
	var hoursRaw []byte
	err := row.Scan(
		&v.ID, &v.Name, &v.Address, &v.Lat, &v.Lng, &v.VenueType,
		&v.PlaceID, &hoursRaw, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(hoursRaw) > 0 {
		if err := json.Unmarshal(hoursRaw, &v.Hours); err != nil {
			// Malformed stored hours degrade to no-data, never an error.
			v.Hours = nil
		}
	}
	return &v, nil
}

func marshalHours(h domain.HoursJSON) ([]byte, error) {
	if len(h) == 0 {
		return nil, nil
	}
	return json.Marshal(h)
}

func (r *venueRepository) Create(ctx context.Context, req *domain.CreateVenueRequest, createdBy *int64) (*domain.Venue, error) {
	const q = `INSERT INTO venues (name, address, lat, lng, venue_type, place_id, hours, created_by)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING ` + venueCols

	hoursRaw, err := marshalHours(req.Hours)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVenue(r.pool.QueryRow(ctx, q,
		req.Name, req.Address, req.Lat, req.Lng, req.VenueType, req.PlaceID, hoursRaw, createdBy,
	))
}

func (r *venueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Venue, error) {
	const q = `SELECT ` + venueCols + ` FROM venues WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVenue(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *venueRepository) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateVenueRequest) (*domain.Venue, error) {
	const q = `UPDATE venues
	SET name = COALESCE($2, name),
	    address = COALESCE($3, address),
	    venue_type = COALESCE($4, venue_type),
	    hours = COALESCE($5, hours),
	    updated_at = now()
	WHERE id=$1
	RETURNING ` + venueCols

	var hoursRaw []byte
	if req.Hours != nil {
		var err error
		hoursRaw, err = marshalHours(*req.Hours)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVenue(r.pool.QueryRow(ctx, q, id, req.Name, req.Address, req.VenueType, hoursRaw))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return v, err
}

func (r *venueRepository) UpdateHours(ctx context.Context, id uuid.UUID, hours domain.HoursJSON) error {
	const q = `UPDATE venues SET hours=$2, updated_at=now() WHERE id=$1`

	hoursRaw, err := marshalHours(hours)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err = r.pool.Exec(ctx, q, id, hoursRaw)
	return err
}

func (r *venueRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	// Stations, reports, votes and photos go with the venue via ON DELETE CASCADE.
	const q = `DELETE FROM venues WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// FindNearby delegates the geospatial search to the find_nearby_venues
// database function, which returns venue rows with a distance_m column
// already ordered nearest-first. That ordering is preserved downstream.
func (r *venueRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]domain.NearbyVenue, error) {
	const q = `SELECT ` + venueCols + `, distance_m FROM find_nearby_venues($1, $2, $3)`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []domain.NearbyVenue
	for rows.Next() {
		var nv domain.NearbyVenue
		var hoursRaw []byte
		if err := rows.Scan(
			&nv.ID, &nv.Name, &nv.Address, &nv.Lat, &nv.Lng, &nv.VenueType,
			&nv.PlaceID, &hoursRaw, &nv.CreatedBy, &nv.CreatedAt, &nv.UpdatedAt,
			&nv.DistanceMeters,
		); err != nil {
			return nil, err
		}
		if len(hoursRaw) > 0 {
			if err := json.Unmarshal(hoursRaw, &nv.Hours); err != nil {
				nv.Hours = nil
			}
		}
		venues = append(venues, nv)
	}
	return venues, rows.Err()
}
