package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

type PhotoRepository interface {
	Create(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreatePhotoRequest) (*domain.Photo, error)
	ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.Photo, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type photoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) PhotoRepository {
	return &photoRepository{pool: pool}
}

const photoCols = `id, station_id, user_id, url, content_type, size_bytes, created_at`

func (r *photoRepository) Create(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreatePhotoRequest) (*domain.Photo, error) {
	const q = `INSERT INTO photos (station_id, user_id, url, content_type, size_bytes)
	VALUES ($1,$2,$3,$4,$5)
	RETURNING ` + photoCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Photo
	err := r.pool.QueryRow(ctx, q, stationID, userID, req.URL, req.ContentType, req.SizeBytes).Scan(
		&p.ID, &p.StationID, &p.UserID, &p.URL, &p.ContentType, &p.SizeBytes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *photoRepository) ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.Photo, error) {
	const q = `SELECT ` + photoCols + ` FROM photos WHERE station_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, q, stationID)
}

// ListByVenue only surfaces photos of visible stations; photos attached to a
// verified_absent station disappear with it.
func (r *photoRepository) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Photo, error) {
	const q = `SELECT p.id, p.station_id, p.user_id, p.url, p.content_type, p.size_bytes, p.created_at
	FROM photos p
	JOIN stations s ON s.id = p.station_id
	WHERE s.venue_id=$1 AND s.status <> 'verified_absent'
	ORDER BY p.created_at DESC`
	return r.list(ctx, q, venueID)
}

func (r *photoRepository) list(ctx context.Context, q string, arg any) ([]domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.StationID, &p.UserID, &p.URL, &p.ContentType, &p.SizeBytes, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *photoRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `DELETE FROM photos WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
