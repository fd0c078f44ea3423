package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

type StationRepository interface {
	Create(ctx context.Context, venueID uuid.UUID, req *domain.CreateStationRequest) (*domain.Station, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Station, error)
	ListVisibleByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Station, error)
	Update(ctx context.Context, id uuid.UUID, req *domain.UpdateStationRequest) (*domain.Station, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.StationStatus) error
	UpsertVote(ctx context.Context, stationID uuid.UUID, userID int64, value int) error
	DeleteVote(ctx context.Context, stationID uuid.UUID, userID int64) error
}

type stationRepository struct {
	pool *pgxpool.Pool
}

func NewStationRepository(pool *pgxpool.Pool) StationRepository {
	return &stationRepository{pool: pool}
}

const stationCols = `id, venue_id, gender, status, floor, notes, upvote_count, downvote_count, created_at, updated_at`

func scanStation(row pgx.Row) (*domain.Station, error) {
	var s domain.Station
	err := row.Scan(
		&s.ID, &s.VenueID, &s.Gender, &s.Status, &s.Floor, &s.Notes,
		&s.UpvoteCount, &s.DownvoteCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stationRepository) Create(ctx context.Context, venueID uuid.UUID, req *domain.CreateStationRequest) (*domain.Station, error) {
	const q = `INSERT INTO stations (venue_id, gender, status, floor, notes)
	VALUES ($1,$2,'unverified',$3,$4)
	RETURNING ` + stationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanStation(r.pool.QueryRow(ctx, q, venueID, req.Gender, req.Floor, req.Notes))
}

// GetByID never returns a verified_absent station; those are invisible to
// all public reads by contract.
func (r *stationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Station, error) {
	const q = `SELECT ` + stationCols + ` FROM stations WHERE id=$1 AND status <> 'verified_absent'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanStation(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *stationRepository) ListVisibleByVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Station, error) {
	const q = `SELECT ` + stationCols + ` FROM stations
	WHERE venue_id=$1 AND status <> 'verified_absent'
	ORDER BY created_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(
			&s.ID, &s.VenueID, &s.Gender, &s.Status, &s.Floor, &s.Notes,
			&s.UpvoteCount, &s.DownvoteCount, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

func (r *stationRepository) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateStationRequest) (*domain.Station, error) {
	const q = `UPDATE stations
	SET gender = COALESCE($2, gender),
	    status = COALESCE($3, status),
	    floor = COALESCE($4, floor),
	    notes = COALESCE($5, notes),
	    updated_at = now()
	WHERE id=$1
	RETURNING ` + stationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s, err := scanStation(r.pool.QueryRow(ctx, q, id, req.Gender, req.Status, req.Floor, req.Notes))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *stationRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.StationStatus) error {
	const q = `UPDATE stations SET status=$2, updated_at=now() WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id, status)
	return err
}

func (r *stationRepository) UpsertVote(ctx context.Context, stationID uuid.UUID, userID int64, value int) error {
	// One vote per user per station; switching direction moves both counters.
	const q = `INSERT INTO station_votes (station_id, user_id, value)
	VALUES ($1,$2,$3)
	ON CONFLICT (station_id, user_id) DO UPDATE SET value = EXCLUDED.value`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, q, stationID, userID, value); err != nil {
		return err
	}
	if err := refreshVoteCounts(ctx, tx, stationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *stationRepository) DeleteVote(ctx context.Context, stationID uuid.UUID, userID int64) error {
	const q = `DELETE FROM station_votes WHERE station_id=$1 AND user_id=$2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, q, stationID, userID); err != nil {
		return err
	}
	if err := refreshVoteCounts(ctx, tx, stationID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func refreshVoteCounts(ctx context.Context, tx pgx.Tx, stationID uuid.UUID) error {
	const q = `UPDATE stations SET
	upvote_count = (SELECT count(*) FROM station_votes WHERE station_id=$1 AND value=1),
	downvote_count = (SELECT count(*) FROM station_votes WHERE station_id=$1 AND value=-1),
	updated_at = now()
	WHERE id=$1`

	_, err := tx.Exec(ctx, q, stationID)
	return err
}
