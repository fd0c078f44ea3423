package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaperpal/diaperpal-api/internal/domain"
)

type ReportRepository interface {
	Create(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreateReportRequest) (*domain.Report, error)
	ListByStation(ctx context.Context, stationID uuid.UUID, limit, offset int) ([]domain.Report, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportCols = `id, station_id, user_id, kind, comment, created_at`

func (r *reportRepository) Create(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreateReportRequest) (*domain.Report, error) {
	const q = `INSERT INTO reports (station_id, user_id, kind, comment)
	VALUES ($1,$2,$3,$4)
	RETURNING ` + reportCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rep domain.Report
	err := r.pool.QueryRow(ctx, q, stationID, userID, req.Kind, req.Comment).Scan(
		&rep.ID, &rep.StationID, &rep.UserID, &rep.Kind, &rep.Comment, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) ListByStation(ctx context.Context, stationID uuid.UUID, limit, offset int) ([]domain.Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + reportCols + ` FROM reports
	WHERE station_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, stationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(&rep.ID, &rep.StationID, &rep.UserID, &rep.Kind, &rep.Comment, &rep.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
