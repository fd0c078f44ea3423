package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diaperpal/diaperpal-api/internal/domain"
	"github.com/diaperpal/diaperpal-api/internal/repo/postgres"
	"github.com/diaperpal/diaperpal-api/pkg/events"
	"github.com/diaperpal/diaperpal-api/pkg/logger"
)

type ReportService interface {
	CreateReport(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreateReportRequest) (*domain.Report, error)
	ListReports(ctx context.Context, stationID uuid.UUID, limit, offset int) ([]domain.Report, error)
	Vote(ctx context.Context, stationID uuid.UUID, userID int64, value int) error
	Unvote(ctx context.Context, stationID uuid.UUID, userID int64) error
	AddPhoto(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreatePhotoRequest) (*domain.Photo, error)
	ListStationPhotos(ctx context.Context, stationID uuid.UUID) ([]domain.Photo, error)
}

type reportService struct {
	reportRepo  postgres.ReportRepository
	stationRepo postgres.StationRepository
	photoRepo   postgres.PhotoRepository
	eventBus    events.EventBus
	now         func() time.Time
}

func NewReportService(
	reportRepo postgres.ReportRepository,
	stationRepo postgres.StationRepository,
	photoRepo postgres.PhotoRepository,
	eventBus events.EventBus,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		stationRepo: stationRepo,
		photoRepo:   photoRepo,
		eventBus:    eventBus,
		now:         time.Now,
	}
}

// CreateReport records a user observation. Present and absent reports flip
// the station's verification status; an absent verdict makes the station
// invisible to all public reads from that point on.
func (s *reportService) CreateReport(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreateReportRequest) (*domain.Report, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	station, err := s.stationRepo.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, fmt.Errorf("station not found")
	}

	report, err := s.reportRepo.Create(ctx, stationID, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	var newStatus domain.StationStatus
	switch domain.ReportKind(req.Kind) {
	case domain.ReportPresent:
		newStatus = domain.StatusVerifiedPresent
	case domain.ReportAbsent:
		newStatus = domain.StatusVerifiedAbsent
	}
	if newStatus != "" {
		if err := s.stationRepo.SetStatus(ctx, stationID, newStatus); err != nil {
			logger.ErrorContext(ctx, "Failed to update station status from report", "error", err, "station_id", stationID)
		} else if err := s.eventBus.Publish(ctx, events.StationVerified, events.StationVerifiedEvent{
			StationID:  stationID.String(),
			VenueID:    station.VenueID.String(),
			Status:     string(newStatus),
			VerifiedAt: s.now(),
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to publish station verified event", "error", err, "station_id", stationID)
		}
	}

	if err := s.eventBus.Publish(ctx, events.ReportCreated, events.ReportCreatedEvent{
		ReportID:  report.ID.String(),
		StationID: stationID.String(),
		Kind:      string(report.Kind),
		CreatedAt: report.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish report created event", "error", err, "report_id", report.ID)
	}

	return report, nil
}

func (s *reportService) ListReports(ctx context.Context, stationID uuid.UUID, limit, offset int) ([]domain.Report, error) {
	return s.reportRepo.ListByStation(ctx, stationID, limit, offset)
}

func (s *reportService) Vote(ctx context.Context, stationID uuid.UUID, userID int64, value int) error {
	if value != 1 && value != -1 {
		return fmt.Errorf("value must be 1 or -1")
	}

	station, err := s.stationRepo.GetByID(ctx, stationID)
	if err != nil {
		return err
	}
	if station == nil {
		return fmt.Errorf("station not found")
	}

	return s.stationRepo.UpsertVote(ctx, stationID, userID, value)
}

func (s *reportService) Unvote(ctx context.Context, stationID uuid.UUID, userID int64) error {
	return s.stationRepo.DeleteVote(ctx, stationID, userID)
}

func (s *reportService) AddPhoto(ctx context.Context, stationID uuid.UUID, userID *int64, req *domain.CreatePhotoRequest) (*domain.Photo, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	station, err := s.stationRepo.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if station == nil {
		return nil, fmt.Errorf("station not found")
	}

	photo, err := s.photoRepo.Create(ctx, stationID, userID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	if err := s.eventBus.Publish(ctx, events.PhotoUploaded, events.PhotoUploadedEvent{
		PhotoID:   photo.ID.String(),
		StationID: stationID.String(),
		URL:       photo.URL,
		CreatedAt: photo.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish photo uploaded event", "error", err, "photo_id", photo.ID)
	}

	return photo, nil
}

func (s *reportService) ListStationPhotos(ctx context.Context, stationID uuid.UUID) ([]domain.Photo, error) {
	return s.photoRepo.ListByStation(ctx, stationID)
}
