package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

type MaintenanceService interface {
	RemoveValueUniqueConstraint(ctx context.Context) error
	// OptimizeIndexes creates the secondary indexes that do not exist yet
	// and returns how many were created.
	OptimizeIndexes(ctx context.Context) (int, error)
	CheckHealth(ctx context.Context) (model.HealthReport, error)
	OptimizeDatabase(ctx context.Context) (model.DatabaseReport, error)
}

type maintenanceService struct {
	logger          *slog.Logger
	health          db.HealthChecker
	barcodeRepo     repository.BarcodeRepository
	maintenanceRepo repository.MaintenanceRepository
	indexes         []repository.IndexDefinition
}

func NewMaintenanceService(
	logger *slog.Logger,
	health db.HealthChecker,
	barcodeRepo repository.BarcodeRepository,
	maintenanceRepo repository.MaintenanceRepository,
) MaintenanceService {
	return &maintenanceService{
		logger:          logger,
		health:          health,
		barcodeRepo:     barcodeRepo,
		maintenanceRepo: maintenanceRepo,
		indexes:         repository.OptimizedIndexes,
	}
}

func (s *maintenanceService) RemoveValueUniqueConstraint(ctx context.Context) error {
	if err := s.maintenanceRepo.DropValueUniqueConstraint(ctx); err != nil {
		if db.IsUndefinedObject(err) {
			return apperr.UniqueConstraintNotFoundErr.WrapParent(err)
		}
		return fmt.Errorf("maintenance repository drop value unique constraint: %w", err)
	}

	s.logger.InfoContext(ctx, "unique constraint on barcode value removed")

	return nil
}

func (s *maintenanceService) OptimizeIndexes(ctx context.Context) (int, error) {
	created := 0
	for _, index := range s.indexes {
		err := s.maintenanceRepo.CreateIndex(ctx, index)
		switch {
		case err == nil:
			created++
			s.logger.InfoContext(ctx, "index created", slog.String("index", index.Name))
		case db.IsAlreadyExists(err):
			s.logger.DebugContext(ctx, "index already exists", slog.String("index", index.Name))
		default:
			return created, fmt.Errorf("maintenance repository create index %s: %w", index.Name, err)
		}
	}

	return created, nil
}

// CheckHealth pings the database and times an uncached count query.
func (s *maintenanceService) CheckHealth(ctx context.Context) (model.HealthReport, error) {
	if _, err := s.health.IsHealthy(ctx); err != nil {
		return model.HealthReport{}, fmt.Errorf("db is healthy: %w", err)
	}

	start := time.Now()
	total, err := s.barcodeRepo.CountBarcodes(ctx)
	if err != nil {
		return model.HealthReport{}, fmt.Errorf("barcode repository count barcodes: %w", err)
	}

	return model.HealthReport{
		TotalBarcodes: total,
		QueryTime:     time.Since(start),
		CheckedAt:     time.Now(),
	}, nil
}

func (s *maintenanceService) OptimizeDatabase(ctx context.Context) (model.DatabaseReport, error) {
	if err := s.maintenanceRepo.Vacuum(ctx); err != nil {
		return model.DatabaseReport{}, fmt.Errorf("maintenance repository vacuum: %w", err)
	}
	if err := s.maintenanceRepo.Analyze(ctx); err != nil {
		return model.DatabaseReport{}, fmt.Errorf("maintenance repository analyze: %w", err)
	}

	stats, err := s.maintenanceRepo.GetTableStats(ctx)
	if err != nil {
		return model.DatabaseReport{}, fmt.Errorf("maintenance repository get table stats: %w", err)
	}

	indexes, err := s.maintenanceRepo.ListIndexes(ctx)
	if err != nil {
		return model.DatabaseReport{}, fmt.Errorf("maintenance repository list indexes: %w", err)
	}

	s.logger.InfoContext(ctx, "database optimized",
		slog.Int64("table_rows", stats.EstimatedRows),
		slog.Int("index_count", len(indexes)),
	)

	return model.DatabaseReport{
		Stats:   stats,
		Indexes: indexes,
	}, nil
}
