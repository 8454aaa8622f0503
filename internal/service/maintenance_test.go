package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository/repositorytest"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db/dbtest"
)

type maintenanceFixture struct {
	db              *dbtest.DB
	barcodeRepo     *repositorytest.BarcodeRepository
	maintenanceRepo *repositorytest.MaintenanceRepository
	svc             service.MaintenanceService
}

func newMaintenanceFixture() maintenanceFixture {
	f := maintenanceFixture{
		db:              dbtest.New(),
		barcodeRepo:     repositorytest.NewBarcodeRepository(),
		maintenanceRepo: repositorytest.NewMaintenanceRepository(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = service.NewMaintenanceService(logger, f.db, f.barcodeRepo, f.maintenanceRepo)

	return f
}

func TestRemoveValueUniqueConstraint(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture()

	require.NoError(t, f.svc.RemoveValueUniqueConstraint(ctx))
	assert.True(t, f.maintenanceRepo.Dropped)

	f.maintenanceRepo.Err = &pgconn.PgError{Code: db.PgErrUndefinedObject}
	err := f.svc.RemoveValueUniqueConstraint(ctx)
	assert.ErrorIs(t, err, apperr.UniqueConstraintNotFoundErr)

	f.maintenanceRepo.Err = errors.New("permission denied")
	err = f.svc.RemoveValueUniqueConstraint(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.UniqueConstraintNotFoundErr)
}

func TestOptimizeIndexes(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture()

	f.maintenanceRepo.CreateIndexErrs[repository.OptimizedIndexes[0].Name] = &pgconn.PgError{Code: db.PgErrDuplicateTable}

	created, err := f.svc.OptimizeIndexes(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(repository.OptimizedIndexes)-1, created)
	assert.NotContains(t, f.maintenanceRepo.Created, repository.OptimizedIndexes[0].Name)
}

func TestOptimizeIndexesAbortsOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture()

	f.maintenanceRepo.CreateIndexErrs[repository.OptimizedIndexes[1].Name] = errors.New("disk full")

	created, err := f.svc.OptimizeIndexes(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, created)
	assert.Len(t, f.maintenanceRepo.Created, 1)
}

func TestCheckHealth(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture()

	_, err := f.barcodeRepo.CreateBarcode(ctx, model.Barcode{Value: "H-1", Type: model.BarcodeTypeQR, Status: model.BarcodeStatusActive})
	require.NoError(t, err)

	report, err := f.svc.CheckHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalBarcodes)
	assert.False(t, report.CheckedAt.IsZero())
	assert.GreaterOrEqual(t, report.QueryTime.Nanoseconds(), int64(0))

	f.db.PingErr = errors.New("connection refused")
	_, err = f.svc.CheckHealth(ctx)
	assert.Error(t, err)
}

func TestOptimizeDatabase(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture()

	f.maintenanceRepo.Stats = model.TableStats{EstimatedRows: 10, DataSizeMB: 0.5, IndexSizeMB: 0.25}
	f.maintenanceRepo.Indexes = []string{"barcodes_pkey", "idx_barcodes_barcode_type"}

	report, err := f.svc.OptimizeDatabase(ctx)
	require.NoError(t, err)
	assert.True(t, f.maintenanceRepo.Vacuumed)
	assert.True(t, f.maintenanceRepo.Analyzed)
	assert.Equal(t, int64(10), report.Stats.EstimatedRows)
	assert.Equal(t, []string{"barcodes_pkey", "idx_barcodes_barcode_type"}, report.Indexes)

	f.maintenanceRepo.Err = errors.New("vacuum failed")
	_, err = f.svc.OptimizeDatabase(ctx)
	assert.Error(t, err)
}
