package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
	"github.com/tuanvumaihuynh/barcode-server/pkg/ptr"
)

// openTestDB connects to the database named by BARCODE_TEST_POSTGRES_URL,
// applies migrations and empties the barcodes table.
func openTestDB(t *testing.T) (*pgxpool.Pool, *db.Client) {
	t.Helper()

	url := os.Getenv("BARCODE_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("BARCODE_TEST_POSTGRES_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))

	_, err = pool.Exec(ctx, `TRUNCATE barcodes RESTART IDENTITY`)
	require.NoError(t, err)

	return pool, db.NewClient(pool)
}

func newBarcode(value string, barcodeType model.BarcodeType) model.Barcode {
	return model.Barcode{
		Value:     value,
		Type:      barcodeType,
		Status:    model.BarcodeStatusActive,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestBarcodeRepositoryCreateAndGet(t *testing.T) {
	_, client := openTestDB(t)
	repo := repository.NewBarcodeRepository(client)
	ctx := context.Background()

	in := newBarcode("8801234567890", model.BarcodeTypeEAN13)
	in.ProductModel = ptr.New("Galaxy S24")
	in.Category = ptr.New("phones")

	created, err := repo.CreateBarcode(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, in.Value, created.Value)
	assert.Equal(t, "Galaxy S24", *created.ProductModel)
	assert.True(t, in.CreatedAt.Equal(created.CreatedAt))
	assert.Nil(t, created.UpdatedAt)

	byID, err := repo.GetBarcodeByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Value, byID.Value)

	byValue, err := repo.GetBarcodeByValue(ctx, in.Value)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byValue.ID)

	_, err = repo.GetBarcodeByID(ctx, created.ID+1000)
	assert.ErrorIs(t, err, repository.ErrBarcodeNotFound)

	_, err = repo.CreateBarcode(ctx, in)
	assert.ErrorIs(t, err, repository.ErrBarcodeValueTaken)
}

func TestBarcodeRepositoryCreateBarcodesIsAllOrNothing(t *testing.T) {
	_, client := openTestDB(t)
	repo := repository.NewBarcodeRepository(client)
	ctx := context.Background()

	n, err := repo.CreateBarcodes(ctx, []model.Barcode{
		newBarcode("A-1", model.BarcodeTypeCode128),
		newBarcode("A-2", model.BarcodeTypeQR),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.CreateBarcodes(ctx, []model.Barcode{
		newBarcode("A-3", model.BarcodeTypeCode128),
		newBarcode("A-1", model.BarcodeTypeCode128),
	})
	assert.ErrorIs(t, err, repository.ErrBarcodeValueTaken)

	count, err := repo.CountBarcodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBarcodeRepositoryFilters(t *testing.T) {
	_, client := openTestDB(t)
	repo := repository.NewBarcodeRepository(client)
	ctx := context.Background()

	a := newBarcode("F-1", model.BarcodeTypeQR)
	a.ProductModel = ptr.New("iPhone 15 Pro")
	a.Category = ptr.New("phones")
	b := newBarcode("F-2", model.BarcodeTypeQR)
	b.ProductModel = ptr.New("Pixel 8")
	b.Status = model.BarcodeStatusInactive
	c := newBarcode("F-3", model.BarcodeTypeUPC)
	c.ProductModel = ptr.New("100%_cotton")

	_, err := repo.CreateBarcodes(ctx, []model.Barcode{a, b, c})
	require.NoError(t, err)

	byType, err := repo.ListBarcodesByType(ctx, model.BarcodeTypeQR)
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	countByType, err := repo.CountBarcodesByType(ctx, model.BarcodeTypeQR)
	require.NoError(t, err)
	assert.Equal(t, 2, countByType)

	byCategory, err := repo.ListBarcodesByCategory(ctx, "phones")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "F-1", byCategory[0].Value)

	byStatus, err := repo.ListBarcodesByStatus(ctx, model.BarcodeStatusInactive)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "F-2", byStatus[0].Value)

	found, err := repo.SearchBarcodesByProductModel(ctx, "IPHONE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "F-1", found[0].Value)

	literal, err := repo.SearchBarcodesByProductModel(ctx, "%_")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "F-3", literal[0].Value)

	none, err := repo.SearchBarcodesByProductModel(ctx, "nokia")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.ListAllBarcodes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := repo.ListBarcodesPage(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestBarcodeRepositoryUpdateAndDelete(t *testing.T) {
	_, client := openTestDB(t)
	repo := repository.NewBarcodeRepository(client)
	ctx := context.Background()

	created, err := repo.CreateBarcode(ctx, newBarcode("U-1", model.BarcodeTypeQR))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	created.Value = "U-1b"
	created.Type = model.BarcodeTypeAztec
	created.UpdatedAt = &now

	updated, err := repo.UpdateBarcode(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "U-1b", updated.Value)
	assert.Equal(t, model.BarcodeTypeAztec, updated.Type)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, now.Equal(*updated.UpdatedAt))

	require.NoError(t, repo.UpdateBarcodeStatus(ctx, created.ID, model.BarcodeStatusInactive))
	got, err := repo.GetBarcodeByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BarcodeStatusInactive, got.Status)

	assert.ErrorIs(t, repo.UpdateBarcodeStatus(ctx, created.ID+1, model.BarcodeStatusActive), repository.ErrBarcodeNotFound)

	created.ID += 1
	_, err = repo.UpdateBarcode(ctx, created)
	assert.ErrorIs(t, err, repository.ErrBarcodeNotFound)

	require.NoError(t, repo.DeleteBarcodeByValue(ctx, "U-1b"))
	assert.ErrorIs(t, repo.DeleteBarcodeByValue(ctx, "U-1b"), repository.ErrBarcodeNotFound)
	assert.ErrorIs(t, repo.DeleteBarcodeByID(ctx, got.ID), repository.ErrBarcodeNotFound)
}

func TestBarcodeRepositoryReadOnlyTx(t *testing.T) {
	_, client := openTestDB(t)
	repo := repository.NewBarcodeRepository(client)
	ctx := context.Background()

	err := client.WithReadOnlyTx(ctx, func(tx db.DB) error {
		_, err := repo.WithDB(tx).CreateBarcode(ctx, newBarcode("RO-1", model.BarcodeTypeQR))
		return err
	})
	assert.Error(t, err)

	count, err := repo.CountBarcodes(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
