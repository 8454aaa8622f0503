package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/internal/cache"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

const countCacheKey = "count"

func countByTypeCacheKey(barcodeType model.BarcodeType) string {
	return "count:type:" + string(barcodeType)
}

type CreateBarcodeParams struct {
	Value        string
	Type         model.BarcodeType
	ProductModel *string
	Category     *string
	// Status defaults to ACTIVE when nil.
	Status *model.BarcodeStatus
}

type UpdateBarcodeParams struct {
	ID           int64
	Value        string
	Type         model.BarcodeType
	ProductModel *string
	Category     *string
	// Status defaults to ACTIVE when nil.
	Status *model.BarcodeStatus
}

type BarcodeService interface {
	CreateBarcode(ctx context.Context, params CreateBarcodeParams) (model.Barcode, error)
	CreateBarcodes(ctx context.Context, params []CreateBarcodeParams) (int, error)
	GetBarcodeByID(ctx context.Context, id int64) (model.Barcode, error)
	GetBarcodeByValue(ctx context.Context, value string) (model.Barcode, error)
	ExistsByValue(ctx context.Context, value string) (bool, error)
	ListAllBarcodes(ctx context.Context) ([]model.Barcode, error)
	ListBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) ([]model.Barcode, error)
	ListBarcodesByCategory(ctx context.Context, category string) ([]model.Barcode, error)
	ListBarcodesByStatus(ctx context.Context, status model.BarcodeStatus) ([]model.Barcode, error)
	SearchBarcodesByProductModel(ctx context.Context, productModel string) ([]model.Barcode, error)
	ListBarcodesPage(ctx context.Context, offset, limit int) ([]model.Barcode, error)
	CountBarcodes(ctx context.Context) (int, error)
	CountBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) (int, error)
	UpdateBarcode(ctx context.Context, params UpdateBarcodeParams) (model.Barcode, error)
	UpdateBarcodeStatus(ctx context.Context, id int64, status model.BarcodeStatus) error
	DeleteBarcodeByID(ctx context.Context, id int64) error
	DeleteBarcodeByValue(ctx context.Context, value string) error
}

type barcodeService struct {
	db          db.DB
	barcodeRepo repository.BarcodeRepository
	cache       cache.Cache[string, int]
}

func NewBarcodeService(
	db db.DB,
	barcodeRepo repository.BarcodeRepository,
	cache cache.Cache[string, int],
) BarcodeService {
	return &barcodeService{
		db:          db,
		barcodeRepo: barcodeRepo,
		cache:       cache,
	}
}

func (s *barcodeService) CreateBarcode(ctx context.Context, params CreateBarcodeParams) (model.Barcode, error) {
	barcode := newBarcode(params, time.Now())

	var created model.Barcode
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		created, err = s.barcodeRepo.
			WithDB(db).
			CreateBarcode(ctx, barcode)
		if err != nil {
			return fmt.Errorf("barcode repository create barcode: %w", err)
		}

		return nil
	}); err != nil {
		return model.Barcode{}, mapRepositoryErr(fmt.Errorf("db with tx: %w", err))
	}

	s.cache.InvalidateAll()

	return created, nil
}

// CreateBarcodes stamps every barcode with the same creation time and stores
// them in one statement.
func (s *barcodeService) CreateBarcodes(ctx context.Context, params []CreateBarcodeParams) (int, error) {
	now := time.Now()
	barcodes := make([]model.Barcode, 0, len(params))
	for _, p := range params {
		barcodes = append(barcodes, newBarcode(p, now))
	}

	var inserted int64
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		inserted, err = s.barcodeRepo.
			WithDB(db).
			CreateBarcodes(ctx, barcodes)
		if err != nil {
			return fmt.Errorf("barcode repository create barcodes: %w", err)
		}

		return nil
	}); err != nil {
		return 0, mapRepositoryErr(fmt.Errorf("db with tx: %w", err))
	}

	s.cache.InvalidateAll()

	return int(inserted), nil
}

func (s *barcodeService) GetBarcodeByID(ctx context.Context, id int64) (model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) (model.Barcode, error) {
		barcode, err := repo.GetBarcodeByID(ctx, id)
		if err != nil {
			return model.Barcode{}, fmt.Errorf("barcode repository get barcode by id: %w", err)
		}
		return barcode, nil
	})
}

func (s *barcodeService) GetBarcodeByValue(ctx context.Context, value string) (model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) (model.Barcode, error) {
		barcode, err := repo.GetBarcodeByValue(ctx, value)
		if err != nil {
			return model.Barcode{}, fmt.Errorf("barcode repository get barcode by value: %w", err)
		}
		return barcode, nil
	})
}

func (s *barcodeService) ExistsByValue(ctx context.Context, value string) (bool, error) {
	_, err := s.GetBarcodeByValue(ctx, value)
	if err != nil {
		if errors.Is(err, apperr.BarcodeNotFoundErr) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *barcodeService) ListAllBarcodes(ctx context.Context) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.ListAllBarcodes(ctx)
		if err != nil {
			return nil, fmt.Errorf("barcode repository list all barcodes: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) ListBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.ListBarcodesByType(ctx, barcodeType)
		if err != nil {
			return nil, fmt.Errorf("barcode repository list barcodes by type: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) ListBarcodesByCategory(ctx context.Context, category string) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.ListBarcodesByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("barcode repository list barcodes by category: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) ListBarcodesByStatus(ctx context.Context, status model.BarcodeStatus) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.ListBarcodesByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("barcode repository list barcodes by status: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) SearchBarcodesByProductModel(ctx context.Context, productModel string) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.SearchBarcodesByProductModel(ctx, productModel)
		if err != nil {
			return nil, fmt.Errorf("barcode repository search barcodes by product model: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) ListBarcodesPage(ctx context.Context, offset, limit int) ([]model.Barcode, error) {
	return readOnly(ctx, s, func(repo repository.BarcodeRepository) ([]model.Barcode, error) {
		barcodes, err := repo.ListBarcodesPage(ctx, offset, limit)
		if err != nil {
			return nil, fmt.Errorf("barcode repository list barcodes page: %w", err)
		}
		return barcodes, nil
	})
}

func (s *barcodeService) CountBarcodes(ctx context.Context) (int, error) {
	return s.cachedCount(ctx, countCacheKey, func(repo repository.BarcodeRepository) (int, error) {
		count, err := repo.CountBarcodes(ctx)
		if err != nil {
			return 0, fmt.Errorf("barcode repository count barcodes: %w", err)
		}
		return count, nil
	})
}

func (s *barcodeService) CountBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) (int, error) {
	return s.cachedCount(ctx, countByTypeCacheKey(barcodeType), func(repo repository.BarcodeRepository) (int, error) {
		count, err := repo.CountBarcodesByType(ctx, barcodeType)
		if err != nil {
			return 0, fmt.Errorf("barcode repository count barcodes by type: %w", err)
		}
		return count, nil
	})
}

// UpdateBarcode replaces every mutable field and stamps updated_at.
func (s *barcodeService) UpdateBarcode(ctx context.Context, params UpdateBarcodeParams) (model.Barcode, error) {
	now := time.Now()
	barcode := model.Barcode{
		ID:           params.ID,
		Value:        params.Value,
		Type:         params.Type,
		ProductModel: params.ProductModel,
		Category:     params.Category,
		Status:       statusOrDefault(params.Status),
		UpdatedAt:    &now,
	}

	var updated model.Barcode
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		updated, err = s.barcodeRepo.
			WithDB(db).
			UpdateBarcode(ctx, barcode)
		if err != nil {
			return fmt.Errorf("barcode repository update barcode: %w", err)
		}

		return nil
	}); err != nil {
		return model.Barcode{}, mapRepositoryErr(fmt.Errorf("db with tx: %w", err))
	}

	s.cache.InvalidateAll()

	return updated, nil
}

// UpdateBarcodeStatus changes only the status; updated_at is left untouched.
func (s *barcodeService) UpdateBarcodeStatus(ctx context.Context, id int64, status model.BarcodeStatus) error {
	return s.write(ctx, func(repo repository.BarcodeRepository) error {
		if err := repo.UpdateBarcodeStatus(ctx, id, status); err != nil {
			return fmt.Errorf("barcode repository update barcode status: %w", err)
		}
		return nil
	})
}

func (s *barcodeService) DeleteBarcodeByID(ctx context.Context, id int64) error {
	return s.write(ctx, func(repo repository.BarcodeRepository) error {
		if err := repo.DeleteBarcodeByID(ctx, id); err != nil {
			return fmt.Errorf("barcode repository delete barcode by id: %w", err)
		}
		return nil
	})
}

func (s *barcodeService) DeleteBarcodeByValue(ctx context.Context, value string) error {
	return s.write(ctx, func(repo repository.BarcodeRepository) error {
		if err := repo.DeleteBarcodeByValue(ctx, value); err != nil {
			return fmt.Errorf("barcode repository delete barcode by value: %w", err)
		}
		return nil
	})
}

// write runs fn in its own transaction and clears the cache once it commits.
func (s *barcodeService) write(ctx context.Context, fn func(repository.BarcodeRepository) error) error {
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		return fn(s.barcodeRepo.WithDB(db))
	}); err != nil {
		return mapRepositoryErr(fmt.Errorf("db with tx: %w", err))
	}

	s.cache.InvalidateAll()

	return nil
}

func (s *barcodeService) cachedCount(ctx context.Context, key string, fn func(repository.BarcodeRepository) (int, error)) (int, error) {
	if count, ok := s.cache.Get(key); ok {
		return count, nil
	}

	count, err := readOnly(ctx, s, fn)
	if err != nil {
		return 0, err
	}

	s.cache.Set(key, count)

	return count, nil
}

func readOnly[T any](ctx context.Context, s *barcodeService, fn func(repository.BarcodeRepository) (T, error)) (T, error) {
	var result T
	if err := s.db.WithReadOnlyTx(ctx, func(db db.DB) error {
		var err error
		result, err = fn(s.barcodeRepo.WithDB(db))
		return err
	}); err != nil {
		var zero T
		return zero, mapRepositoryErr(fmt.Errorf("db with read only tx: %w", err))
	}

	return result, nil
}

func mapRepositoryErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrBarcodeNotFound):
		return apperr.BarcodeNotFoundErr.WrapParent(err)
	case errors.Is(err, repository.ErrBarcodeValueTaken):
		return apperr.BarcodeAlreadyExistsErr.WrapParent(err)
	default:
		return err
	}
}

func newBarcode(params CreateBarcodeParams, createdAt time.Time) model.Barcode {
	return model.Barcode{
		Value:        params.Value,
		Type:         params.Type,
		ProductModel: params.ProductModel,
		Category:     params.Category,
		Status:       statusOrDefault(params.Status),
		CreatedAt:    createdAt,
	}
}

func statusOrDefault(status *model.BarcodeStatus) model.BarcodeStatus {
	if status == nil {
		return model.BarcodeStatusActive
	}
	return *status
}
