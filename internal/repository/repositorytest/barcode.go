// Package repositorytest provides in-memory repositories with the same
// observable behavior as the PostgreSQL ones.
package repositorytest

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

var _ repository.BarcodeRepository = (*BarcodeRepository)(nil)

// BarcodeRepository keeps barcodes in memory and enforces value uniqueness
// unless AllowDuplicateValues is set.
type BarcodeRepository struct {
	mu       sync.Mutex
	nextID   int64
	barcodes map[int64]model.Barcode
	calls    map[string]int

	AllowDuplicateValues bool
	// Err, when set, is returned by every method.
	Err error
}

func NewBarcodeRepository() *BarcodeRepository {
	return &BarcodeRepository{
		barcodes: make(map[int64]model.Barcode),
		calls:    make(map[string]int),
	}
}

func (r *BarcodeRepository) WithDB(_ db.DB) repository.BarcodeRepository {
	return r
}

// Calls returns how many times the named method has been invoked.
func (r *BarcodeRepository) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *BarcodeRepository) CreateBarcode(_ context.Context, barcode model.Barcode) (model.Barcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["CreateBarcode"]++
	if r.Err != nil {
		return model.Barcode{}, r.Err
	}

	if r.valueTakenLocked(barcode.Value, 0) {
		return model.Barcode{}, repository.ErrBarcodeValueTaken
	}

	return r.insertLocked(barcode), nil
}

func (r *BarcodeRepository) CreateBarcodes(_ context.Context, barcodes []model.Barcode) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["CreateBarcodes"]++
	if r.Err != nil {
		return 0, r.Err
	}

	if !r.AllowDuplicateValues {
		seen := make(map[string]struct{}, len(barcodes))
		for _, b := range barcodes {
			if _, dup := seen[b.Value]; dup || r.valueTakenLocked(b.Value, 0) {
				return 0, repository.ErrBarcodeValueTaken
			}
			seen[b.Value] = struct{}{}
		}
	}

	for _, b := range barcodes {
		r.insertLocked(b)
	}

	return int64(len(barcodes)), nil
}

func (r *BarcodeRepository) GetBarcodeByID(_ context.Context, id int64) (model.Barcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["GetBarcodeByID"]++
	if r.Err != nil {
		return model.Barcode{}, r.Err
	}

	b, ok := r.barcodes[id]
	if !ok {
		return model.Barcode{}, repository.ErrBarcodeNotFound
	}
	return b, nil
}

func (r *BarcodeRepository) GetBarcodeByValue(_ context.Context, value string) (model.Barcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["GetBarcodeByValue"]++
	if r.Err != nil {
		return model.Barcode{}, r.Err
	}

	matches := r.filterLocked(func(b model.Barcode) bool { return b.Value == value })
	if len(matches) == 0 {
		return model.Barcode{}, repository.ErrBarcodeNotFound
	}
	return matches[0], nil
}

func (r *BarcodeRepository) ListAllBarcodes(_ context.Context) ([]model.Barcode, error) {
	return r.list("ListAllBarcodes", func(model.Barcode) bool { return true })
}

func (r *BarcodeRepository) ListBarcodesByType(_ context.Context, barcodeType model.BarcodeType) ([]model.Barcode, error) {
	return r.list("ListBarcodesByType", func(b model.Barcode) bool { return b.Type == barcodeType })
}

func (r *BarcodeRepository) ListBarcodesByCategory(_ context.Context, category string) ([]model.Barcode, error) {
	return r.list("ListBarcodesByCategory", func(b model.Barcode) bool {
		return b.Category != nil && *b.Category == category
	})
}

func (r *BarcodeRepository) ListBarcodesByStatus(_ context.Context, status model.BarcodeStatus) ([]model.Barcode, error) {
	return r.list("ListBarcodesByStatus", func(b model.Barcode) bool { return b.Status == status })
}

func (r *BarcodeRepository) SearchBarcodesByProductModel(_ context.Context, productModel string) ([]model.Barcode, error) {
	needle := strings.ToLower(productModel)
	return r.list("SearchBarcodesByProductModel", func(b model.Barcode) bool {
		return b.ProductModel != nil && strings.Contains(strings.ToLower(*b.ProductModel), needle)
	})
}

func (r *BarcodeRepository) ListBarcodesPage(_ context.Context, offset, limit int) ([]model.Barcode, error) {
	all, err := r.list("ListBarcodesPage", func(model.Barcode) bool { return true })
	if err != nil {
		return nil, err
	}

	if offset >= len(all) {
		return []model.Barcode{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *BarcodeRepository) UpdateBarcode(_ context.Context, barcode model.Barcode) (model.Barcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["UpdateBarcode"]++
	if r.Err != nil {
		return model.Barcode{}, r.Err
	}

	stored, ok := r.barcodes[barcode.ID]
	if !ok {
		return model.Barcode{}, repository.ErrBarcodeNotFound
	}
	if r.valueTakenLocked(barcode.Value, barcode.ID) {
		return model.Barcode{}, repository.ErrBarcodeValueTaken
	}

	barcode.CreatedAt = stored.CreatedAt
	r.barcodes[barcode.ID] = barcode
	return barcode, nil
}

func (r *BarcodeRepository) UpdateBarcodeStatus(_ context.Context, id int64, status model.BarcodeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["UpdateBarcodeStatus"]++
	if r.Err != nil {
		return r.Err
	}

	b, ok := r.barcodes[id]
	if !ok {
		return repository.ErrBarcodeNotFound
	}
	b.Status = status
	r.barcodes[id] = b
	return nil
}

func (r *BarcodeRepository) DeleteBarcodeByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["DeleteBarcodeByID"]++
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.barcodes[id]; !ok {
		return repository.ErrBarcodeNotFound
	}
	delete(r.barcodes, id)
	return nil
}

func (r *BarcodeRepository) DeleteBarcodeByValue(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["DeleteBarcodeByValue"]++
	if r.Err != nil {
		return r.Err
	}

	deleted := 0
	for id, b := range r.barcodes {
		if b.Value == value {
			delete(r.barcodes, id)
			deleted++
		}
	}
	if deleted == 0 {
		return repository.ErrBarcodeNotFound
	}
	return nil
}

func (r *BarcodeRepository) CountBarcodes(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["CountBarcodes"]++
	if r.Err != nil {
		return 0, r.Err
	}

	return len(r.barcodes), nil
}

func (r *BarcodeRepository) CountBarcodesByType(_ context.Context, barcodeType model.BarcodeType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["CountBarcodesByType"]++
	if r.Err != nil {
		return 0, r.Err
	}

	return len(r.filterLocked(func(b model.Barcode) bool { return b.Type == barcodeType })), nil
}

func (r *BarcodeRepository) list(method string, keep func(model.Barcode) bool) ([]model.Barcode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	if r.Err != nil {
		return nil, r.Err
	}

	// Newest first, like the SQL queries.
	matches := r.filterLocked(keep)
	slices.Reverse(matches)
	return matches, nil
}

// filterLocked returns matching barcodes ordered by id ascending.
func (r *BarcodeRepository) filterLocked(keep func(model.Barcode) bool) []model.Barcode {
	matches := make([]model.Barcode, 0)
	for _, b := range r.barcodes {
		if keep(b) {
			matches = append(matches, b)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

func (r *BarcodeRepository) valueTakenLocked(value string, exceptID int64) bool {
	if r.AllowDuplicateValues {
		return false
	}
	for id, b := range r.barcodes {
		if b.Value == value && id != exceptID {
			return true
		}
	}
	return false
}

func (r *BarcodeRepository) insertLocked(barcode model.Barcode) model.Barcode {
	r.nextID++
	barcode.ID = r.nextID
	r.barcodes[barcode.ID] = barcode
	return barcode
}
