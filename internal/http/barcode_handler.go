package http

import (
	"fmt"
	"math"
	"net/http"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
	"github.com/tuanvumaihuynh/barcode-server/pkg/validator"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type barcodeRequest struct {
	Value        string               `json:"value" validate:"required,notblank,max=500"`
	Type         model.BarcodeType    `json:"type" validate:"required,enum"`
	ProductModel *string              `json:"product_model" validate:"omitempty,max=100"`
	Category     *string              `json:"category" validate:"omitempty,max=100"`
	Status       *model.BarcodeStatus `json:"status" validate:"omitempty,enum"`
}

func (req barcodeRequest) createParams() service.CreateBarcodeParams {
	return service.CreateBarcodeParams{
		Value:        req.Value,
		Type:         req.Type,
		ProductModel: req.ProductModel,
		Category:     req.Category,
		Status:       req.Status,
	}
}

// batchRequest wraps the array body so item errors are reported as items[i].field.
type batchRequest struct {
	Items []barcodeRequest `json:"items" validate:"dive"`
}

type barcodeHandler struct {
	barcodeSvc   service.BarcodeService
	validator    validator.Validator
	maxBatchSize int
}

func newBarcodeHandler(barcodeSvc service.BarcodeService, v validator.Validator, maxBatchSize int) *barcodeHandler {
	return &barcodeHandler{
		barcodeSvc:   barcodeSvc,
		validator:    v,
		maxBatchSize: maxBatchSize,
	}
}

func (h *barcodeHandler) CreateBarcode(r *http.Request) (*response, error) {
	var req barcodeRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	ctx := r.Context()

	exists, err := h.barcodeSvc.ExistsByValue(ctx, req.Value)
	if err != nil {
		return nil, fmt.Errorf("barcode service exists by value: %w", err)
	}
	if exists {
		return nil, apperr.BarcodeAlreadyExistsErr
	}

	barcode, err := h.barcodeSvc.CreateBarcode(ctx, req.createParams())
	if err != nil {
		return nil, fmt.Errorf("barcode service create barcode: %w", err)
	}

	return created("barcode created successfully", barcode), nil
}

func (h *barcodeHandler) CreateBarcodes(r *http.Request) (*response, error) {
	var items []barcodeRequest
	if err := decodeBody(r, &items); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperr.EmptyBatchErr
	}
	if len(items) > h.maxBatchSize {
		return nil, apperr.BatchTooLargeErr.WithMsg(fmt.Sprintf(
			"batch size exceeds maximum allowed: %d, current size: %d", h.maxBatchSize, len(items)))
	}

	if err := h.validator.Validate(batchRequest{Items: items}); err != nil {
		return nil, err
	}

	params := make([]service.CreateBarcodeParams, 0, len(items))
	for _, item := range items {
		params = append(params, item.createParams())
	}

	n, err := h.barcodeSvc.CreateBarcodes(r.Context(), params)
	if err != nil {
		return nil, fmt.Errorf("barcode service create barcodes: %w", err)
	}

	res := created("barcodes created successfully", nil)
	res.Count = count(n)
	return res, nil
}

func (h *barcodeHandler) GetBarcodeByID(r *http.Request) (*response, error) {
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		return nil, err
	}

	barcode, err := h.barcodeSvc.GetBarcodeByID(r.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("barcode service get barcode by id: %w", err)
	}

	return ok(barcode), nil
}

func (h *barcodeHandler) GetBarcodeByValue(r *http.Request) (*response, error) {
	var value string
	if err := pathParam(r, "value", &value); err != nil {
		return nil, err
	}

	barcode, err := h.barcodeSvc.GetBarcodeByValue(r.Context(), value)
	if err != nil {
		return nil, fmt.Errorf("barcode service get barcode by value: %w", err)
	}

	return ok(barcode), nil
}

// ListBarcodesPage serves GET /api/barcodes. page is clamped to >= 0 and size
// to [1, 100], with out-of-range sizes falling back to the default of 50.
func (h *barcodeHandler) ListBarcodesPage(r *http.Request) (*response, error) {
	var page, size *int
	if err := queryParam(r, "page", false, &page); err != nil {
		return nil, err
	}
	if err := queryParam(r, "size", false, &size); err != nil {
		return nil, err
	}

	p := pageRequest(page, size)

	ctx := r.Context()

	total, err := h.barcodeSvc.CountBarcodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("barcode service count barcodes: %w", err)
	}

	barcodes := []model.Barcode{}
	if offset, inRange := p.offset(total); inRange {
		barcodes, err = h.barcodeSvc.ListBarcodesPage(ctx, offset, p.size)
		if err != nil {
			return nil, fmt.Errorf("barcode service list barcodes page: %w", err)
		}
	}

	res := ok(barcodes)
	res.Pagination = p.pagination(total)
	return res, nil
}

func (h *barcodeHandler) ListAllBarcodes(r *http.Request) (*response, error) {
	barcodes, err := h.barcodeSvc.ListAllBarcodes(r.Context())
	if err != nil {
		return nil, fmt.Errorf("barcode service list all barcodes: %w", err)
	}

	return list(barcodes), nil
}

func (h *barcodeHandler) ListBarcodesByType(r *http.Request) (*response, error) {
	var barcodeType model.BarcodeType
	if err := pathParam(r, "type", &barcodeType); err != nil {
		return nil, err
	}

	barcodes, err := h.barcodeSvc.ListBarcodesByType(r.Context(), barcodeType)
	if err != nil {
		return nil, fmt.Errorf("barcode service list barcodes by type: %w", err)
	}

	return list(barcodes), nil
}

func (h *barcodeHandler) ListBarcodesByCategory(r *http.Request) (*response, error) {
	var category string
	if err := pathParam(r, "category", &category); err != nil {
		return nil, err
	}

	barcodes, err := h.barcodeSvc.ListBarcodesByCategory(r.Context(), category)
	if err != nil {
		return nil, fmt.Errorf("barcode service list barcodes by category: %w", err)
	}

	return list(barcodes), nil
}

func (h *barcodeHandler) ListBarcodesByStatus(r *http.Request) (*response, error) {
	var status model.BarcodeStatus
	if err := pathParam(r, "status", &status); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, invalidStatusErr(err)
	}

	barcodes, err := h.barcodeSvc.ListBarcodesByStatus(r.Context(), status)
	if err != nil {
		return nil, fmt.Errorf("barcode service list barcodes by status: %w", err)
	}

	return list(barcodes), nil
}

func (h *barcodeHandler) SearchBarcodes(r *http.Request) (*response, error) {
	var productName string
	if err := queryParam(r, "productName", true, &productName); err != nil {
		return nil, err
	}

	barcodes, err := h.barcodeSvc.SearchBarcodesByProductModel(r.Context(), productName)
	if err != nil {
		return nil, fmt.Errorf("barcode service search barcodes by product model: %w", err)
	}

	return list(barcodes), nil
}

// UpdateBarcode replaces the record at the path id. The id in the body, if
// any, is ignored.
func (h *barcodeHandler) UpdateBarcode(r *http.Request) (*response, error) {
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		return nil, err
	}

	var req barcodeRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if err := h.validator.Validate(req); err != nil {
		return nil, err
	}

	ctx := r.Context()

	if _, err := h.barcodeSvc.GetBarcodeByID(ctx, id); err != nil {
		return nil, fmt.Errorf("barcode service get barcode by id: %w", err)
	}

	barcode, err := h.barcodeSvc.UpdateBarcode(ctx, service.UpdateBarcodeParams{
		ID:           id,
		Value:        req.Value,
		Type:         req.Type,
		ProductModel: req.ProductModel,
		Category:     req.Category,
		Status:       req.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("barcode service update barcode: %w", err)
	}

	res := ok(barcode)
	res.Message = "barcode updated successfully"
	return res, nil
}

func (h *barcodeHandler) UpdateBarcodeStatus(r *http.Request) (*response, error) {
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		return nil, err
	}

	var status model.BarcodeStatus
	if err := queryParam(r, "status", true, &status); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, invalidStatusErr(err)
	}

	if err := h.barcodeSvc.UpdateBarcodeStatus(r.Context(), id, status); err != nil {
		return nil, fmt.Errorf("barcode service update barcode status: %w", err)
	}

	return okMessage("barcode status updated successfully"), nil
}

func (h *barcodeHandler) DeleteBarcodeByID(r *http.Request) (*response, error) {
	var id int64
	if err := pathParam(r, "id", &id); err != nil {
		return nil, err
	}

	ctx := r.Context()

	if _, err := h.barcodeSvc.GetBarcodeByID(ctx, id); err != nil {
		return nil, fmt.Errorf("barcode service get barcode by id: %w", err)
	}

	if err := h.barcodeSvc.DeleteBarcodeByID(ctx, id); err != nil {
		return nil, fmt.Errorf("barcode service delete barcode by id: %w", err)
	}

	return okMessage("barcode deleted successfully"), nil
}

func (h *barcodeHandler) DeleteBarcodeByValue(r *http.Request) (*response, error) {
	var value string
	if err := pathParam(r, "value", &value); err != nil {
		return nil, err
	}

	ctx := r.Context()

	exists, err := h.barcodeSvc.ExistsByValue(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("barcode service exists by value: %w", err)
	}
	if !exists {
		return nil, apperr.BarcodeNotFoundErr
	}

	if err := h.barcodeSvc.DeleteBarcodeByValue(ctx, value); err != nil {
		return nil, fmt.Errorf("barcode service delete barcode by value: %w", err)
	}

	return okMessage("barcode deleted successfully"), nil
}

// CountBarcodes serves the cached total, or the cached per-type total when
// the type query parameter is set.
func (h *barcodeHandler) CountBarcodes(r *http.Request) (*response, error) {
	var barcodeType *model.BarcodeType
	if err := queryParam(r, "type", false, &barcodeType); err != nil {
		return nil, err
	}

	ctx := r.Context()

	var (
		n   int
		err error
	)
	if barcodeType != nil {
		if verr := barcodeType.Validate(); verr != nil {
			return nil, apperr.InvalidParameterErr.
				WithMsg(fmt.Sprintf("type must be one of %v", model.BarcodeType("").Values())).
				WrapParent(verr)
		}
		n, err = h.barcodeSvc.CountBarcodesByType(ctx, *barcodeType)
	} else {
		n, err = h.barcodeSvc.CountBarcodes(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("barcode service count barcodes: %w", err)
	}

	res := ok(nil)
	res.Count = count(n)
	return res, nil
}

func invalidStatusErr(err error) error {
	return apperr.InvalidParameterErr.
		WithMsg(fmt.Sprintf("status must be one of %v", model.BarcodeStatus("").Values())).
		WrapParent(err)
}

type pageParams struct {
	page int
	size int
}

func pageRequest(page, size *int) pageParams {
	p := pageParams{page: 0, size: defaultPageSize}
	if page != nil && *page > 0 {
		p.page = *page
	}
	if size != nil {
		switch {
		case *size > maxPageSize:
			p.size = maxPageSize
		case *size >= 1:
			p.size = *size
		}
	}
	return p
}

// offset reports page*size and whether it falls inside total. Pages far past
// the end never overflow.
func (p pageParams) offset(total int) (int, bool) {
	if p.page > (math.MaxInt-1)/p.size {
		return 0, false
	}
	offset := p.page * p.size
	return offset, offset < total
}

func (p pageParams) pagination(total int) *pagination {
	totalPages := (total + p.size - 1) / p.size
	return &pagination{
		CurrentPage:   p.page,
		PageSize:      p.size,
		TotalElements: total,
		TotalPages:    totalPages,
		HasNext:       p.page < totalPages-1,
		HasPrevious:   p.page > 0,
	}
}
