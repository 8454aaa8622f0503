package apperr

import "github.com/tuanvumaihuynh/barcode-server/pkg/zerror"

const (
	ValidationErrorCode          = "VALIDATION_FAILED"
	InvalidParameterCode         = "INVALID_PARAMETER"
	InvalidRequestBodyCode       = "INVALID_REQUEST_BODY"
	BarcodeNotFoundCode          = "BARCODE_NOT_FOUND"
	BarcodeAlreadyExistsCode     = "BARCODE_ALREADY_EXISTS"
	EmptyBatchCode               = "EMPTY_BATCH"
	BatchTooLargeCode            = "BATCH_TOO_LARGE"
	UniqueConstraintNotFoundCode = "UNIQUE_CONSTRAINT_NOT_FOUND"
)

var (
	ValidationErr               = zerror.NewValidationFailed(ValidationErrorCode, "validation failed")
	InvalidParameterErr         = zerror.NewBadRequest(InvalidParameterCode, "invalid parameter")
	InvalidRequestBodyErr       = zerror.NewBadRequest(InvalidRequestBodyCode, "invalid request body")
	BarcodeNotFoundErr          = zerror.NewNotFound(BarcodeNotFoundCode, "barcode not found")
	BarcodeAlreadyExistsErr     = zerror.NewConflict(BarcodeAlreadyExistsCode, "barcode already exists")
	EmptyBatchErr               = zerror.NewBadRequest(EmptyBatchCode, "barcode list cannot be empty")
	BatchTooLargeErr            = zerror.NewBadRequest(BatchTooLargeCode, "batch size exceeds maximum allowed")
	UniqueConstraintNotFoundErr = zerror.NewConflict(UniqueConstraintNotFoundCode, "unique constraint on barcode value is already removed")
)
