package apierr

import (
	"errors"
	"net/http"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/pkg/validator"
	"github.com/tuanvumaihuynh/barcode-server/pkg/zerror"
)

const InternalServerErrorCode = "INTERNAL_SERVER_ERROR"

// ErrorResponse is the failure shape of the response envelope.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

// NewInternal builds a 500 response whose message is phrase followed by the
// underlying error text.
func NewInternal(phrase string, err error) ErrorResponse {
	res := InternalServerErr
	if err != nil {
		res.Message = phrase + ": " + err.Error()
	}
	return res
}

var InternalServerErr = ErrorResponse{
	Code:       InternalServerErrorCode,
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			details[validator.FieldPath(fe)] = validator.ValidationErrorMessage(fe)
		}

		return ErrorResponse{
			Code:       apperr.ValidationErrorCode,
			Message:    apperr.ValidationErr.Msg(),
			Errors:     details,
			StatusCode: http.StatusBadRequest,
		}
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			StatusCode: ZErrorStatusToHTTPStatus(zErr.Status()),
		}
	}

	return InternalServerErr
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
