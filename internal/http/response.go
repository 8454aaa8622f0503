package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
)

// response is the success shape of the envelope every endpoint returns.
type response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Data       any         `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`

	StatusCode int `json:"-"`
}

type pagination struct {
	CurrentPage   int  `json:"current_page"`
	PageSize      int  `json:"page_size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
	HasNext       bool `json:"has_next"`
	HasPrevious   bool `json:"has_previous"`
}

func ok(data any) *response {
	return &response{Success: true, Data: data, StatusCode: http.StatusOK}
}

func okMessage(msg string) *response {
	return &response{Success: true, Message: msg, StatusCode: http.StatusOK}
}

func created(msg string, data any) *response {
	return &response{Success: true, Message: msg, Data: data, StatusCode: http.StatusCreated}
}

// list always renders an array, never null.
func list(barcodes []model.Barcode) *response {
	if barcodes == nil {
		barcodes = []model.Barcode{}
	}
	res := ok(barcodes)
	res.Count = count(len(barcodes))
	return res
}

func count(n int) *int {
	return &n
}
