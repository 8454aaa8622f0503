package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/cache"
	"github.com/tuanvumaihuynh/barcode-server/internal/config"
	barcodehttp "github.com/tuanvumaihuynh/barcode-server/internal/http"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository/repositorytest"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db/dbtest"
)

type testServer struct {
	handler         http.Handler
	db              *dbtest.DB
	barcodeRepo     *repositorytest.BarcodeRepository
	maintenanceRepo *repositorytest.MaintenanceRepository
	barcodeSvc      service.BarcodeService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := cache.NewLRU[string, int](16)
	require.NoError(t, err)

	ts := &testServer{
		db:              dbtest.New(),
		barcodeRepo:     repositorytest.NewBarcodeRepository(),
		maintenanceRepo: repositorytest.NewMaintenanceRepository(),
	}
	ts.barcodeSvc = service.NewBarcodeService(ts.db, ts.barcodeRepo, c)
	maintenanceSvc := service.NewMaintenanceService(logger, ts.db, ts.barcodeRepo, ts.maintenanceRepo)

	srv, err := barcodehttp.New(
		t.Context(),
		config.HTTP{Swagger: true},
		config.Barcode{MaxBatchSize: 100, CacheSize: 16},
		logger,
		ts.barcodeSvc,
		maintenanceSvc,
	)
	require.NoError(t, err)
	ts.handler = srv.Router()

	return ts
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Data       json.RawMessage   `json:"data"`
	Count      *int              `json:"count"`
	Errors     map[string]string `json:"errors"`
	Pagination *struct {
		CurrentPage   int  `json:"current_page"`
		PageSize      int  `json:"page_size"`
		TotalElements int  `json:"total_elements"`
		TotalPages    int  `json:"total_pages"`
		HasNext       bool `json:"has_next"`
		HasPrevious   bool `json:"has_previous"`
	} `json:"pagination"`
}

func (ts *testServer) do(t *testing.T, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()

	ts.handler.ServeHTTP(resp, req)

	var env envelope
	if resp.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	}

	return resp, env
}

func (ts *testServer) seed(t *testing.T, barcodes ...model.Barcode) []model.Barcode {
	t.Helper()

	stored := make([]model.Barcode, 0, len(barcodes))
	for _, b := range barcodes {
		if b.Status == "" {
			b.Status = model.BarcodeStatusActive
		}
		created, err := ts.barcodeRepo.CreateBarcode(context.Background(), b)
		require.NoError(t, err)
		stored = append(stored, created)
	}
	return stored
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
