package http_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/barcode-server/internal/apperr"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

func TestRemoveUniqueConstraint(t *testing.T) {
	ts := newTestServer(t)

	resp, env := ts.do(t, http.MethodPost, "/api/barcodes/admin/remove-unique-constraint", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, env.Success)
	assert.True(t, ts.maintenanceRepo.Dropped)

	ts.maintenanceRepo.Err = &pgconn.PgError{Code: db.PgErrUndefinedObject}
	resp, env = ts.do(t, http.MethodPost, "/api/barcodes/admin/remove-unique-constraint", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, apperr.UniqueConstraintNotFoundCode, env.Code)

	ts.maintenanceRepo.Err = errors.New("must be owner of table barcodes")
	resp, env = ts.do(t, http.MethodPost, "/api/barcodes/admin/remove-unique-constraint", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, env.Message, "error removing unique constraint: ")
}

func TestOptimizeIndexes(t *testing.T) {
	ts := newTestServer(t)
	ts.maintenanceRepo.CreateIndexErrs[repository.OptimizedIndexes[0].Name] = &pgconn.PgError{Code: db.PgErrDuplicateTable}

	resp, env := ts.do(t, http.MethodPost, "/api/barcodes/admin/optimize-indexes", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, env.Count)
	assert.Equal(t, len(repository.OptimizedIndexes)-1, *env.Count)
	assert.Contains(t, env.Message, "created 3 new")

	ts.maintenanceRepo.CreateIndexErrs[repository.OptimizedIndexes[1].Name] = errors.New("out of disk")
	resp, env = ts.do(t, http.MethodPost, "/api/barcodes/admin/optimize-indexes", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, env.Message, "error optimizing indexes: ")
}

func TestHealth(t *testing.T) {
	type health struct {
		Database      string `json:"database"`
		TotalBarcodes *int   `json:"total_barcodes"`
		QueryTime     string `json:"query_time"`
		QueryTimeMS   *int64 `json:"query_time_ms"`
		Timestamp     *int64 `json:"timestamp"`
	}

	t.Run("Should report a connected database", func(t *testing.T) {
		ts := newTestServer(t)
		ts.seed(t, model.Barcode{Value: "H-1", Type: model.BarcodeTypeQR})

		resp, env := ts.do(t, http.MethodGet, "/api/barcodes/admin/health", nil)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		data := decodeData[health](t, env)
		assert.Equal(t, "connected", data.Database)
		require.NotNil(t, data.TotalBarcodes)
		assert.Equal(t, 1, *data.TotalBarcodes)
		assert.Regexp(t, `^\d+ms$`, data.QueryTime)
		assert.NotNil(t, data.QueryTimeMS)
		assert.NotNil(t, data.Timestamp)
	})

	t.Run("Should report a failing database", func(t *testing.T) {
		ts := newTestServer(t)
		ts.db.PingErr = errors.New("connection refused")

		resp, env := ts.do(t, http.MethodGet, "/api/barcodes/admin/health", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.False(t, env.Success)
		assert.Contains(t, env.Message, "connection refused")

		data := decodeData[health](t, env)
		assert.Equal(t, "error", data.Database)
		assert.Nil(t, data.TotalBarcodes)
	})
}

func TestOptimizeDatabase(t *testing.T) {
	ts := newTestServer(t)
	ts.maintenanceRepo.Stats = model.TableStats{EstimatedRows: 1200, DataSizeMB: 1.5, IndexSizeMB: 0.75}
	ts.maintenanceRepo.Indexes = []string{"barcodes_pkey", "barcodes_barcode_value_key"}

	resp, env := ts.do(t, http.MethodPost, "/api/barcodes/admin/optimize-database", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, ts.maintenanceRepo.Vacuumed)
	assert.True(t, ts.maintenanceRepo.Analyzed)

	assert.JSONEq(t, `{
		"stats": {"table_rows": 1200, "data_size_mb": 1.5, "index_size_mb": 0.75},
		"indexes": ["barcodes_pkey", "barcodes_barcode_value_key"]
	}`, string(env.Data))
}
