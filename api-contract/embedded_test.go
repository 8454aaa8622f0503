package apicontract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/barcode-server/api-contract"
)

func TestLoad(t *testing.T) {
	doc, err := apicontract.Load(t.Context())
	require.NoError(t, err)

	paths := []string{
		"/api/barcodes",
		"/api/barcodes/batch",
		"/api/barcodes/all",
		"/api/barcodes/{id}",
		"/api/barcodes/{id}/status",
		"/api/barcodes/value/{value}",
		"/api/barcodes/type/{type}",
		"/api/barcodes/category/{category}",
		"/api/barcodes/status/{status}",
		"/api/barcodes/search",
		"/api/barcodes/stats/count",
		"/api/barcodes/admin/remove-unique-constraint",
		"/api/barcodes/admin/optimize-indexes",
		"/api/barcodes/admin/health",
		"/api/barcodes/admin/optimize-database",
	}
	for _, p := range paths {
		assert.NotNil(t, doc.Paths.Find(p), p)
	}

	barcodeType := doc.Components.Schemas["BarcodeType"].Value
	assert.Len(t, barcodeType.Enum, 12)
}
