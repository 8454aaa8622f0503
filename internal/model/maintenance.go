package model

import "time"

// TableStats describes the on-disk footprint of the barcodes table.
type TableStats struct {
	EstimatedRows int64   `json:"table_rows"`
	DataSizeMB    float64 `json:"data_size_mb"`
	IndexSizeMB   float64 `json:"index_size_mb"`
}

type HealthReport struct {
	TotalBarcodes int
	QueryTime     time.Duration
	CheckedAt     time.Time
}

type DatabaseReport struct {
	Stats   TableStats
	Indexes []string
}
