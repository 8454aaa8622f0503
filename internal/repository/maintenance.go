package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

// MaintenanceRepository runs fixed schema and housekeeping statements against
// the barcodes table. None of its methods accept user input.
type MaintenanceRepository interface {
	DropValueUniqueConstraint(ctx context.Context) error
	CreateIndex(ctx context.Context, index IndexDefinition) error
	Vacuum(ctx context.Context) error
	Analyze(ctx context.Context) error
	GetTableStats(ctx context.Context) (model.TableStats, error)
	ListIndexes(ctx context.Context) ([]string, error)
}

// IndexDefinition names one of the predefined secondary indexes.
type IndexDefinition struct {
	Name    string
	Columns string
}

// OptimizedIndexes are the compound indexes backing the filter and sort
// patterns of the list endpoints.
var OptimizedIndexes = []IndexDefinition{
	{Name: "idx_barcodes_status_type_created", Columns: "status, barcode_type, created_at DESC"},
	{Name: "idx_barcodes_type_product_model", Columns: "barcode_type, product_model"},
	{Name: "idx_barcodes_status_created", Columns: "status, created_at DESC"},
	{Name: "idx_barcodes_product_model_created", Columns: "product_model, created_at DESC"},
}

type maintenanceRepository struct {
	db db.DB
}

func NewMaintenanceRepository(db db.DB) MaintenanceRepository {
	return &maintenanceRepository{
		db: db,
	}
}

func (r maintenanceRepository) DropValueUniqueConstraint(ctx context.Context) error {
	if _, err := r.db.Exec(ctx,
		`ALTER TABLE barcodes DROP CONSTRAINT barcodes_barcode_value_key`,
		pgx.QueryExecModeSimpleProtocol,
	); err != nil {
		return fmt.Errorf("drop barcode value unique constraint: %w", err)
	}

	return nil
}

func (r maintenanceRepository) CreateIndex(ctx context.Context, index IndexDefinition) error {
	stmt := fmt.Sprintf("CREATE INDEX %s ON barcodes (%s)",
		pgx.Identifier{index.Name}.Sanitize(), index.Columns)

	if _, err := r.db.Exec(ctx, stmt, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("create index %s: %w", index.Name, err)
	}

	return nil
}

// Vacuum reclaims dead tuples. It must not run inside a transaction, so it
// is sent with the simple protocol on the pool.
func (r maintenanceRepository) Vacuum(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `VACUUM barcodes`, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("vacuum barcodes: %w", err)
	}

	return nil
}

func (r maintenanceRepository) Analyze(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `ANALYZE barcodes`, pgx.QueryExecModeSimpleProtocol); err != nil {
		return fmt.Errorf("analyze barcodes: %w", err)
	}

	return nil
}

func (r maintenanceRepository) GetTableStats(ctx context.Context) (model.TableStats, error) {
	var stats model.TableStats
	if err := r.db.QueryRow(ctx, `
		SELECT
			GREATEST(c.reltuples, 0)::bigint                                  AS table_rows,
			ROUND(pg_relation_size(c.oid) / 1024.0 / 1024.0, 2)::float8      AS data_size_mb,
			ROUND(pg_indexes_size(c.oid) / 1024.0 / 1024.0, 2)::float8        AS index_size_mb
		FROM pg_class c
		WHERE c.oid = 'barcodes'::regclass
	`).Scan(&stats.EstimatedRows, &stats.DataSizeMB, &stats.IndexSizeMB); err != nil {
		return model.TableStats{}, fmt.Errorf("select barcodes table stats: %w", err)
	}

	return stats, nil
}

func (r maintenanceRepository) ListIndexes(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT indexname
		FROM pg_indexes
		WHERE schemaname = current_schema() AND tablename = 'barcodes'
		ORDER BY indexname
	`)
	if err != nil {
		return nil, fmt.Errorf("select barcodes indexes: %w", err)
	}

	indexes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("select barcodes indexes: %w", err)
	}

	return indexes, nil
}
