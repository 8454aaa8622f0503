package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
)

var (
	// ErrBarcodeNotFound is returned when no row matches the lookup or no row
	// was affected by an update or delete.
	ErrBarcodeNotFound = errors.New("barcode not found")
	// ErrBarcodeValueTaken is returned when an insert or update would break
	// the uniqueness of barcode_value.
	ErrBarcodeValueTaken = errors.New("barcode value already taken")
)

type BarcodeRepository interface {
	WithDB(db db.DB) BarcodeRepository
	CreateBarcode(ctx context.Context, barcode model.Barcode) (model.Barcode, error)
	CreateBarcodes(ctx context.Context, barcodes []model.Barcode) (int64, error)
	GetBarcodeByID(ctx context.Context, id int64) (model.Barcode, error)
	GetBarcodeByValue(ctx context.Context, value string) (model.Barcode, error)
	ListAllBarcodes(ctx context.Context) ([]model.Barcode, error)
	ListBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) ([]model.Barcode, error)
	ListBarcodesByCategory(ctx context.Context, category string) ([]model.Barcode, error)
	ListBarcodesByStatus(ctx context.Context, status model.BarcodeStatus) ([]model.Barcode, error)
	SearchBarcodesByProductModel(ctx context.Context, productModel string) ([]model.Barcode, error)
	ListBarcodesPage(ctx context.Context, offset, limit int) ([]model.Barcode, error)
	UpdateBarcode(ctx context.Context, barcode model.Barcode) (model.Barcode, error)
	UpdateBarcodeStatus(ctx context.Context, id int64, status model.BarcodeStatus) error
	DeleteBarcodeByID(ctx context.Context, id int64) error
	DeleteBarcodeByValue(ctx context.Context, value string) error
	CountBarcodes(ctx context.Context) (int, error)
	CountBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) (int, error)
}

const barcodeColumns = `id, barcode_value, barcode_type, product_model, category, status, created_at, updated_at`

type barcodeRow struct {
	ID           int64      `db:"id"`
	BarcodeValue string     `db:"barcode_value"`
	BarcodeType  string     `db:"barcode_type"`
	ProductModel *string    `db:"product_model"`
	Category     *string    `db:"category"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

type barcodeRepository struct {
	db db.DB
}

func NewBarcodeRepository(db db.DB) BarcodeRepository {
	return &barcodeRepository{
		db: db,
	}
}

func (r barcodeRepository) WithDB(db db.DB) BarcodeRepository {
	return &barcodeRepository{
		db: db,
	}
}

func (r barcodeRepository) CreateBarcode(ctx context.Context, barcode model.Barcode) (model.Barcode, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO barcodes (barcode_value, barcode_type, product_model, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+barcodeColumns,
		barcode.Value,
		string(barcode.Type),
		barcode.ProductModel,
		barcode.Category,
		string(barcode.Status),
		barcode.CreatedAt,
	)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("insert barcode: %w", err)
	}

	created, err := collectOne(rows)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("insert barcode: %w", err)
	}

	return created, nil
}

// CreateBarcodes inserts all barcodes with one statement, so either every row
// is stored or none is.
func (r barcodeRepository) CreateBarcodes(ctx context.Context, barcodes []model.Barcode) (int64, error) {
	if len(barcodes) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(barcodes))
	types := make([]string, 0, len(barcodes))
	productModels := make([]*string, 0, len(barcodes))
	categories := make([]*string, 0, len(barcodes))
	statuses := make([]string, 0, len(barcodes))
	createdAts := make([]time.Time, 0, len(barcodes))
	for _, b := range barcodes {
		values = append(values, b.Value)
		types = append(types, string(b.Type))
		productModels = append(productModels, b.ProductModel)
		categories = append(categories, b.Category)
		statuses = append(statuses, string(b.Status))
		createdAts = append(createdAts, b.CreatedAt)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO barcodes (barcode_value, barcode_type, product_model, category, status, created_at)
		SELECT *
		FROM UNNEST(
			@values::varchar[],
			@types::varchar[],
			@product_models::varchar[],
			@categories::varchar[],
			@statuses::varchar[],
			@created_ats::timestamptz[]
		)
	`, pgx.NamedArgs{
		"values":         values,
		"types":          types,
		"product_models": productModels,
		"categories":     categories,
		"statuses":       statuses,
		"created_ats":    createdAts,
	})
	if err != nil {
		return 0, fmt.Errorf("bulk insert barcodes: %w", mapWriteErr(err))
	}

	return tag.RowsAffected(), nil
}

func (r barcodeRepository) GetBarcodeByID(ctx context.Context, id int64) (model.Barcode, error) {
	rows, err := r.db.Query(ctx, `SELECT `+barcodeColumns+` FROM barcodes WHERE id = $1`, id)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("select barcode by id: %w", err)
	}

	barcode, err := collectOne(rows)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("select barcode by id: %w", err)
	}

	return barcode, nil
}

// GetBarcodeByValue returns the oldest matching row; values may repeat once
// the unique constraint has been dropped.
func (r barcodeRepository) GetBarcodeByValue(ctx context.Context, value string) (model.Barcode, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+barcodeColumns+`
		FROM barcodes
		WHERE barcode_value = $1
		ORDER BY id
		LIMIT 1
	`, value)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("select barcode by value: %w", err)
	}

	barcode, err := collectOne(rows)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("select barcode by value: %w", err)
	}

	return barcode, nil
}

func (r barcodeRepository) ListAllBarcodes(ctx context.Context) ([]model.Barcode, error) {
	return r.list(ctx, "select all barcodes", `SELECT `+barcodeColumns+` FROM barcodes ORDER BY id DESC`)
}

func (r barcodeRepository) ListBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) ([]model.Barcode, error) {
	return r.list(ctx, "select barcodes by type", `
		SELECT `+barcodeColumns+`
		FROM barcodes
		WHERE barcode_type = $1
		ORDER BY id DESC
	`, string(barcodeType))
}

func (r barcodeRepository) ListBarcodesByCategory(ctx context.Context, category string) ([]model.Barcode, error) {
	return r.list(ctx, "select barcodes by category", `
		SELECT `+barcodeColumns+`
		FROM barcodes
		WHERE category = $1
		ORDER BY id DESC
	`, category)
}

func (r barcodeRepository) ListBarcodesByStatus(ctx context.Context, status model.BarcodeStatus) ([]model.Barcode, error) {
	return r.list(ctx, "select barcodes by status", `
		SELECT `+barcodeColumns+`
		FROM barcodes
		WHERE status = $1
		ORDER BY id DESC
	`, string(status))
}

// SearchBarcodesByProductModel matches productModel as a case-insensitive
// literal substring.
func (r barcodeRepository) SearchBarcodesByProductModel(ctx context.Context, productModel string) ([]model.Barcode, error) {
	return r.list(ctx, "search barcodes by product model", `
		SELECT `+barcodeColumns+`
		FROM barcodes
		WHERE product_model ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id DESC
	`, escapeLike(productModel))
}

func (r barcodeRepository) ListBarcodesPage(ctx context.Context, offset, limit int) ([]model.Barcode, error) {
	return r.list(ctx, "select barcodes page", `
		SELECT `+barcodeColumns+`
		FROM barcodes
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r barcodeRepository) UpdateBarcode(ctx context.Context, barcode model.Barcode) (model.Barcode, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE barcodes
		SET
			barcode_value = $2,
			barcode_type  = $3,
			product_model = $4,
			category      = $5,
			status        = $6,
			updated_at    = $7
		WHERE id = $1
		RETURNING `+barcodeColumns,
		barcode.ID,
		barcode.Value,
		string(barcode.Type),
		barcode.ProductModel,
		barcode.Category,
		string(barcode.Status),
		barcode.UpdatedAt,
	)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("update barcode: %w", err)
	}

	updated, err := collectOne(rows)
	if err != nil {
		return model.Barcode{}, fmt.Errorf("update barcode: %w", err)
	}

	return updated, nil
}

func (r barcodeRepository) UpdateBarcodeStatus(ctx context.Context, id int64, status model.BarcodeStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE barcodes SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update barcode status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBarcodeNotFound
	}

	return nil
}

func (r barcodeRepository) DeleteBarcodeByID(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM barcodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete barcode by id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBarcodeNotFound
	}

	return nil
}

func (r barcodeRepository) DeleteBarcodeByValue(ctx context.Context, value string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM barcodes WHERE barcode_value = $1`, value)
	if err != nil {
		return fmt.Errorf("delete barcode by value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBarcodeNotFound
	}

	return nil
}

func (r barcodeRepository) CountBarcodes(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM barcodes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count barcodes: %w", err)
	}

	return count, nil
}

func (r barcodeRepository) CountBarcodesByType(ctx context.Context, barcodeType model.BarcodeType) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM barcodes WHERE barcode_type = $1`, string(barcodeType)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count barcodes by type: %w", err)
	}

	return count, nil
}

func (r barcodeRepository) list(ctx context.Context, op, query string, args ...any) ([]model.Barcode, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dbRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[barcodeRow])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	barcodes := make([]model.Barcode, 0, len(dbRows))
	for _, row := range dbRows {
		barcodes = append(barcodes, barcodeRowToModel(row))
	}

	return barcodes, nil
}

func collectOne(rows pgx.Rows) (model.Barcode, error) {
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[barcodeRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Barcode{}, ErrBarcodeNotFound
		}
		return model.Barcode{}, mapWriteErr(err)
	}

	return barcodeRowToModel(row), nil
}

func mapWriteErr(err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrBarcodeValueTaken, err)
	}
	return err
}

func barcodeRowToModel(row barcodeRow) model.Barcode {
	return model.Barcode{
		ID:           row.ID,
		Value:        row.BarcodeValue,
		Type:         model.BarcodeType(row.BarcodeType),
		ProductModel: row.ProductModel,
		Category:     row.Category,
		Status:       model.BarcodeStatus(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
