package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/barcode-server/internal/http/apierr"
	"github.com/tuanvumaihuynh/barcode-server/internal/model"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
)

type healthData struct {
	Database      string `json:"database"`
	TotalBarcodes *int   `json:"total_barcodes,omitempty"`
	QueryTime     string `json:"query_time,omitempty"`
	QueryTimeMS   *int64 `json:"query_time_ms,omitempty"`
	Timestamp     *int64 `json:"timestamp,omitempty"`
}

type databaseData struct {
	Stats   model.TableStats `json:"stats"`
	Indexes []string         `json:"indexes"`
}

type adminHandler struct {
	logger         *slog.Logger
	maintenanceSvc service.MaintenanceService
}

func newAdminHandler(logger *slog.Logger, maintenanceSvc service.MaintenanceService) *adminHandler {
	return &adminHandler{
		logger:         logger,
		maintenanceSvc: maintenanceSvc,
	}
}

func (h *adminHandler) RemoveUniqueConstraint(r *http.Request) (*response, error) {
	if err := h.maintenanceSvc.RemoveValueUniqueConstraint(r.Context()); err != nil {
		return nil, fmt.Errorf("maintenance service remove value unique constraint: %w", err)
	}

	return okMessage("unique constraint removed successfully, duplicate barcode values are now allowed"), nil
}

func (h *adminHandler) OptimizeIndexes(r *http.Request) (*response, error) {
	n, err := h.maintenanceSvc.OptimizeIndexes(r.Context())
	if err != nil {
		return nil, fmt.Errorf("maintenance service optimize indexes: %w", err)
	}

	res := okMessage(fmt.Sprintf("database indexes optimized successfully, created %d new compound indexes", n))
	res.Count = count(n)
	return res, nil
}

// Health reports database connectivity. A failed check is still answered
// with the envelope, carrying database "error".
func (h *adminHandler) Health(r *http.Request) (*response, error) {
	ctx := r.Context()

	report, err := h.maintenanceSvc.CheckHealth(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "health check failed", slog.Any("error", err))

		return &response{
			Success:    false,
			Message:    "health check failed: " + err.Error(),
			Code:       apierr.InternalServerErrorCode,
			Data:       healthData{Database: "error"},
			StatusCode: http.StatusInternalServerError,
		}, nil
	}

	ms := report.QueryTime.Milliseconds()
	ts := report.CheckedAt.UnixMilli()

	return ok(healthData{
		Database:      "connected",
		TotalBarcodes: count(report.TotalBarcodes),
		QueryTime:     fmt.Sprintf("%dms", ms),
		QueryTimeMS:   &ms,
		Timestamp:     &ts,
	}), nil
}

func (h *adminHandler) OptimizeDatabase(r *http.Request) (*response, error) {
	report, err := h.maintenanceSvc.OptimizeDatabase(r.Context())
	if err != nil {
		return nil, fmt.Errorf("maintenance service optimize database: %w", err)
	}

	indexes := report.Indexes
	if indexes == nil {
		indexes = []string{}
	}

	res := ok(databaseData{Stats: report.Stats, Indexes: indexes})
	res.Message = "database optimization completed successfully"
	return res, nil
}
