package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/barcode-server/internal/config"
	"github.com/tuanvumaihuynh/barcode-server/internal/http/apierr"
	"github.com/tuanvumaihuynh/barcode-server/internal/http/metric"
	"github.com/tuanvumaihuynh/barcode-server/internal/http/middleware"
	"github.com/tuanvumaihuynh/barcode-server/internal/http/swagger"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
	"github.com/tuanvumaihuynh/barcode-server/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg        config.HTTP
	barcodeCfg config.Barcode
	logger     *slog.Logger
	metrics    *metric.Metrics
	validator  validator.Validator
	docs       *swagger.Docs

	barcodeSvc     service.BarcodeService
	maintenanceSvc service.MaintenanceService
}

type CleanupFunc func(ctx context.Context) error

func New(
	ctx context.Context,
	cfg config.HTTP,
	barcodeCfg config.Barcode,
	log *slog.Logger,
	barcodeSvc service.BarcodeService,
	maintenanceSvc service.MaintenanceService,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("new default validator: %w", err)
	}

	var docs *swagger.Docs
	if cfg.Swagger {
		docs, err = swagger.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("swagger new: %w", err)
		}
	}

	return &Service{
		cfg:            cfg,
		barcodeCfg:     barcodeCfg,
		logger:         log.With(slog.String("service", "http")),
		metrics:        metric.New(),
		validator:      v,
		docs:           docs,
		barcodeSvc:     barcodeSvc,
		maintenanceSvc: maintenanceSvc,
	}, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Router())
}

// Router builds the full handler tree: middlewares, docs, API routes and /metrics.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.docs != nil {
		s.docs.Register(r)
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("net listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()

	s.logger.Info("http server started", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.EscapedPath(),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	barcodes := newBarcodeHandler(s.barcodeSvc, s.validator, s.barcodeCfg.MaxBatchSize)
	admin := newAdminHandler(s.logger, s.maintenanceSvc)

	r.Route("/api/barcodes", func(r chi.Router) {
		r.Post("/", s.handle("error creating barcode", barcodes.CreateBarcode))
		r.Post("/batch", s.handle("error creating barcodes", barcodes.CreateBarcodes))
		r.Get("/", s.handle("error retrieving barcodes", barcodes.ListBarcodesPage))
		r.Get("/all", s.handle("error retrieving barcodes", barcodes.ListAllBarcodes))
		r.Get("/{id}", s.handle("error retrieving barcode", barcodes.GetBarcodeByID))
		r.Get("/value/{value}", s.handle("error retrieving barcode", barcodes.GetBarcodeByValue))
		r.Get("/type/{type}", s.handle("error retrieving barcodes", barcodes.ListBarcodesByType))
		r.Get("/category/{category}", s.handle("error retrieving barcodes", barcodes.ListBarcodesByCategory))
		r.Get("/status/{status}", s.handle("error retrieving barcodes", barcodes.ListBarcodesByStatus))
		r.Get("/search", s.handle("error searching barcodes", barcodes.SearchBarcodes))
		r.Put("/{id}", s.handle("error updating barcode", barcodes.UpdateBarcode))
		r.Patch("/{id}/status", s.handle("error updating barcode status", barcodes.UpdateBarcodeStatus))
		r.Delete("/{id}", s.handle("error deleting barcode", barcodes.DeleteBarcodeByID))
		r.Delete("/value/{value}", s.handle("error deleting barcode", barcodes.DeleteBarcodeByValue))
		r.Get("/stats/count", s.handle("error retrieving barcode stats", barcodes.CountBarcodes))

		r.Route("/admin", func(r chi.Router) {
			r.Post("/remove-unique-constraint", s.handle("error removing unique constraint", admin.RemoveUniqueConstraint))
			r.Post("/optimize-indexes", s.handle("error optimizing indexes", admin.OptimizeIndexes))
			r.Get("/health", s.handle("health check failed", admin.Health))
			r.Post("/optimize-database", s.handle("database optimization failed", admin.OptimizeDatabase))
		})
	})

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

// handlerFunc returns the response to write, or an error for the central
// error handler.
type handlerFunc func(r *http.Request) (*response, error)

// handle adapts fn to net/http. phrase prefixes the message of 500 responses.
func (s *Service) handle(phrase string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r)
		if err != nil {
			s.handleResponseError(w, r, phrase, err)
			return
		}

		s.writeJSON(w, r, res.StatusCode, res)
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, phrase string, err error) {
	res := apierr.New(err)
	if res.StatusCode >= http.StatusInternalServerError {
		res = apierr.NewInternal(phrase, err)
	}

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	s.writeJSON(w, r, res.StatusCode, res)
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}
