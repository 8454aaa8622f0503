package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/barcode-server/internal/cache"
	"github.com/tuanvumaihuynh/barcode-server/internal/config"
	"github.com/tuanvumaihuynh/barcode-server/internal/http"
	"github.com/tuanvumaihuynh/barcode-server/internal/log"
	"github.com/tuanvumaihuynh/barcode-server/internal/repository"
	"github.com/tuanvumaihuynh/barcode-server/internal/service"
	"github.com/tuanvumaihuynh/barcode-server/internal/storage/db"
	"github.com/tuanvumaihuynh/barcode-server/internal/telemetry"
	"github.com/tuanvumaihuynh/barcode-server/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running barcode server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Barcode  config.Barcode
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	countCache, err := cache.NewLRU[string, int](cfg.Barcode.CacheSize)
	if err != nil {
		return fmt.Errorf("error creating count cache: %w", err)
	}

	barcodeRepository := repository.NewBarcodeRepository(dbClient)
	maintenanceRepository := repository.NewMaintenanceRepository(dbClient)

	barcodeService := service.NewBarcodeService(dbClient, barcodeRepository, countCache)
	maintenanceService := service.NewMaintenanceService(logger, dbClient, barcodeRepository, maintenanceRepository)

	svc, err := http.New(ctx, cfg.HTTP, cfg.Barcode, logger, barcodeService, maintenanceService)
	if err != nil {
		return fmt.Errorf("error creating http service: %w", err)
	}

	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running http service: %w", err)
	}

	logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "http service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "http service is stopped")

	return nil
}
