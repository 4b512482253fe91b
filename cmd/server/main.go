package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/config"
	"github.com/mamadbah2/stockdesk/internal/repository/mongodb"
	"github.com/mamadbah2/stockdesk/internal/repository/sheets"
	"github.com/mamadbah2/stockdesk/internal/scheduler"
	"github.com/mamadbah2/stockdesk/internal/server/handlers"
	"github.com/mamadbah2/stockdesk/internal/server/router"
	alertsvc "github.com/mamadbah2/stockdesk/internal/service/alerts"
	inventorysvc "github.com/mamadbah2/stockdesk/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/stockdesk/internal/service/reporting"
	"github.com/mamadbah2/stockdesk/internal/service/session"
	"github.com/mamadbah2/stockdesk/pkg/clients/inventoryapi"
	whatsappclient "github.com/mamadbah2/stockdesk/pkg/clients/whatsapp"
	"github.com/mamadbah2/stockdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(logger.Options{Level: cfg.Server.LogLevel, Format: cfg.Server.LogFormat}))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc := cfg.Location()
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	var backend inventorysvc.Backend
	switch cfg.Backend.Source {
	case config.SourceSheets:
		sheetsRepo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		backend = sheets.NewSnapshotSource(sheetsRepo, cfg.Sheets, loc, baseLogger.Named("repo.sheets"))
		baseLogger.Info("reading inventory from spreadsheet", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	default:
		backend = inventoryapi.NewClient(cfg.Backend, baseLogger.Named("client.inventory"))
		baseLogger.Info("reading inventory from action endpoint")
	}

	var archive reportingsvc.Archive
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		archive = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, monthly report archive disabled")
	}

	inventorySvc := inventorysvc.NewService(backend, baseLogger.Named("svc.inventory"))
	reportingSvc := reportingsvc.NewService(archive, loc, baseLogger.Named("svc.reporting"))

	// Start serving even if the first load fails; the scheduler retries.
	if _, err := inventorySvc.Reload(startupCtx); err != nil {
		baseLogger.Error("initial snapshot load failed", zap.Error(err))
	}

	var alerter scheduler.Alerter
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		alerter = alertsvc.NewService(whatsClient, cfg.WhatsApp.AlertRecipient, reportingSvc, baseLogger.Named("svc.alerts"))
		baseLogger.Info("whatsapp low stock alerts enabled")
	} else {
		baseLogger.Warn("whatsapp token missing, low stock alerts disabled")
	}

	sessions := session.NewManager(cfg.Server.SessionTTL)
	engine := router.New(router.Handlers{
		Session:   handlers.NewSessionHandler(inventorySvc, sessions, baseLogger.Named("handlers.session")),
		Inventory: handlers.NewInventoryHandler(inventorySvc, reportingSvc, baseLogger.Named("handlers.inventory")),
		Stocktake: handlers.NewStocktakeHandler(inventorySvc, baseLogger.Named("handlers.stocktake")),
		Export:    handlers.NewExportHandler(inventorySvc, reportingSvc, baseLogger.Named("handlers.export")),
		Reports:   handlers.NewReportHandler(inventorySvc, reportingSvc, baseLogger.Named("handlers.reports")),
	}, cfg.Server, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, loc, inventorySvc, reportingSvc, alerter, sessions, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := router.NewServer(engine, cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
