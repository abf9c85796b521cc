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

	"github.com/mamadbah2/mealledger/internal/config"
	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/repository"
	"github.com/mamadbah2/mealledger/internal/repository/memory"
	"github.com/mamadbah2/mealledger/internal/repository/mongodb"
	"github.com/mamadbah2/mealledger/internal/repository/sheets"
	"github.com/mamadbah2/mealledger/internal/scheduler"
	"github.com/mamadbah2/mealledger/internal/server/handlers"
	"github.com/mamadbah2/mealledger/internal/server/router"
	ledgersvc "github.com/mamadbah2/mealledger/internal/service/ledger"
	"github.com/mamadbah2/mealledger/internal/service/notify"
	"github.com/mamadbah2/mealledger/internal/service/partition"
	pricingsvc "github.com/mamadbah2/mealledger/internal/service/pricing"
	reportsvc "github.com/mamadbah2/mealledger/internal/service/reports"
	rollupsvc "github.com/mamadbah2/mealledger/internal/service/rollup"
	whatsappclient "github.com/mamadbah2/mealledger/pkg/clients/whatsapp"
	"github.com/mamadbah2/mealledger/pkg/logger"
)

// store is the gateway plus the seeding hook both implementations offer.
type store interface {
	repository.Gateway
	SaveOrganizers(ctx context.Context, organizers []models.Organizer) error
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var gateway store
	switch cfg.Storage.Driver {
	case config.StorageMongoDB:
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		gateway = mongoRepo
	default:
		baseLogger.Warn("using in-memory storage, data is lost on restart")
		gateway = memory.New()
	}

	if cfg.Storage.OrganizersFile != "" {
		organizers, err := repository.ReadOrganizersFile(cfg.Storage.OrganizersFile)
		if err != nil {
			baseLogger.Fatal("failed to read organizers file", zap.Error(err))
		}
		if err := gateway.SaveOrganizers(context.Background(), organizers); err != nil {
			baseLogger.Fatal("failed to seed organizers", zap.Error(err))
		}
		baseLogger.Info("organizer directory seeded", zap.Int("organizers", len(organizers)))
	}

	locks := partition.NewLocks()
	pricingSvc := pricingsvc.NewService(gateway, baseLogger.Named("svc.pricing"))
	ledgerSvc := ledgersvc.NewService(gateway, locks, baseLogger.Named("svc.ledger"))
	reportSvc := reportsvc.NewService(gateway, pricingSvc, gateway, locks, baseLogger.Named("svc.reports"))
	rollupSvc := rollupsvc.NewService(gateway, baseLogger.Named("svc.rollup"))

	var exporter scheduler.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheets.NewRollupExporter(sheetsRepo, baseLogger.Named("export.sheets"))
		baseLogger.Info("google sheets rollup export enabled")
	} else {
		baseLogger.Warn("google sheets not configured, rollup export disabled")
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WhatsApp.Enabled() {
		notifier = notify.NewWhatsAppNotifier(whatsappclient.NewClient(cfg.WhatsApp), baseLogger.Named("notify.whatsapp"))
		baseLogger.Info("whatsapp notifications enabled")
	} else {
		baseLogger.Warn("whatsapp not configured, organizer notifications disabled")
	}

	sched, err := scheduler.NewScheduler(cfg.Rollup, gateway, rollupSvc, ledgerSvc, exporter, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	handler := handlers.New(pricingSvc, ledgerSvc, reportSvc, rollupSvc, baseLogger.Named("handlers"))
	engine := router.New(handler, logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
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
