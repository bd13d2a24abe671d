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

	"github.com/mamadbah2/shiftpay/internal/config"
	"github.com/mamadbah2/shiftpay/internal/repository/memory"
	"github.com/mamadbah2/shiftpay/internal/repository/mongodb"
	"github.com/mamadbah2/shiftpay/internal/repository/sheets"
	"github.com/mamadbah2/shiftpay/internal/scheduler"
	"github.com/mamadbah2/shiftpay/internal/server/handlers"
	"github.com/mamadbah2/shiftpay/internal/server/router"
	attendancesvc "github.com/mamadbah2/shiftpay/internal/service/attendance"
	"github.com/mamadbah2/shiftpay/internal/service/calendar"
	directorysvc "github.com/mamadbah2/shiftpay/internal/service/directory"
	exportsvc "github.com/mamadbah2/shiftpay/internal/service/export"
	provisioningsvc "github.com/mamadbah2/shiftpay/internal/service/provisioning"
	reportingsvc "github.com/mamadbah2/shiftpay/internal/service/reporting"
	whatsappclient "github.com/mamadbah2/shiftpay/pkg/clients/whatsapp"
	"github.com/mamadbah2/shiftpay/pkg/logger"
)

// store is everything the services need from the persistence layer.
type store interface {
	attendancesvc.RecordStore
	attendancesvc.Directory
	provisioningsvc.RecordStore
	provisioningsvc.Roster
	reportingsvc.RecordReader
	reportingsvc.Directory
	directorysvc.Store
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	resolver, err := calendar.NewResolver(cfg.Calendar.Timezone)
	if err != nil {
		baseLogger.Fatal("failed to init calendar", zap.Error(err))
	}

	var db store
	switch cfg.Store.Driver {
	case config.StoreMemory:
		baseLogger.Warn("using in-memory store, data is lost on exit")
		db = memory.NewStore()
	default:
		connectCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
		if err != nil {
			cancel()
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		if err := mongoRepo.EnsureIndexes(connectCtx); err != nil {
			cancel()
			baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		db = mongoRepo
	}

	attendanceSvc := attendancesvc.NewService(db, db, resolver, baseLogger.Named("svc.attendance"))
	provisioningSvc := provisioningsvc.NewService(db, db, resolver, baseLogger.Named("svc.provisioning"))
	reportingSvc := reportingsvc.NewService(db, db, resolver, baseLogger.Named("svc.reporting"))
	directorySvc := directorysvc.NewService(db, provisioningSvc, baseLogger.Named("svc.directory"))

	var (
		schedExporter   scheduler.Exporter
		handlerExporter handlers.PayrollExporter
	)
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter := exportsvc.NewService(reportingSvc, sheetsRepo, baseLogger.Named("svc.export"))
		schedExporter, handlerExporter = exporter, exporter
		baseLogger.Info("payroll sheet export enabled")
	} else {
		baseLogger.Warn("google sheets not configured, payroll export disabled")
	}

	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier = whatsappclient.NewNotifier(whatsClient, cfg.WhatsApp.HRRecipient, baseLogger.Named("client.whatsapp"))
		baseLogger.Info("whatsapp hr notifications enabled")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, resolver, provisioningSvc, schedExporter, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Attendance:   handlers.NewAttendanceHandler(attendanceSvc, baseLogger.Named("handlers.attendance")),
		Reports:      handlers.NewReportHandler(reportingSvc, handlerExporter, baseLogger.Named("handlers.reports")),
		Provisioning: handlers.NewProvisioningHandler(sched, provisioningSvc, resolver.Location(), baseLogger.Named("handlers.provisioning")),
		Employees:    handlers.NewEmployeeHandler(directorySvc, baseLogger.Named("handlers.employees")),
	}, baseLogger.Named("router"))

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
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("timezone", cfg.Calendar.Timezone),
			zap.String("store", cfg.Store.Driver))
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
