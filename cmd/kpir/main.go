package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/kpir/internal/app"
	"github.com/odyssey-erp/kpir/internal/audit"
	"github.com/odyssey-erp/kpir/internal/auth"
	"github.com/odyssey-erp/kpir/internal/ledger"
	"github.com/odyssey-erp/kpir/internal/masterdata"
	"github.com/odyssey-erp/kpir/internal/observability"
	"github.com/odyssey-erp/kpir/internal/platform/cache"
	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/internal/rbac"
	"github.com/odyssey-erp/kpir/internal/reports"
	"github.com/odyssey-erp/kpir/internal/shared"
	"github.com/odyssey-erp/kpir/internal/users"
	"github.com/odyssey-erp/kpir/jobs"
	"github.com/odyssey-erp/kpir/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	authService := auth.NewService(auth.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Loader: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, rbacMiddleware)

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(dbpool), logger))
	masterDataHandler := masterdata.NewHandler(logger, dbpool)
	auditHandler := audit.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)))

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	pdfClient := report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout, report.A4Landscape)
	kpirRenderer, err := reports.NewKPIRRenderer(pdfClient)
	if err != nil {
		logger.Error("init kpir renderer", slog.Any("error", err))
		os.Exit(1)
	}
	reportsService := reports.NewService(reports.NewRepository(dbpool), reportCache, kpirRenderer, logger)
	reportsService.WithObserver(metrics)
	reportsHandler := reports.NewHandler(logger, reportsService)

	ledgerService := ledger.NewService(ledger.NewRepository(dbpool), auditLogger, logger)
	ledgerService.WithCacheInvalidator(reportCache)
	ledgerService.WithBookingObserver(metrics)
	ledgerService.WithCategoryScope(cfg.LedgerCategorySameCompany)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
		AuthHandler:       authHandler,
		AuditHandler:      auditHandler,
		UsersHandler:      usersHandler,
		MasterDataHandler: masterDataHandler,
		LedgerHandler:     ledgerHandler,
		ReportsHandler:    reportsHandler,
		JobHandler:        jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
