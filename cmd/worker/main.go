package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/kpir/internal/app"
	jobmetrics "github.com/odyssey-erp/kpir/internal/jobs"
	"github.com/odyssey-erp/kpir/internal/platform/cache"
	"github.com/odyssey-erp/kpir/internal/platform/db"
	"github.com/odyssey-erp/kpir/internal/reports"
	"github.com/odyssey-erp/kpir/jobs"
	"github.com/odyssey-erp/kpir/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	metrics := jobmetrics.NewMetrics(nil)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	renderer, err := reports.NewKPIRRenderer(report.NewClient(cfg.GotenbergURL, cfg.GotenbergTimeout, report.A4Landscape))
	if err != nil {
		logger.Error("init kpir renderer", slog.Any("error", err))
		os.Exit(1)
	}
	reportsService := reports.NewService(reports.NewRepository(pool), reportCache, renderer, logger)

	integrityJob := jobs.NewLedgerIntegrityJob(jobs.NewPGIntegrityStore(pool), logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(reportsService, jobs.NewPGCompanyLister(pool), logger, metrics)

	integrityTask, err := jobs.NewLedgerIntegrityTask(jobs.LedgerIntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewReportsWarmupTask(jobs.ReportsWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.IntegrityScanCron, Task: integrityTask},
			{Spec: "15 1 * * *", Task: warmupTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	client := jobs.NewClient(redisOpts)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	err = reportCache.Subscribe(ctx, func(companyID int64) {
		if _, err := client.EnqueueReportsWarmup(ctx, companyID); err != nil {
			logger.Warn("enqueue reports warmup", slog.Int64("company_id", companyID), slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Warn("subscribe report invalidations", slog.Any("error", err))
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
