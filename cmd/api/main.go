package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"github.com/fitpulse/ranking-engine/internal/app"
	"github.com/fitpulse/ranking-engine/internal/config"
	"github.com/fitpulse/ranking-engine/internal/observability"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopPyroscope, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	scheduler, err := startRecalculationLoop(ctx, cfg, application, logger)
	if err != nil {
		logger.Error("start recalculation loop", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("scheduler shutdown failed", "error", err)
		}
	}

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	if err := application.Close(); err != nil {
		logger.Error("close app resources failed", "error", err)
	}

	if err := observability.StopPprofServer(pprofSrv, logger, shutdownTimeout); err != nil {
		logger.Error("pprof shutdown failed", "error", err)
	}
	if err := stopPyroscope(); err != nil {
		logger.Error("pyroscope shutdown failed", "error", err)
	}
	if err := shutdownUptrace(shutdownCtx); err != nil {
		logger.Error("uptrace shutdown failed", "error", err)
	}

	logger.Info("http server stopped")
}

// startRecalculationLoop keeps leaderboards warm. With QStash enabled the
// queued-job chain drives recomputes and this only bootstraps it; otherwise
// an in-process scheduler runs the full pass every RecalculateInterval.
func startRecalculationLoop(ctx context.Context, cfg config.Config, application *app.Application, logger *logging.Logger) (gocron.Scheduler, error) {
	if application.QStashEnabled {
		if err := application.Orchestrator.Bootstrap(ctx); err != nil {
			logger.Warn("bootstrap recalculation chain failed", "error", err)
		}
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.RecalculateInterval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.RecalculateInterval)
			defer cancel()

			result, err := application.Aggregator.RecalculateAll(runCtx)
			if err != nil {
				logger.Error("periodic recalculation failed", "error", err)
				return
			}
			logger.Info("periodic recalculation finished",
				"run_id", result.RunID,
				"processed_users", result.ProcessedUsers,
			)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}
