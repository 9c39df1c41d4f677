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

	"github.com/kevinotieno/bizfinder/internal/bootstrap"
	"github.com/kevinotieno/bizfinder/internal/config"
	"github.com/kevinotieno/bizfinder/internal/observability/logging"
	"github.com/kevinotieno/bizfinder/internal/observability/metrics"
)

// jobTimeout bounds a single enrichment run; large batches with inter-batch
// delays can legitimately take minutes.
const jobTimeout = 10 * time.Minute

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	wm := metrics.NewWorkerMetrics("worker")
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", wm.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeJobCreated(ctx, func(handlerCtx context.Context, jobID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, jobTimeout)
		defer cancel()

		if job, getErr := app.Repo.GetByID(processCtx, jobID); getErr == nil {
			wm.ObserveQueueLag("worker", time.Since(job.CreatedAt))
		}

		wm.StartJob()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, jobID)
		wm.FinishJob("worker", time.Since(start), processErr)

		if processErr == nil {
			if job, getErr := app.Repo.GetByID(processCtx, jobID); getErr == nil {
				for _, result := range job.Results {
					wm.RecordBusiness("worker", string(result.WebsiteStatus))
				}
			}
		}
		return processErr
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
