package main

import (
	"context"
	"crimereport/backend/internal/api/handler"
	"crimereport/backend/internal/auth"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/directory"
	"crimereport/backend/internal/localization"
	"crimereport/backend/internal/logging"
	"crimereport/backend/internal/metrics"
	"crimereport/backend/internal/notify"
	"crimereport/backend/internal/storage"
	"crimereport/backend/internal/thread"
	"crimereport/backend/internal/workflow"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting case engine",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageDriver),
	)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Storage
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("Storage ready", zap.String("driver", cfg.StorageDriver))

	// 2. Metrics, localization and notifications
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	localizer, err := localization.Default()
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(store, localizer, collector, logger, cfg.Notify)

	// 3. Services and routes
	wf := workflow.NewService(store, directory.NewService(store), dispatcher, collector, logger)
	th := thread.NewService(store, dispatcher, collector, logger)
	h := handler.NewHandler(wf, th, store, auth.NewManager(cfg.Auth), collector, logger)

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        h.NewRouter(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
