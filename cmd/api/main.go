package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/zahid-01/Running-Tracker/internal/api"
	"github.com/zahid-01/Running-Tracker/internal/broker"
	"github.com/zahid-01/Running-Tracker/internal/config"
	"github.com/zahid-01/Running-Tracker/internal/logging"
	"github.com/zahid-01/Running-Tracker/internal/snapshot"
	"github.com/zahid-01/Running-Tracker/internal/tracker"
	httptransport "github.com/zahid-01/Running-Tracker/internal/transport/http"
	"github.com/zahid-01/Running-Tracker/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := snapshot.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.String("backend", cfg.SnapshotBackend), zap.Error(err))
	}
	defer closeStore()

	repo := snapshot.NewRepository(store, cfg.SnapshotKey, logger.Named("snapshot"))
	board := view.NewBoard(logger.Named("view"))

	opts := []tracker.Option{
		tracker.WithLogger(logger.Named("tracker")),
		tracker.WithZoom(cfg.MapZoom),
	}
	if len(cfg.KafkaBrokers) > 0 {
		eventWriter := broker.NewEventWriter(broker.DefaultWriterConfig(cfg.KafkaBrokers))
		defer eventWriter.Close()
		opts = append(opts, tracker.WithPublisher(broker.NewPublisher(eventWriter, cfg.KafkaTopic)))
		logger.Info("publishing workout events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	controller := tracker.New(board.Views(), repo, opts...)
	controller.Start(ctx)

	var handlerOpts []api.Option
	handlerOpts = append(handlerOpts, api.WithLogger(logger.Named("api")))
	if cfg.AuthEnabled {
		handlerOpts = append(handlerOpts, api.WithScopeChecks())
	}

	handler := api.NewHandler(controller, board, handlerOpts...)
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), newRouter(cfg, handler, logger))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("workout tracker listening",
			zap.String("address", cfg.HTTPAddress),
			zap.String("snapshot_backend", cfg.SnapshotBackend),
			zap.Bool("auth", cfg.AuthEnabled))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}
