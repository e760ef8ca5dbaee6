package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Adrianzinhoxp/ticketsdashboard/internal/api/http"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/http/handlers"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/auth"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/config"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/observability"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
)

func main() {
	cfg, err := config.LoadDashboard()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The dashboard keeps its own snapshot directory; the bot's files belong
	// to the bot process alone.
	store, err := persistence.NewSnapshotStore(filepath.Join(cfg.Storage.DataDir, "dashboard"), logger)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	archive, err := repository.NewArchiveRepository(store, logger)
	if err != nil {
		logger.Fatal("failed to load archive", zap.Error(err))
	}
	transcripts, err := repository.NewTranscriptRepository(store, logger)
	if err != nil {
		logger.Fatal("failed to load transcripts", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	tokenManager := auth.NewTokenManager(cfg.Dashboard.SharedSecret, cfg.Dashboard.TokenTTLMinutes)
	archiveHandler := handlers.NewArchiveHandler(
		archive,
		transcripts,
		repository.NewArchivePgRepository(pg.PoolHandle()),
		redis,
		logger,
	)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterDashboardRoutes(app, httptransport.DashboardRouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Archive:    archiveHandler,
		IngestAuth: auth.IngestAuth(tokenManager, cfg.Dashboard.SharedSecret != "", logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	if err := archive.Flush(); err != nil {
		logger.Error("archive flush failed", zap.Error(err))
	}
	if err := transcripts.Flush(); err != nil {
		logger.Error("transcripts flush failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
