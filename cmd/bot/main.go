package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Adrianzinhoxp/ticketsdashboard/internal/api/http"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/api/http/handlers"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/bot"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/config"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/events"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/observability"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/persistence"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/repository"
	"github.com/Adrianzinhoxp/ticketsdashboard/internal/service"
)

func main() {
	cfg, err := config.LoadBot()
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

	store, err := persistence.NewSnapshotStore(cfg.Storage.DataDir, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot store", zap.Error(err))
	}
	collections, err := repository.NewCollections(store, logger)
	if err != nil {
		logger.Fatal("failed to load collections", zap.Error(err))
	}

	session, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to create session", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	forwarder := service.NewArchiveForwarder(dispatcher, logger, cfg.Dashboard)
	forwarder.RegisterHandlers()

	channels := bot.NewChannelManager(session, cfg.Discord, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		Collections: collections,
		Channels:    channels,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	discordBot := bot.New(session, cfg, ticketService, collections, dispatcher, logger)
	if err := discordBot.Start(ctx); err != nil {
		logger.Fatal("failed to start bot", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterBotRoutes(app, httptransport.BotRouteConfig{
		Status: handlers.NewStatusHandler(discordBot.Tag),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	_ = discordBot.Stop()
	collections.Flush(logger)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
