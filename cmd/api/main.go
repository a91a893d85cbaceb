package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/ai"
	httptransport "github.com/updesk/helpdesk/internal/api/http"
	"github.com/updesk/helpdesk/internal/api/http/handlers"
	"github.com/updesk/helpdesk/internal/auth"
	"github.com/updesk/helpdesk/internal/config"
	"github.com/updesk/helpdesk/internal/events"
	"github.com/updesk/helpdesk/internal/integration"
	"github.com/updesk/helpdesk/internal/observability"
	"github.com/updesk/helpdesk/internal/persistence"
	"github.com/updesk/helpdesk/internal/repository"
	"github.com/updesk/helpdesk/internal/service"
	"github.com/updesk/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)
	linkRepo := repository.NewTelegramLinkRepository(pool)
	draftStore := repository.NewRedisDraftStore(redis.Client, cfg.Support.DraftTTL())

	var provider ai.Provider
	if cfg.Gemini.APIKey != "" {
		geminiProvider, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey)
		if err != nil {
			logger.Fatal("failed to init gemini client", zap.Error(err))
		}
		defer geminiProvider.Close() //nolint:errcheck
		provider = geminiProvider
	} else {
		logger.Warn("GEMINI_API_KEY not set; AI triage degrades to textual fallback")
	}

	triageClient := ai.NewTriageClient(provider, logger, cfg.Gemini)
	triageClient.AutoSelectModel(ctx)

	telegramClient := integration.NewTelegram(cfg.Telegram, logger)
	mailer := integration.NewMailer(cfg.SMTP, logger)

	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(telegramClient, mailer, linkRepo, logger)
	worker.StartNotificationWorker(dispatcher, notificationService)

	ticketService := service.NewTicketService(ticketRepo, draftStore, triageClient, dispatcher, logger)
	messageService := service.NewMessageService(ticketRepo, interactionRepo, notificationService, dispatcher, logger)
	telegramService := service.NewTelegramService(ticketRepo, interactionRepo, cfg.Support.ActorUserID, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Triage:         handlers.NewTriageHandler(ticketService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Telegram:       handlers.NewTelegramHandler(telegramService, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
