package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"atelier/storefront/internal/authclient"
	"atelier/storefront/internal/cache"
	"atelier/storefront/internal/cart"
	"atelier/storefront/internal/config"
	"atelier/storefront/internal/database"
	"atelier/storefront/internal/handlers"
	"atelier/storefront/internal/jobs"
	"atelier/storefront/internal/live"
	"atelier/storefront/internal/log"
	"atelier/storefront/internal/realtime"
	"atelier/storefront/internal/repository"
	"atelier/storefront/internal/server"
	"atelier/storefront/internal/session"
	"atelier/storefront/internal/storage"
	"atelier/storefront/internal/wishlist"
	"atelier/storefront/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	profileRepo := repository.NewProfileRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	consultationRepo := repository.NewConsultationRepository(dbPool, profileRepo, logger)

	authAPI := authclient.New(cfg.Backend, logger)
	sessions := session.NewOrchestrator(authAPI, profileRepo, logger)
	sessions.Start(ctx)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	feed := realtime.NewFeed(redisClient, logger)
	products := live.NewProducts(productRepo, feed, hub, logger)
	consultations := live.NewConsultations(consultationRepo, feed, hub, logger)
	if err := products.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("product collection failed to start")
	}
	if err := consultations.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("consultation collection failed to start")
	}

	cartStore := cart.NewStore()
	wishlistStore := wishlist.NewStore(cache.NewKV(redisClient), logger)

	handlerSet := handlers.NewHandlerSet(
		logger, cfg, sessions, products, consultations,
		cartStore, wishlistStore, profileRepo, objectStore, hub,
		dbPool, redisClient,
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(cartStore, products, consultations, cfg.Cart.GuestTTL, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, sessions, products, consultations, dbPool, redisClient, cancel)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	sessions *session.Orchestrator,
	products *live.Products,
	consultations *live.Consultations,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	cancel context.CancelFunc,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	products.Stop()
	consultations.Stop()
	sessions.Stop()
	cancel()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
