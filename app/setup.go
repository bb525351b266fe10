package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahilchouksey/campus-events/api"
	"github.com/sahilchouksey/campus-events/config"
	"github.com/sahilchouksey/campus-events/database"
	"github.com/sahilchouksey/campus-events/router"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/services/archive"
	"github.com/sahilchouksey/campus-events/services/cron"
	"github.com/sahilchouksey/campus-events/services/media"
	"github.com/sahilchouksey/campus-events/services/spaces"
	"github.com/sahilchouksey/campus-events/utils/cache"
	"github.com/sahilchouksey/campus-events/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func SetupAndRunServer() error {
	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	env, err := config.Get()
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Level: env.LOG_LEVEL, Format: env.LOG_FORMAT})

	if err := env.Validate(); err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM(env)
	if err != nil {
		logger.Error().Err(err).Msg("Check whether the Postgres is running or not (make docker-up / make db-up)")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		logger.Error().Err(err).Msg("Failed to initialize database tables")
		return err
	}
	if err := store.HealthCheck(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Redis is optional: without it lists are read straight from the database
	redisCache, err := cache.NewRedisCache(env.REDIS_URL, env.CACHE_TTL)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, running without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	var mirror media.Mirror
	if env.SpacesConfigured() {
		client, err := spaces.NewClient(spaces.Config{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
			CDNURL:    env.SPACES_CDN_URL,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Spaces mirror disabled")
		} else {
			mirror = client
		}
	}

	if err := os.MkdirAll(env.PUBLIC_DIR, 0o755); err != nil {
		return fmt.Errorf("failed to create public dir: %w", err)
	}

	db := store.GetDB()
	mediaStore := media.NewStore(env.PUBLIC_DIR, mirror)
	eventService := services.NewEventService(db, mediaStore, redisCache)
	archives := archive.NewBuilder(eventService, mediaStore.PublicDir(), env.UPLOAD_BASE_URL)

	// Initialize Cron Manager (only if enabled)
	if env.CRON_ENABLED {
		cronManager := cron.NewCronManager(db, archives, cron.Config{ArchiveRetention: env.ARCHIVE_RETENTION})
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			logger.Warn().Err(err).Msg("Failed to start cron jobs")
		} else {
			defer cronManager.Stop()
		}
	}

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", env.PORT))

	router.SetupRoutes(server.GetEngine(), router.Deps{
		Config:   env,
		DB:       db,
		Cache:    redisCache,
		Events:   eventService,
		Archives: archives,
	})

	logger.Debug().Int("routes", len(server.GetEngine().GetRoutes())).Msg("routes registered")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
