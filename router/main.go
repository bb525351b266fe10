package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/campus-events/config"
	"github.com/sahilchouksey/campus-events/handlers"
	auth_handlers "github.com/sahilchouksey/campus-events/handlers/auth"
	coordinator_handlers "github.com/sahilchouksey/campus-events/handlers/coordinator"
	event_handlers "github.com/sahilchouksey/campus-events/handlers/event"
	image_handlers "github.com/sahilchouksey/campus-events/handlers/image"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/services/archive"
	"github.com/sahilchouksey/campus-events/utils/auth"
	"github.com/sahilchouksey/campus-events/utils/cache"
	"github.com/sahilchouksey/campus-events/utils/metrics"
	"github.com/sahilchouksey/campus-events/utils/middleware"
	"gorm.io/gorm"
)

// Deps are the shared components routes are built from
type Deps struct {
	Config   *config.EnviornmentVariable
	DB       *gorm.DB
	Cache    *cache.RedisCache // nil disables caching and brute force protection
	Events   *services.EventService
	Archives *archive.Builder
}

func SetupRoutes(app *fiber.App, deps Deps) {
	env := deps.Config

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    env.ALLOWED_ORIGINS,
		RateLimitRequests: env.RATE_LIMIT_REQUESTS,
		RateLimitWindow:   time.Minute,
	})

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: env.JWT_SECRET,
		Expiry: env.JWT_EXPIRY,
		Issuer: env.JWT_ISSUER,
	})

	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Cache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Cache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, deps.DB)
	requireAuth := authMiddleware.Required()

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Cache)
	authHandler := auth_handlers.NewAuthHandler(deps.DB, jwtManager, bruteForceProtection)
	eventHandler := event_handlers.NewEventHandler(deps.Events)
	coordinatorHandler := coordinator_handlers.NewCoordinatorHandler(deps.Events)
	imageHandler := image_handlers.NewImageHandler(deps.Events, deps.Archives)

	app.Get("/ping", healthHandler.Ping)
	app.Get("/metrics", metrics.Handler())

	// Users
	users := app.Group("/users")
	users.Post("/", authHandler.Register)
	if bruteForceProtection != nil {
		users.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		users.Post("/login", authHandler.Login)
	}
	users.Get("/me", authHandler.Me)

	// Events: static segments before /:id
	events := app.Group("/event")
	events.Get("/", eventHandler.ListEvents)
	events.Post("/", requireAuth, eventHandler.CreateEvent)
	events.Get("/recent", eventHandler.RecentEvents)

	// Coordinators
	events.Post("/coordinator", requireAuth, coordinatorHandler.CreateCoordinator)
	events.Get("/coordinator/:id", coordinatorHandler.GetCoordinator)
	events.Put("/coordinator/:id", requireAuth, coordinatorHandler.UpdateCoordinator)
	events.Delete("/coordinator/:id", requireAuth, coordinatorHandler.DeleteCoordinator)

	// Images and archives: /zip before /:imageId
	events.Get("/image/:eventId/zip", requireAuth, imageHandler.BuildZip)
	events.Delete("/image/:eventId/zip", requireAuth, imageHandler.RemoveZip)
	events.Get("/image/:eventId", imageHandler.ListImages)
	events.Post("/image/:eventId", requireAuth, imageHandler.AddImages)
	events.Delete("/image/:eventId", requireAuth, imageHandler.DeleteImages)
	events.Get("/image/:eventId/:imageId", imageHandler.GetImage)
	events.Delete("/image/:eventId/:imageId", requireAuth, imageHandler.DeleteImage)

	events.Get("/:id", eventHandler.GetEvent)
	events.Put("/:id", requireAuth, eventHandler.UpdateEvent)
	events.Delete("/:id", requireAuth, eventHandler.DeleteEvent)

	// Uploaded files and archives
	app.Static("/", env.PUBLIC_DIR, fiber.Static{
		Compress:      true,
		ByteRange:     true,
		CacheDuration: 10 * time.Second,
	})
}
