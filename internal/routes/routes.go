package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/middleware"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Health    *handlers.HealthHandler
	Photos    *handlers.PhotoHandler
	Tags      *handlers.TagHandler
	Locations *handlers.LocationHandler
	Users     *handlers.UserHandler
}

// Setup mounts the gallery API on app. mediaRoot, when set, is served as
// static files under /media for the local storage driver.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	h Handlers,
	gatherer prometheus.Gatherer,
	mediaRoot string,
) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(gatherer)))

	if mediaRoot != "" {
		app.Static("/media", mediaRoot, fiber.Static{
			MaxAge: int((24 * time.Hour).Seconds()),
		})
	}

	auth := middleware.JWTProtected(cfg)
	admin := middleware.AdminRequired(db, cfg)

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Catalog reads and tag creation are public
	api.Get("/tags", h.Tags.List)
	api.Post("/tags", h.Tags.Create)
	api.Get("/locations", h.Locations.List)
	api.Post("/locations", auth, h.Locations.Create)

	// Users
	api.Post("/users/sync", auth, h.Users.Sync)
	api.Get("/users/me", auth, h.Users.Me)

	// Photos (owner scoped)
	photos := api.Group("/photos", auth)
	photos.Get("/", h.Photos.List)
	photos.Post("/", h.Photos.Create)

	// Uploads are heavier: 10 batches/min per IP
	photos.Post("/upload", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), h.Photos.Upload)

	photos.Get("/:id", h.Photos.Get)
	photos.Put("/:id", h.Photos.Update)
	photos.Delete("/:id", h.Photos.Delete)

	// Catalog maintenance (admin required)
	api.Put("/tags/:id", auth, admin, h.Tags.Update)
	api.Delete("/tags/:id", auth, admin, h.Tags.Delete)
	api.Put("/locations/:id", auth, admin, h.Locations.Update)
	api.Delete("/locations/:id", auth, admin, h.Locations.Delete)
}
