package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Project-Sylos/Canopy/internal/api/handlers"
	apimiddleware "github.com/Project-Sylos/Canopy/internal/api/middleware"
	"github.com/Project-Sylos/Canopy/internal/auth"
	"github.com/Project-Sylos/Canopy/sdk"
)

// Router represents the HTTP API router
type Router struct {
	canopy *sdk.Canopy
	logger *slog.Logger
}

// NewRouter creates a new API router
func NewRouter(canopy *sdk.Canopy) *Router {
	return &Router{canopy: canopy, logger: canopy.Logger()}
}

// SetupRoutes configures all routes using modular handlers
func (r *Router) SetupRoutes() *chi.Mux {
	cfg := r.canopy.GetConfig()
	router := chi.NewRouter()

	// Standard middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Principal(auth.NewAuthenticator(cfg.Auth)))
	router.Use(apimiddleware.Logging(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	if len(cfg.API.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.API.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Requested-With", apimiddleware.APIKeyHeader, "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	indexHandler := handlers.NewIndexHandler(cfg.Categories.Enabled, r.logger)
	categoryHandler := handlers.NewCategoryHandler(r.canopy.Service(), r.canopy.Localizer(), cfg.Categories, r.logger)
	systemHandler := handlers.NewSystemHandler(r.canopy, cfg, r.logger)

	router.Get("/", indexHandler.Index)
	router.Get("/health", healthHandler.HealthCheck)
	router.Handle("/metrics", promhttp.Handler())

	// Category pages; the admin endpoints accept every method and reject
	// non-POST calls themselves
	router.Route("/categories", func(cats chi.Router) {
		cats.Get("/", categoryHandler.CategoriesPage)
		cats.Get("/tree", categoryHandler.GetTree)
		cats.HandleFunc("/add", categoryHandler.AddCategory)
		cats.HandleFunc("/rename", categoryHandler.RenameCategory)
	})

	// API routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/stats", systemHandler.GetStats)
		api.Get("/config", systemHandler.GetConfig)
	})

	return router
}
