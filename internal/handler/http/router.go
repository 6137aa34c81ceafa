package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/FoodStore/internal/service"
	"github.com/utafrali/FoodStore/pkg/health"
	"github.com/utafrali/FoodStore/pkg/middleware"
)

// ServiceName labels metrics and traces emitted by the router.
const ServiceName = "foodapi"

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	FoodService *service.FoodService
	CartService *service.CartService
	UserService *service.UserService

	Health         *health.Handler
	TokenValidator middleware.TokenValidator
	AuthLimiter    *middleware.RateLimiter
	CORS           middleware.CORSConfig

	// Images serves GET /images/<key>; nil disables the route.
	Images         http.Handler
	MaxUploadBytes int64

	Logger *slog.Logger
}

// NewRouter creates a chi router with all food API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Images != nil {
		r.With(middleware.CacheControl(86400, true)).
			Handle("/images/*", http.StripPrefix("/images/", cfg.Images))
	}

	foodHandler := NewFoodHandler(cfg.FoodService, cfg.MaxUploadBytes, logger)
	cartHandler := NewCartHandler(cfg.CartService, logger)
	userHandler := NewUserHandler(cfg.UserService, logger)

	r.Route("/api/food", func(r chi.Router) {
		r.Get("/list", foodHandler.List)
		r.Post("/add", foodHandler.Add)
		r.Post("/remove", foodHandler.Remove)
		r.Post("/update-stock", foodHandler.UpdateStock)
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.TokenValidator))

		r.Get("/get", cartHandler.Get)
		r.Post("/get", cartHandler.Get)
		r.Post("/add", cartHandler.Add)
		r.Post("/remove", cartHandler.Remove)
	})

	r.Route("/api/user", func(r chi.Router) {
		if cfg.AuthLimiter != nil {
			r.Use(cfg.AuthLimiter.Middleware(logger))
		}

		r.Post("/login", userHandler.Login)
		r.Post("/register", userHandler.Register)
	})

	return r
}
