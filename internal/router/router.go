package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/storefront/internal/config"
	"github.com/kiwari-pos/storefront/internal/database"
	"github.com/kiwari-pos/storefront/internal/enum"
	"github.com/kiwari-pos/storefront/internal/handler"
	mw "github.com/kiwari-pos/storefront/internal/middleware"
	"github.com/kiwari-pos/storefront/internal/service"
	"github.com/kiwari-pos/storefront/internal/ws"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, rate limiting and role-based middleware as needed.
// A nil limiter gets one built from cfg.AuthRateLimit.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, logger *zap.Logger, limiter *mw.RateLimiter) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = mw.NewRateLimiter(cfg.AuthRateLimit, int(cfg.AuthRateLimit*2), logger)
	}
	metrics := mw.NewMetrics()

	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", hub.Handler(cfg.JWTSecret, cfg.AllowedOrigins))

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret, logger)
	categoryHandler := handler.NewCategoryHandler(queries, logger)
	productHandler := handler.NewProductHandler(queries, logger)
	cartHandler := handler.NewCartHandler(queries, logger)
	supportHandler := handler.NewSupportHandler(queries, logger)
	reportsHandler := handler.NewReportsHandler(queries, logger)

	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore, cfg.DeliveryFee)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub, logger)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		categoryHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		supportHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Handler)
			authHandler.RegisterRoutes(r)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))

			authHandler.RegisterProfileRoutes(r)
			cartHandler.RegisterRoutes(r)
			orderHandler.RegisterRoutes(r)
			supportHandler.RegisterComplaintRoutes(r)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin))
				categoryHandler.RegisterAdminRoutes(r)
				productHandler.RegisterAdminRoutes(r)
				orderHandler.RegisterAdminRoutes(r)
				supportHandler.RegisterAdminRoutes(r)
				reportsHandler.RegisterRoutes(r)
			})
		})
	})

	logger.Info("router initialized")
	return r
}
