package rest

import (
	"net/http"

	"propcore-backend/infrastructure/di"
	"propcore-backend/interfaces/http/rest/handlers"
	"propcore-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{
		container: container,
		logger:    container.Logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	cfg := rt.container.Config

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.container.Metrics))
	}

	if cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.propcore.io"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and metrics endpoints stay outside authentication
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.container.Metrics.Handler())
	}

	propertyHandler := handlers.NewPropertyHandler(rt.container.PropertyService, rt.logger)
	unitHandler := handlers.NewUnitHandler(rt.container.UnitService, rt.logger)
	blockHandler := handlers.NewBlockHandler(rt.container.BlockService, rt.container.UnitService, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret, cfg.JWTIssuer, rt.logger))

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", propertyHandler.CreateProperty)
			r.Get("/", propertyHandler.ListProperties)
			r.Get("/{propertyID}", propertyHandler.GetProperty)
			r.Put("/{propertyID}", propertyHandler.UpdateProperty)
			r.Delete("/{propertyID}", propertyHandler.DeleteProperty)
			r.Put("/{propertyID}/manager", propertyHandler.AssignManager)
			r.Get("/{propertyID}/stats", propertyHandler.GetPropertyStats)
			r.Get("/{propertyID}/health", propertyHandler.GetPropertyHealth)

			r.Post("/{propertyID}/units", unitHandler.CreateUnit)
			r.Get("/{propertyID}/units", unitHandler.ListUnits)
			r.Post("/{propertyID}/units/bulk", unitHandler.BulkCreateUnits)

			r.Post("/{propertyID}/blocks", blockHandler.CreateBlock)
			r.Get("/{propertyID}/blocks", blockHandler.ListBlocks)
		})

		r.Route("/units", func(r chi.Router) {
			r.Get("/{unitID}", unitHandler.GetUnit)
			r.Put("/{unitID}", unitHandler.UpdateUnit)
			r.Patch("/{unitID}/status", unitHandler.UpdateUnitStatus)
			r.Delete("/{unitID}", unitHandler.DeleteUnit)
			r.Post("/bulk-status", unitHandler.BulkUpdateUnitStatus)
		})

		r.Route("/blocks", func(r chi.Router) {
			r.Get("/{blockID}", blockHandler.GetBlock)
			r.Get("/{blockID}/units", blockHandler.ListBlockUnits)
			r.Put("/{blockID}", blockHandler.UpdateBlock)
			r.Delete("/{blockID}", blockHandler.DeleteBlock)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
