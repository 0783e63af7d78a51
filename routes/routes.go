package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/24kshah/nemhem-ai/app"
	"github.com/24kshah/nemhem-ai/handlers"
	reqlog "github.com/24kshah/nemhem-ai/middleware"
	"github.com/24kshah/nemhem-ai/utils"
)

// defaultAllowedOrigins applies when CORS_ALLOWED_ORIGINS is unset
var defaultAllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(reqlog.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	// bounded by the server write timeout
	if timeout := deps.Config.Server.WriteTimeout; timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	// CORS middleware
	origins := deps.Config.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultAllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Logger)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Chat, deps.Logger)
	modelsHandler := handlers.NewModelsHandler(deps.Config.Catalog, deps.Router, deps.Logger)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handlers.StatusHandler(deps))

		// Model catalog and routing table
		r.Get("/models", modelsHandler.HandleList)
		r.Get("/models/route", modelsHandler.HandleRoute)

		// Stateless dispatch
		r.Post("/invoke", chatHandler.HandleInvoke)
		r.Post("/chain", chatHandler.HandleChain)

		// Chat sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.HandleCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.HandleGet)
				r.Delete("/", sessionHandler.HandleDelete)
				r.Put("/options", sessionHandler.HandleUpdateOptions)
				r.Post("/messages", sessionHandler.HandleSendMessage)
				r.Delete("/messages", sessionHandler.HandleClearMessages)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
