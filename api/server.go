package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// Dependencies are what the HTTP layer needs from the rest of the application.
type Dependencies struct {
	Services *services.Services
	DB       database.Database
	Cache    *cache.Client
	Settings config.Settings
}

func NewServer(deps Dependencies) (Server, error) {
	settings := deps.Settings.Server
	address := fmt.Sprintf("0.0.0.0:%s", settings.Port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withStartupTime(startupTime))

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  settings.ReadTimeout,  // Timeout for reading the entire request
		WriteTimeout: settings.WriteTimeout, // Timeout for writing the response
		IdleTimeout:  settings.IdleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime time.Time
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(corsMiddleware(deps.Settings.Server.AcceptedOrigins))
	chiRouter.Use(recordMetrics)
	chiRouter.Use(ColoredHTTPLoggingMiddleware)
	chiRouter.Use(limitBody(deps.Settings.Uploads.MaxUploadBytes))

	// Initialize all handlers
	handlers := initializeHandlers(deps.Services, deps.DB, deps.Cache, router.startupTime)

	// Initialize auth middleware
	authMiddleware := newAuthMiddleware(deps.Services.Accounts)
	chiRouter.Use(authMiddleware.identify)

	// Setup all route types
	setupPublicRoutes(chiRouter, handlers)
	setupAuthenticatedRoutes(chiRouter, handlers, authMiddleware)
	setupOwnerRoutes(chiRouter, handlers, authMiddleware)
	if deps.Settings.Uploads.Backend == config.UploadBackendLocal {
		setupUploadRoutes(chiRouter, deps.Settings.Uploads.Folder)
	}

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
