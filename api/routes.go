package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/portfolio-site-backend/metrics"
)

// setupPublicRoutes registers routes open to everyone; identity is optional.
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/healthz", handlers.healthHandler.healthz())
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", handlers.projectHandler.home())
	r.Get("/about", handlers.accountHandler.about())
	r.Get("/projects", handlers.projectHandler.listProjects())
	r.Get("/project/{projectID}", handlers.projectHandler.getProject())

	r.Post("/auth/register", handlers.accountHandler.register())
	r.Post("/auth/login", handlers.accountHandler.login())
}

// setupAuthenticatedRoutes registers routes for any signed-in user.
func setupAuthenticatedRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.requireAuth)

		r.Post("/project/{projectID}/comment", handlers.engagementHandler.addComment())
		r.Post("/project/{projectID}/like", handlers.engagementHandler.toggleLike())

		r.Post("/auth/logout", handlers.accountHandler.logout())
		r.Get("/auth/profile", handlers.accountHandler.getProfile())
		r.Put("/auth/profile", handlers.accountHandler.updateProfile())
	})
}

// setupOwnerRoutes registers the owner area; every route is gated before its handler runs.
func setupOwnerRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/owner", func(r chi.Router) {
		r.Use(authMiddleware.requireOwner)

		r.Get("/dashboard", handlers.ownerHandler.dashboard())
		r.Get("/notifications", handlers.ownerHandler.listNotifications())
		r.Post("/notifications/mark-read", handlers.ownerHandler.markNotificationsRead())

		r.Get("/projects", handlers.projectHandler.listAllProjects())
		r.Post("/project", handlers.projectHandler.createProject())
		r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())

		r.Get("/tags", handlers.tagHandler.listTags())
		r.Post("/tag", handlers.tagHandler.createTag())
		r.Delete("/tag/{tagID}", handlers.tagHandler.deleteTag())
	})
}

// setupUploadRoutes serves stored images from the local upload folder. Directory
// listings are not served.
func setupUploadRoutes(r chi.Router, folder string) {
	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(folder)))
	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		files.ServeHTTP(w, req)
	})
}
