package api

import (
	"time"

	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svc *services.Services, db database.Database, c *cache.Client, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		projectHandler:    newProjectHandler(svc.Projects),
		engagementHandler: newEngagementHandler(svc.Engagement),
		accountHandler:    newAccountHandler(svc.Accounts),
		tagHandler:        newTagHandler(svc.Tags),
		ownerHandler:      newOwnerHandler(svc.Owner),
		healthHandler:     newHealthHandler(db, c, startupTime),
	}
}
