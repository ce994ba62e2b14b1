package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/cache"
	"github.com/rpupo63/portfolio-site-backend/database"
)

const healthTimeout = 3 * time.Second

type healthHandler struct {
	responder   Responder
	db          database.Database
	cache       *cache.Client
	startupTime time.Time
}

func newHealthHandler(db database.Database, c *cache.Client, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		db:          db,
		cache:       c,
		startupTime: startupTime,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Cache         string `json:"cache"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// healthz reports database and cache reachability. Only the database decides the status code.
func (h healthHandler) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{
			Status:        "ok",
			Database:      "ok",
			Cache:         "disabled",
			UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		}
		status := http.StatusOK

		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if h.cache.Enabled() {
			resp.Cache = "ok"
			if err := h.cache.Ping(ctx); err != nil {
				resp.Cache = "unavailable"
			}
		}

		h.responder.WriteJSONStatus(w, status, resp)
	}
}
