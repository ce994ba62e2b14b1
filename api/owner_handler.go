package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/services"
)

const defaultNotificationLimit = 50

type ownerHandler struct {
	responder Responder
	owner     *services.OwnerService
}

func newOwnerHandler(owner *services.OwnerService) ownerHandler {
	logger := log.With().Str("handlerName", "ownerHandler").Logger()
	return ownerHandler{
		responder: NewResponder(logger),
		owner:     owner,
	}
}

// @Summary Owner dashboard
// @Tags Owner
// @Produce json
// @Success 200 {object} services.Dashboard
// @Failure 403 {object} ErrorResponse
// @Router /owner/dashboard [get]
func (h ownerHandler) dashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.owner.Dashboard(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, d)
	}
}

// listNotifications returns the owner's notifications, newest first
// @Summary List notifications
// @Tags Owner
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum number returned"
// @Success 200 {array} models.Notification
// @Router /owner/notifications [get]
func (h ownerHandler) listNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unreadOnly := r.URL.Query().Get("unread") == "true"
		notifications, err := h.owner.ListNotifications(r.Context(), ctxGetActor(r.Context()), unreadOnly, intQuery(r, "limit", defaultNotificationLimit))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, notifications)
	}
}

// @Summary Mark notifications read
// @Tags Owner
// @Produce json
// @Router /owner/notifications/mark-read [post]
func (h ownerHandler) markNotificationsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.owner.MarkNotificationsRead(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, map[string]int64{"marked_read": n})
	}
}
