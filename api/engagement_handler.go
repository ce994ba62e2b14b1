package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/services"
)

type engagementHandler struct {
	responder  Responder
	engagement *services.EngagementService
}

func newEngagementHandler(engagement *services.EngagementService) engagementHandler {
	logger := log.With().Str("handlerName", "engagementHandler").Logger()
	return engagementHandler{
		responder:  NewResponder(logger),
		engagement: engagement,
	}
}

// toggleLike likes or unlikes a project for the current user
// @Summary Toggle like
// @Tags Engagement
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeState
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectID}/like [post]
func (h engagementHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := h.engagement.ToggleLike(r.Context(), ctxGetActor(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, state)
	}
}

// addComment posts a comment on a project
// @Summary Add comment
// @Tags Engagement
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /project/{projectID}/comment [post]
func (h engagementHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		body, err := parseBody(r)
		if err == nil {
			err = body.decode(&req, func(v formValues) {
				req.Content = v.String("content")
			})
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.engagement.AddComment(r.Context(), ctxGetActor(r.Context()), projectID, req.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, comment)
	}
}
