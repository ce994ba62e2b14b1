package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/services"
)

type tagHandler struct {
	responder Responder
	tags      *services.TagService
}

func newTagHandler(tags *services.TagService) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()
	return tagHandler{
		responder: NewResponder(logger),
		tags:      tags,
	}
}

// @Summary List tags
// @Tags Owner
// @Produce json
// @Success 200 {array} models.Tag
// @Router /owner/tags [get]
func (h tagHandler) listTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tags.List(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, tags)
	}
}

// createTag adds a tag; the colour defaults to #007bff
// @Summary Create tag
// @Tags Owner
// @Accept json
// @Produce json
// @Success 201 {object} models.Tag
// @Failure 409 {object} ErrorResponse "Tag name taken"
// @Router /owner/tag [post]
func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		body, err := parseBody(r)
		if err == nil {
			err = body.decode(&req, func(v formValues) {
				req.Name = v.String("name")
				req.Color = v.String("color")
			})
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag, err := h.tags.Create(r.Context(), ctxGetActor(r.Context()), req.Name, req.Color)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, tag)
	}
}

// deleteTag removes a tag and detaches it from every project
// @Summary Delete tag
// @Tags Owner
// @Param tagID path string true "Tag ID" format(uuid)
// @Success 200 {object} MessageResponse
// @Router /owner/tag/{tagID} [delete]
func (h tagHandler) deleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tagID, err := uuidParam(r, "tagID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.tags.Delete(r.Context(), ctxGetActor(r.Context()), tagID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, success("tag deleted successfully"))
	}
}
