package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/services"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
}

func newProjectHandler(projects *services.ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// home returns featured and recent projects with every tag
// @Summary Home page
// @Tags Projects
// @Produce json
// @Success 200 {object} services.Home
// @Router / [get]
func (h projectHandler) home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		home, err := h.projects.Home(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, home)
	}
}

// listProjects pages through published projects
// @Summary List published projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page number"
// @Param search query string false "Case-insensitive text in title or description"
// @Param tag query string false "Tag name"
// @Success 200 {object} services.Page[models.Project]
// @Router /projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := h.projects.ListPublished(r.Context(), services.ProjectQuery{
			Page:   intQuery(r, "page", 1),
			Search: q.Get("search"),
			Tag:    q.Get("tag"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// getProject retrieves a project page
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.ProjectDetail
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /project/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		detail, err := h.projects.Detail(r.Context(), ctxGetActor(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// listAllProjects pages through every project for the owner
// @Summary List all projects
// @Tags Owner
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} services.Page[models.Project]
// @Failure 403 {object} ErrorResponse
// @Router /owner/projects [get]
func (h projectHandler) listAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.projects.ListAll(r.Context(), ctxGetActor(r.Context()), intQuery(r, "page", 1))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// createProject creates a new project
// @Summary Create project
// @Description Accepts multipart form data with an optional "image" file and repeated "tags" ids, or JSON.
// @Tags Owner
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} services.ProjectResult "Created project; image_warning is set when the image was not stored"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 403 {object} ErrorResponse
// @Router /owner/project [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, image, closeImage, err := h.bindProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer closeImage()

		result, err := h.projects.Create(r.Context(), ctxGetActor(r.Context()), req.input(image))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, result)
	}
}

// updateProject replaces the fields and tags of a project
// @Summary Update project
// @Tags Owner
// @Accept multipart/form-data
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.ProjectResult
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /owner/project/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		req, image, closeImage, err := h.bindProject(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer closeImage()

		result, err := h.projects.Update(r.Context(), ctxGetActor(r.Context()), projectID, req.input(image))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// deleteProject deletes a project by ID
// @Summary Delete project
// @Tags Owner
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} MessageResponse "Success message"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /owner/project/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), ctxGetActor(r.Context()), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, success("project deleted successfully"))
	}
}

func (h projectHandler) bindProject(r *http.Request) (projectRequest, *services.ImageUpload, func(), error) {
	var req projectRequest
	noop := func() {}

	body, err := parseBody(r)
	if err != nil {
		return req, nil, noop, err
	}
	err = body.decode(&req, func(v formValues) {
		req.Title = v.String("title")
		req.Description = v.String("description")
		req.Content = v.Optional("content")
		req.DemoURL = v.NonBlank("demo_url")
		req.GithubURL = v.NonBlank("github_url")
		req.IsPublished = v.Bool("is_published")
		req.IsFeatured = v.Bool("is_featured")
		req.Tags = v.List("tags")
	})
	if err != nil {
		return req, nil, noop, err
	}

	image, file, err := body.file("image")
	if err != nil {
		return req, nil, noop, err
	}
	if file == nil {
		return req, nil, noop, nil
	}
	return req, image, func() {
		if err := file.Close(); err != nil {
			h.logger.Debug().Err(err).Msg("failed to close uploaded file")
		}
	}, nil
}
