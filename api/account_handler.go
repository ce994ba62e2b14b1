package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/services"
)

type accountHandler struct {
	responder Responder
	logger    zerolog.Logger
	accounts  *services.AccountService
}

func newAccountHandler(accounts *services.AccountService) accountHandler {
	logger := log.With().Str("handlerName", "accountHandler").Logger()
	return accountHandler{
		responder: NewResponder(logger),
		logger:    logger,
		accounts:  accounts,
	}
}

// register creates a visitor account
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 409 {object} ErrorResponse "Username or email taken"
// @Router /auth/register [post]
func (h accountHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		body, err := parseBody(r)
		if err == nil {
			err = body.decode(&req, func(v formValues) {
				req.Username = v.String("username")
				req.Name = v.String("name")
				req.Email = v.String("email")
				req.Password = v.String("password")
				req.Password2 = v.String("password2")
			})
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.accounts.Register(r.Context(), services.Registration{
			Username: req.Username,
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, user.Account())
	}
}

// login exchanges credentials for a bearer token
// @Summary Login
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} services.Session
// @Failure 401 {object} ErrorResponse "Invalid username or password"
// @Router /auth/login [post]
func (h accountHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		body, err := parseBody(r)
		if err == nil {
			err = body.decode(&req, func(v formValues) {
				req.Username = v.String("username")
				req.Password = v.String("password")
			})
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session, err := h.accounts.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, session)
	}
}

// @Summary Logout
// @Tags Auth
// @Success 200 {object} MessageResponse
// @Router /auth/logout [post]
func (h accountHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.accounts.Logout(r.Context(), ctxGetClaims(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, success("logged out"))
	}
}

func (h accountHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.accounts.Profile(r.Context(), ctxGetActor(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user.Account())
	}
}

// updateProfile edits the current user, with an optional "profile_image" upload
// @Summary Update profile
// @Tags Auth
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} services.ProfileResult
// @Router /auth/profile [put]
func (h accountHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		body, err := parseBody(r)
		if err == nil {
			err = body.decode(&req, func(v formValues) {
				req.Name = v.String("name")
				req.Email = v.String("email")
				req.Bio = v.Optional("bio")
			})
		}
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		image, file, err := body.file("profile_image")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if file != nil {
			defer file.Close()
		}

		result, err := h.accounts.UpdateProfile(r.Context(), ctxGetActor(r.Context()), services.ProfileUpdate{
			Name:  req.Name,
			Email: req.Email,
			Bio:   req.Bio,
			Image: image,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// about returns the owner's public profile
// @Summary About
// @Tags Projects
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "No owner provisioned"
// @Router /about [get]
func (h accountHandler) about() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := h.accounts.About(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, owner)
	}
}
