package services

import (
	"github.com/google/uuid"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

// Actor identifies who is performing an operation. The zero value is an anonymous visitor.
type Actor struct {
	UserID  uuid.UUID
	Name    string
	IsOwner bool
}

// Anonymous is the actor of unauthenticated requests.
var Anonymous = Actor{}

func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Name: u.Name, IsOwner: u.IsOwner}
}

func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// RequireOwner fails closed: anything but an authenticated owner is denied.
func RequireOwner(a Actor) error {
	if !a.Authenticated() || !a.IsOwner {
		return errs.NewAccessDeniedError()
	}
	return nil
}

func RequireAuthenticated(a Actor) error {
	if !a.Authenticated() {
		return errs.Unauthorized
	}
	return nil
}

// canView reports whether a sees p; unpublished projects are visible to the owner only.
func canView(a Actor, p *models.Project) bool {
	return p.IsPublished || (a.Authenticated() && a.IsOwner)
}
