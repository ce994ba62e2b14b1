package services

import (
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/media"
)

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	DB       database.Database
	Ingestor *media.Ingestor
	Tokens   *auth.TokenService
	Notifier *Notifier
	Limits   ImageLimits
	BaseURL  string
}

// Services groups the application operations used by the HTTP layer.
type Services struct {
	Projects   *ProjectService
	Tags       *TagService
	Engagement *EngagementService
	Accounts   *AccountService
	Owner      *OwnerService
}

func New(deps Dependencies) *Services {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNotifier(nil, nil)
	}
	return &Services{
		Projects:   NewProjectService(deps.DB, deps.Ingestor, deps.Limits, deps.BaseURL),
		Tags:       NewTagService(deps.DB),
		Engagement: NewEngagementService(deps.DB, notifier),
		Accounts:   NewAccountService(deps.DB, deps.Tokens, deps.Ingestor, deps.Limits),
		Owner:      NewOwnerService(deps.DB),
	}
}
