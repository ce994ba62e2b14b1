package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

const (
	dashboardRecentProjects = 5
	dashboardNotifications  = 10
)

type Dashboard struct {
	TotalProjects       int64                  `json:"total_projects"`
	PublishedProjects   int64                  `json:"published_projects"`
	TotalLikes          int64                  `json:"total_likes"`
	TotalComments       int64                  `json:"total_comments"`
	RecentProjects      []*models.Project      `json:"recent_projects"`
	UnreadNotifications []*models.Notification `json:"unread_notifications"`
}

type OwnerService struct {
	db database.Database
}

func NewOwnerService(db database.Database) *OwnerService {
	return &OwnerService{db: db}
}

func (s *OwnerService) Dashboard(ctx context.Context, actor Actor) (*Dashboard, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalProjects, err = s.db.ProjectRepo().Count(gctx, false)
		return wrapCount(err, "projects")
	})
	g.Go(func() (err error) {
		d.PublishedProjects, err = s.db.ProjectRepo().Count(gctx, true)
		return wrapCount(err, "projects")
	})
	g.Go(func() (err error) {
		d.TotalLikes, err = s.db.LikeRepo().Count(gctx)
		return wrapCount(err, "likes")
	})
	g.Go(func() (err error) {
		d.TotalComments, err = s.db.CommentRepo().Count(gctx)
		return wrapCount(err, "comments")
	})
	g.Go(func() error {
		recent, _, err := s.db.ProjectRepo().Find(gctx, database.ProjectFilter{Limit: dashboardRecentProjects})
		if err != nil {
			return errs.NewDatabaseError("fetch", "projects", err)
		}
		d.RecentProjects = nonNil(recent)
		return nil
	})
	g.Go(func() error {
		unread, err := s.db.NotificationRepo().FindByUser(gctx, actor.UserID, true, dashboardNotifications)
		if err != nil {
			return errs.NewDatabaseError("fetch", "notifications", err)
		}
		d.UnreadNotifications = nonNil(unread)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListNotifications returns the owner's notifications, newest first. limit <= 0 means all.
func (s *OwnerService) ListNotifications(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]*models.Notification, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	notifications, err := s.db.NotificationRepo().FindByUser(ctx, actor.UserID, unreadOnly, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "notifications", err)
	}
	return nonNil(notifications), nil
}

// MarkNotificationsRead marks every unread notification of the owner read and returns how many changed.
func (s *OwnerService) MarkNotificationsRead(ctx context.Context, actor Actor) (int64, error) {
	if err := RequireOwner(actor); err != nil {
		return 0, err
	}
	n, err := s.db.NotificationRepo().MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, errs.NewDatabaseError("update", "notifications", err)
	}
	return n, nil
}

func wrapCount(err error, entity string) error {
	if err != nil {
		return errs.NewDatabaseError("count", entity, err)
	}
	return nil
}
