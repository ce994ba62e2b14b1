package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/metrics"
	"github.com/rpupo63/portfolio-site-backend/models"
)

// LikeState is the outcome of a like toggle.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// EngagementService handles likes and comments from visitors.
type EngagementService struct {
	db       database.Database
	notifier *Notifier
	logger   zerolog.Logger
}

func NewEngagementService(db database.Database, notifier *Notifier) *EngagementService {
	return &EngagementService{
		db:       db,
		notifier: notifier,
		logger:   log.With().Str("component", "engagement").Logger(),
	}
}

// ToggleLike flips the actor's like on a project. When a concurrent request has
// already inserted the like, the result is Liked and nothing is notified.
func (s *EngagementService) ToggleLike(ctx context.Context, actor Actor, projectID uuid.UUID) (LikeState, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return LikeState{}, err
	}

	var state LikeState
	var pending *staged
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		project, err := visibleProject(ctx, tx, actor, projectID)
		if err != nil {
			return err
		}

		likes := tx.LikeRepo()
		liked, err := likes.Exists(ctx, actor.UserID, projectID)
		if err != nil {
			return errs.NewDatabaseError("fetch", "like", err)
		}

		if liked {
			if _, err := likes.Delete(ctx, actor.UserID, projectID); err != nil {
				return errs.NewDatabaseError("delete", "like", err)
			}
			state.Liked = false
		} else {
			inserted, err := likes.Insert(ctx, actor.UserID, projectID)
			if err != nil {
				return errs.NewDatabaseError("create", "like", err)
			}
			state.Liked = true
			if inserted {
				message := fmt.Sprintf("%s liked your project %q", actor.Name, project.Title)
				pending, err = s.notifier.stage(ctx, tx, actor, authorOf(project), message)
				if err != nil {
					return errs.NewDatabaseError("create", "notification", err)
				}
			}
		}

		state.LikeCount, err = likes.CountByProject(ctx, projectID)
		if err != nil {
			return errs.NewDatabaseError("count", "likes", err)
		}
		return nil
	})
	if err != nil {
		return LikeState{}, errs.NewDatabaseError("toggle", "like", err)
	}

	s.notifier.dispatch(pending)
	metrics.LikesToggled.WithLabelValues(likeLabel(state.Liked)).Inc()
	return state, nil
}

// AddComment stores a comment and, for visitors, notifies the project author in
// the same transaction.
func (s *EngagementService) AddComment(ctx context.Context, actor Actor, projectID uuid.UUID, content string) (*models.Comment, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.NewMissingRequiredFieldError("content")
	}

	comment := &models.Comment{UserID: actor.UserID, ProjectID: projectID, Content: content}
	var pending *staged
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		project, err := visibleProject(ctx, tx, actor, projectID)
		if err != nil {
			return err
		}
		if err := tx.CommentRepo().Add(ctx, comment); err != nil {
			return errs.NewDatabaseError("create", "comment", err)
		}

		message := fmt.Sprintf("%s commented on your project %q", actor.Name, project.Title)
		pending, err = s.notifier.stage(ctx, tx, actor, authorOf(project), message)
		if err != nil {
			return errs.NewDatabaseError("create", "notification", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}

	s.notifier.dispatch(pending)
	s.logger.Debug().Str("projectId", projectID.String()).Str("userId", actor.UserID.String()).Msg("comment added")
	return comment, nil
}

func authorOf(p *models.Project) *models.User {
	if p.Author.ID == uuid.Nil {
		return nil
	}
	return &p.Author
}

func likeLabel(liked bool) string {
	if liked {
		return "liked"
	}
	return "unliked"
}
