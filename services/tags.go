package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

const defaultTagColor = "#007bff"

type TagService struct {
	db database.Database
}

func NewTagService(db database.Database) *TagService {
	return &TagService{db: db}
}

// All lists every tag by name. It is public.
func (s *TagService) All(ctx context.Context) ([]*models.Tag, error) {
	tags, err := s.db.TagRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "tags", err)
	}
	return nonNil(tags), nil
}

func (s *TagService) List(ctx context.Context, actor Actor) ([]*models.Tag, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	return s.All(ctx)
}

func (s *TagService) Create(ctx context.Context, actor Actor, name, color string) (*models.Tag, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewMissingRequiredFieldError("name")
	}
	if color == "" {
		color = defaultTagColor
	}

	_, err := s.db.TagRepo().FindByName(ctx, name)
	switch {
	case err == nil:
		return nil, errs.NewAlreadyExists("tag")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.NewDatabaseError("fetch", "tag", err)
	}

	tag := &models.Tag{Name: name, Color: color}
	if err := s.db.TagRepo().Add(ctx, tag); err != nil {
		return nil, errs.NewDatabaseError("create", "tag", err)
	}
	return tag, nil
}

// Delete detaches the tag from every project, then removes it. Projects are kept.
func (s *TagService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		if _, err := tx.TagRepo().FindByID(ctx, id); err != nil {
			return errs.NewDatabaseError("fetch", "tag", err)
		}
		if err := tx.ProjectTagRepo().DeleteByTag(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "project tags", err)
		}
		if _, err := tx.TagRepo().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "tag", err)
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "tag", err)
	}
	return nil
}
