package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/media"
	"github.com/rpupo63/portfolio-site-backend/models"
)

const (
	homeFeatured = 3
	homeRecent   = 6
)

type ProjectService struct {
	db       database.Database
	ingestor *media.Ingestor
	limits   ImageLimits
	baseURL  string
	logger   zerolog.Logger
}

func NewProjectService(db database.Database, ingestor *media.Ingestor, limits ImageLimits, baseURL string) *ProjectService {
	return &ProjectService{
		db:       db,
		ingestor: ingestor,
		limits:   limits,
		baseURL:  baseURL,
		logger:   log.With().Str("component", "projects").Logger(),
	}
}

type Home struct {
	Featured []*models.Project `json:"featured_projects"`
	Recent   []*models.Project `json:"recent_projects"`
	Tags     []*models.Tag     `json:"tags"`
}

type ProjectQuery struct {
	Page   int
	Search string
	Tag    string
}

type ProjectDetail struct {
	Project  *models.Project   `json:"project"`
	Comments []*models.Comment `json:"comments"`
	Liked    bool              `json:"user_liked"`
	Share    ShareLinks        `json:"share"`
}

// ProjectInput carries the editable fields of a project. TagIDs replaces the whole tag set.
type ProjectInput struct {
	Title       string
	Description string
	Content     *string
	DemoURL     *string
	GithubURL   *string
	IsPublished bool
	IsFeatured  bool
	TagIDs      []uuid.UUID
	Image       *ImageUpload
}

// ProjectResult is a saved project plus the reason its image was not stored, if any.
type ProjectResult struct {
	Project      *models.Project `json:"project"`
	ImageWarning string          `json:"image_warning,omitempty"`
}

func (s *ProjectService) Home(ctx context.Context) (*Home, error) {
	projects := s.db.ProjectRepo()

	featured, _, err := projects.Find(ctx, database.ProjectFilter{PublishedOnly: true, FeaturedOnly: true, Limit: homeFeatured})
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "featured projects", err)
	}
	recent, _, err := projects.Find(ctx, database.ProjectFilter{PublishedOnly: true, Limit: homeRecent})
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "recent projects", err)
	}
	tags, err := s.db.TagRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "tags", err)
	}

	return &Home{
		Featured: nonNil(featured),
		Recent:   nonNil(recent),
		Tags:     nonNil(tags),
	}, nil
}

// ListPublished pages through published projects, newest first. A page past
// the end, or a tag nobody uses, yields an empty page.
func (s *ProjectService) ListPublished(ctx context.Context, q ProjectQuery) (Page[*models.Project], error) {
	page := normalizePage(q.Page)
	items, total, err := s.db.ProjectRepo().Find(ctx, database.ProjectFilter{
		PublishedOnly: true,
		Search:        q.Search,
		TagName:       strings.TrimSpace(q.Tag),
		Offset:        offset(page, PublicPerPage),
		Limit:         PublicPerPage,
	})
	if err != nil {
		return Page[*models.Project]{}, errs.NewDatabaseError("fetch", "projects", err)
	}
	return newPage(items, total, page, PublicPerPage), nil
}

// Detail returns a project page. Unpublished projects exist only for the owner.
func (s *ProjectService) Detail(ctx context.Context, actor Actor, id uuid.UUID) (*ProjectDetail, error) {
	project, err := visibleProject(ctx, s.db, actor, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.db.CommentRepo().FindByProject(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "comments", err)
	}

	liked := false
	if actor.Authenticated() {
		liked, err = s.db.LikeRepo().Exists(ctx, actor.UserID, id)
		if err != nil {
			return nil, errs.NewDatabaseError("fetch", "like", err)
		}
	}

	return &ProjectDetail{
		Project:  project,
		Comments: nonNil(comments),
		Liked:    liked,
		Share:    BuildShareLinks(s.baseURL, project),
	}, nil
}

// ListAll pages through every project, published or not.
func (s *ProjectService) ListAll(ctx context.Context, actor Actor, page int) (Page[*models.Project], error) {
	if err := RequireOwner(actor); err != nil {
		return Page[*models.Project]{}, err
	}
	page = normalizePage(page)
	items, total, err := s.db.ProjectRepo().Find(ctx, database.ProjectFilter{
		Offset: offset(page, OwnerPerPage),
		Limit:  OwnerPerPage,
	})
	if err != nil {
		return Page[*models.Project]{}, errs.NewDatabaseError("fetch", "projects", err)
	}
	return newPage(items, total, page, OwnerPerPage), nil
}

func (s *ProjectService) Create(ctx context.Context, actor Actor, in ProjectInput) (*ProjectResult, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}

	project := &models.Project{UserID: actor.UserID}
	in.apply(project)

	imageName, warning := stageImage(ctx, s.ingestor, media.ProjectsFolder, s.limits, in.Image)
	if imageName != "" {
		project.ImageFilename = &imageName
	}

	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		if err := tx.ProjectRepo().Add(ctx, project); err != nil {
			return errs.NewDatabaseError("create", "project", err)
		}
		return setTags(ctx, tx, project.ID, in.TagIDs)
	})
	if err != nil {
		discardImage(ctx, s.ingestor, media.ProjectsFolder, &imageName)
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	s.logger.Info().Str("projectId", project.ID.String()).Msg("project created")
	return s.result(ctx, project.ID, warning)
}

// Update overwrites the editable fields and the tag set. A new image replaces the
// old one, which is removed once the change is committed.
func (s *ProjectService) Update(ctx context.Context, actor Actor, id uuid.UUID, in ProjectInput) (*ProjectResult, error) {
	if err := RequireOwner(actor); err != nil {
		return nil, err
	}

	imageName, warning := stageImage(ctx, s.ingestor, media.ProjectsFolder, s.limits, in.Image)

	var replaced *string
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		project, err := tx.ProjectRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("fetch", "project", err)
		}
		in.apply(project)
		if imageName != "" {
			replaced = project.ImageFilename
			project.ImageFilename = &imageName
		}
		if err := tx.ProjectRepo().Update(ctx, project); err != nil {
			return errs.NewDatabaseError("update", "project", err)
		}
		return setTags(ctx, tx, id, in.TagIDs)
	})
	if err != nil {
		discardImage(ctx, s.ingestor, media.ProjectsFolder, &imageName)
		return nil, errs.NewDatabaseError("update", "project", err)
	}

	discardImage(ctx, s.ingestor, media.ProjectsFolder, replaced)
	return s.result(ctx, id, warning)
}

// Delete removes a project with its tag links, likes and comments. Its image is
// removed after commit.
func (s *ProjectService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}

	var image *string
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		project, err := tx.ProjectRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("fetch", "project", err)
		}
		image = project.ImageFilename

		if err := tx.ProjectTagRepo().DeleteByProject(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "project tags", err)
		}
		if err := tx.LikeRepo().DeleteByProject(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "likes", err)
		}
		if err := tx.CommentRepo().DeleteByProject(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "comments", err)
		}
		if _, err := tx.ProjectRepo().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "project", err)
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}

	discardImage(ctx, s.ingestor, media.ProjectsFolder, image)
	s.logger.Info().Str("projectId", id.String()).Msg("project deleted")
	return nil
}

// SetTags replaces the tag set of a project. Unknown ids are ignored.
func (s *ProjectService) SetTags(ctx context.Context, actor Actor, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := RequireOwner(actor); err != nil {
		return err
	}
	err := s.db.WithTransaction(ctx, func(tx database.Database) error {
		exists, err := tx.ProjectRepo().Exists(ctx, projectID)
		if err != nil {
			return errs.NewDatabaseError("fetch", "project", err)
		}
		if !exists {
			return errs.NewNotFound("project")
		}
		return setTags(ctx, tx, projectID, tagIDs)
	})
	if err != nil {
		return errs.NewDatabaseError("update", "project tags", err)
	}
	return nil
}

func setTags(ctx context.Context, tx database.Database, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	known, err := tx.TagRepo().ExistingIDs(ctx, lo.Uniq(tagIDs))
	if err != nil {
		return errs.NewDatabaseError("fetch", "tags", err)
	}
	if err := tx.ProjectTagRepo().Replace(ctx, projectID, known); err != nil {
		return errs.NewDatabaseError("update", "project tags", err)
	}
	return nil
}

// visibleProject loads a project, hiding unpublished ones from everyone but the owner.
func visibleProject(ctx context.Context, db database.Database, actor Actor, id uuid.UUID) (*models.Project, error) {
	project, err := db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "project", err)
	}
	if !canView(actor, project) {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

func (s *ProjectService) result(ctx context.Context, id uuid.UUID, warning string) (*ProjectResult, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("fetch", "project", err)
	}
	return &ProjectResult{Project: project, ImageWarning: warning}, nil
}

func (in ProjectInput) apply(p *models.Project) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Content = blankToNil(in.Content)
	p.DemoURL = blankToNil(in.DemoURL)
	p.GithubURL = blankToNil(in.GithubURL)
	p.IsPublished = in.IsPublished
	p.IsFeatured = in.IsFeatured
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
