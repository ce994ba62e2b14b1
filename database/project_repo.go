package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/portfolio-site-backend/models"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// ProjectFilter narrows Find. Zero values mean "no restriction"; Limit 0 means unlimited.
type ProjectFilter struct {
	PublishedOnly bool
	FeaturedOnly  bool
	Search        string
	TagName       string
	Offset        int
	Limit         int
}

func orderTagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name ASC")
}

// Find returns one page of projects, newest first, together with the total match count.
// Author, tags and like counts are loaded.
func (r *ProjectRepo) Find(ctx context.Context, f ProjectFilter) ([]*models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if f.PublishedOnly {
		q = q.Where("projects.is_published = ?", true)
	}
	if f.FeaturedOnly {
		q = q.Where("projects.is_featured = ?", true)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where(`(LOWER(projects.title) LIKE ? ESCAPE '\' OR LOWER(projects.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if f.TagName != "" {
		q = q.Joins("JOIN project_tags ON project_tags.project_id = projects.id").
			Joins("JOIN tags ON tags.id = project_tags.tag_id").
			Where("tags.name = ?", f.TagName)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []*models.Project
	page := base.Select("projects.*").
		Preload("Author").
		Preload("Tags", orderTagsByName).
		Order("projects.created_at DESC").
		Offset(f.Offset)
	if f.Limit > 0 {
		page = page.Limit(f.Limit)
	}
	if err := page.Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	if err := r.attachLikeCounts(ctx, projects); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindByID returns a project with author, tags and like count.
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags", orderTagsByName).
		First(&project, "projects.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLikeCounts(ctx, []*models.Project{&project}); err != nil {
		return nil, err
	}
	return &project, nil
}

// Exists reports whether a project with id exists.
func (r *ProjectRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Add inserts a new project. Associations are written separately.
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// Update saves every column of project. Associations are written separately.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *ProjectRepo) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

// ImageFilenames lists every image filename referenced by a project.
func (r *ProjectRepo) ImageFilenames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("image_filename IS NOT NULL AND image_filename <> ''").
		Pluck("image_filename", &names).Error
	return names, err
}

type likeCountRow struct {
	ProjectID uuid.UUID
	Total     int64
}

func (r *ProjectRepo) attachLikeCounts(ctx context.Context, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}

	var rows []likeCountRow
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Select("project_id, COUNT(*) AS total").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ProjectID] = row.Total
	}
	for _, p := range projects {
		p.LikeCount = counts[p.ID]
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
