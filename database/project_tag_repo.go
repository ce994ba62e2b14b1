package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/portfolio-site-backend/models"
)

// ProjectTagRepo writes the project/tag association table directly.
type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// Replace makes tagIDs the complete tag set of projectID. Callers run it inside a transaction.
func (r *ProjectTagRepo) Replace(ctx context.Context, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := r.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	rows := make([]models.ProjectTag, len(tagIDs))
	for i, tagID := range tagIDs {
		rows[i] = models.ProjectTag{ProjectID: projectID, TagID: tagID}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// FindTagIDs returns the tag ids attached to projectID.
func (r *ProjectTagRepo) FindTagIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ProjectTag{}).
		Where("project_id = ?", projectID).
		Pluck("tag_id", &ids).Error
	return ids, err
}

func (r *ProjectTagRepo) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error
}

func (r *ProjectTagRepo) DeleteByTag(ctx context.Context, tagID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("tag_id = ?", tagID).Delete(&models.ProjectTag{}).Error
}
