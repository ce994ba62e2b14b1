package models

import "github.com/google/uuid"

// ProjectTag is a row of the project/tag association. The composite key
// keeps the association a set.
type ProjectTag struct {
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;primaryKey;not null"`
	TagID     uuid.UUID `json:"tag_id" db:"tag_id" gorm:"type:uuid;primaryKey;not null;index"`
}

func (ProjectTag) TableName() string {
	return "project_tags"
}
