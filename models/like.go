package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like records that a user likes a project; one row per (user, project).
type Like struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_project;index"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null"`
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
