package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry authored by the owner
type Project struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title         string    `json:"title" db:"title" gorm:"size:200;not null"`
	Description   string    `json:"description" db:"description" gorm:"size:500;not null"`
	Content       *string   `json:"content,omitempty" db:"content" gorm:"type:text"`
	ImageFilename *string   `json:"image_filename,omitempty" db:"image_filename" gorm:"size:255"`
	DemoURL       *string   `json:"demo_url,omitempty" db:"demo_url" gorm:"size:200"`
	GithubURL     *string   `json:"github_url,omitempty" db:"github_url" gorm:"size:200"`
	IsPublished   bool      `json:"is_published" db:"is_published" gorm:"not null;index"`
	IsFeatured    bool      `json:"is_featured" db:"is_featured" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at" db:"created_at" gorm:"not null;index"`
	UserID        uuid.UUID `json:"user_id" db:"user_id" gorm:"type:uuid;not null;index"`

	Author User  `json:"author,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Tags   []Tag `json:"tags" gorm:"many2many:project_tags"`

	// LikeCount is derived from the likes table and never persisted.
	LikeCount int64 `json:"like_count" gorm:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// HasImage reports whether the project references a stored image.
func (p *Project) HasImage() bool {
	return p.ImageFilename != nil && *p.ImageFilename != ""
}
