package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag labels projects; Color is a #rrggbb hex string
type Tag struct {
	ID    uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name  string    `json:"name" db:"name" gorm:"size:50;not null;uniqueIndex"`
	Color string    `json:"color" db:"color" gorm:"size:7;not null;default:'#007bff'"`
}

func (t *Tag) BeforeCreate(*gorm.DB) error {
	assignID(&t.ID)
	return nil
}
