package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. At most one user has IsOwner set.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Username     string    `json:"username" db:"username" gorm:"size:64;not null;uniqueIndex"`
	Email        string    `json:"-" db:"email" gorm:"size:120;not null;uniqueIndex"`
	Name         string    `json:"name" db:"name" gorm:"size:100;not null"`
	Bio          *string   `json:"bio,omitempty" db:"bio" gorm:"size:500"`
	ProfileImage *string   `json:"profile_image,omitempty" db:"profile_image" gorm:"size:255"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"size:255;not null"`
	IsOwner      bool      `json:"is_owner" db:"is_owner" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" gorm:"not null"`
}

// Account is how a user sees their own record: the public fields plus the e-mail address.
type Account struct {
	*User
	Email string `json:"email"`
}

func (u *User) Account() *Account {
	return &Account{User: u, Email: u.Email}
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
