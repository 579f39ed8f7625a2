package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. Email and PasswordHash are nullable: profiles created
// through /api/users have neither until a password is set.
type User struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	Email        *string     `gorm:"size:255;uniqueIndex" json:"email"`
	Name         string      `gorm:"size:100" json:"name"`
	PasswordHash *string     `gorm:"size:255" json:"-"`
	IsAdmin      bool        `gorm:"not null;default:false" json:"is_admin"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	ImageUploads []ImageUpload `gorm:"foreignKey:UserID" json:"-"`
	SavedRecipes []SavedRecipe `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate assigns an ID when the caller did not
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPassword reports whether the account can log in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// EmailValue returns the email or "" for profiles without one
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
