package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ImageUpload records one analyzed fridge photo
type ImageUpload struct {
	ID          uuid.UUID    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      *uuid.UUID   `gorm:"type:varchar(36);index" json:"user_id"`
	ImageURL    string       `gorm:"size:512" json:"image_url"`
	UploadedAt  time.Time    `gorm:"autoCreateTime" json:"uploaded_at"`
	Ingredients []Ingredient `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
}

func (u *ImageUpload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Ingredient is a single item detected in an ImageUpload
type Ingredient struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name       string    `gorm:"size:100;not null;index" json:"name"`
	Quantity   string    `gorm:"size:50" json:"quantity"`
	Unit       string    `gorm:"size:20" json:"unit"`
	Freshness  string    `gorm:"size:20" json:"freshness"`
	Confidence float64   `json:"confidence"`
	ImageID    uuid.UUID `gorm:"type:varchar(36);index" json:"-"`
	DetectedAt time.Time `gorm:"autoCreateTime" json:"detected_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
