package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedRecipe is a generated recipe a user chose to keep
type SavedRecipe struct {
	ID           uuid.UUID         `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title        string            `gorm:"size:200;not null" json:"title"`
	Description  string            `gorm:"size:500" json:"description"`
	Ingredients  RecipeIngredients `gorm:"not null" json:"ingredients"`
	Instructions StringArray       `gorm:"not null" json:"instructions"`
	CookingTime  int               `json:"cooking_time"`
	Difficulty   string            `gorm:"size:10" json:"difficulty"`
	Calories     *int              `json:"calories"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}

func (r *SavedRecipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&ImageUpload{},
		&Ingredient{},
		&SavedRecipe{},
	}
}
