package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	Name     string `json:"name" binding:"required,min=1,max=50"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PasswordResetRequest sets a first password on a passwordless account
type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=100"`
}

// UserInfo is the public part of a user returned with tokens
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is returned by register and login
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserInfo `json:"user"`
}

// UserPreferencesRequest replaces a user's stored preferences
type UserPreferencesRequest struct {
	DietaryRestrictions []string `json:"dietary_restrictions" binding:"max=10,dive,max=100"`
	ExcludedIngredients []string `json:"excluded_ingredients" binding:"max=50,dive,max=100"`
	FavoriteCuisines    []string `json:"favorite_cuisines" binding:"max=20,dive,max=100"`
	Allergies           []string `json:"allergies" binding:"max=20,dive,max=100"`
}

// CreateUserRequest creates a passwordless profile
type CreateUserRequest struct {
	Email       *string                 `json:"email" binding:"omitempty,max=255"`
	Name        string                  `json:"name" binding:"required,min=1,max=100"`
	Preferences *UserPreferencesRequest `json:"preferences"`
}

// UpdateUserRequest changes only the fields that are present
type UpdateUserRequest struct {
	Email       *string                 `json:"email" binding:"omitempty,max=255"`
	Name        *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	Preferences *UserPreferencesRequest `json:"preferences"`
}

// SaveRecipeIngredient is one ingredient line of a recipe being saved
type SaveRecipeIngredient struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Quantity  string `json:"quantity" binding:"required,min=1,max=50"`
	Available *bool  `json:"available"`
}

// SaveRecipeRequest stores a generated recipe for a user
type SaveRecipeRequest struct {
	Title        string                 `json:"title" binding:"required,min=1,max=200"`
	Description  string                 `json:"description" binding:"max=500"`
	Ingredients  []SaveRecipeIngredient `json:"ingredients" binding:"required,min=1,max=50,dive"`
	Instructions []string               `json:"instructions" binding:"required,min=1,max=30"`
	CookingTime  int                    `json:"cooking_time" binding:"required,gt=0,lte=1440"`
	Difficulty   string                 `json:"difficulty" binding:"required,oneof=easy medium hard"`
	Calories     *int                   `json:"calories" binding:"omitempty,gte=0,lte=10000"`
}

// GenerateRecipesRequest asks for recipes from a list of ingredient names
type GenerateRecipesRequest struct {
	Ingredients []string           `json:"ingredients" binding:"required,min=1"`
	Preferences *RecipePreferences `json:"preferences"`
}

// Page is the skip/limit pair used by list endpoints
type Page struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}
