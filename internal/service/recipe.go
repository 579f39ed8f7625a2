package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/types"
)

const maxInstructionLength = 500

type RecipeService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewRecipeService(db *gorm.DB, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, logger: logger}
}

// SaveRecipe stores a recipe for userID after trimming the title and steps
func (s *RecipeService) SaveRecipe(ctx context.Context, userID uuid.UUID, req *types.SaveRecipeRequest) (*models.SavedRecipe, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &InputError{Message: "레시피 제목을 입력해주세요"}
	}
	steps, err := cleanInstructions(req.Instructions)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return nil, ErrUserNotFound
	}

	ingredients := make(models.RecipeIngredients, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		available := true
		if ing.Available != nil {
			available = *ing.Available
		}
		ingredients = append(ingredients, models.RecipeIngredient{
			Name:      strings.TrimSpace(ing.Name),
			Quantity:  strings.TrimSpace(ing.Quantity),
			Available: available,
		})
	}

	recipe := &models.SavedRecipe{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		Ingredients:  ingredients,
		Instructions: steps,
		CookingTime:  req.CookingTime,
		Difficulty:   req.Difficulty,
		Calories:     req.Calories,
	}
	if err := db.Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}

	s.logger.Info("recipe saved", zap.String("user_id", userID.String()), zap.String("recipe_id", recipe.ID.String()))
	return recipe, nil
}

// ListRecipes returns a page of the user's recipes, newest first, and the
// user's total.
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID, page types.Page) ([]models.SavedRecipe, int64, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return nil, 0, ErrUserNotFound
	}

	var total int64
	if err := db.Model(&models.SavedRecipe{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}

	recipes := []models.SavedRecipe{}
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(page.Skip).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, total, nil
}

// GetRecipe loads one of the user's recipes
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.SavedRecipe, error) {
	var recipe models.SavedRecipe
	err := s.db.WithContext(ctx).First(&recipe, "id = ? AND user_id = ?", recipeID, userID).Error
	if err != nil {
		return nil, notFound(err, ErrRecipeNotFound)
	}
	return &recipe, nil
}

// DeleteRecipe removes one of the user's recipes
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", recipeID, userID).Delete(&models.SavedRecipe{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func cleanInstructions(steps []string) (models.StringArray, error) {
	cleaned := models.StringArray{}
	for _, step := range steps {
		if step = strings.TrimSpace(step); step != "" {
			cleaned = append(cleaned, step)
		}
	}
	if len(cleaned) == 0 {
		return nil, &InputError{Message: "유효한 조리 방법을 입력해주세요"}
	}
	for _, step := range cleaned {
		if len([]rune(step)) > maxInstructionLength {
			return nil, &InputError{Message: "각 조리 단계는 500자를 초과할 수 없습니다"}
		}
	}
	return cleaned, nil
}
