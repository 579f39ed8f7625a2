package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/types"
)

// UserStats summarizes one user's activity
type UserStats struct {
	UserID            uuid.UUID `json:"user_id"`
	TotalSavedRecipes int64     `json:"total_saved_recipes"`
	TotalUploads      int64     `json:"total_uploads"`
	MemberSince       time.Time `json:"member_since"`
}

// SystemStats are the admin dashboard totals
type SystemStats struct {
	TotalUsers   int64 `json:"total_users"`
	TotalRecipes int64 `json:"total_recipes"`
	TotalImages  int64 `json:"total_images"`
	TotalAdmins  int64 `json:"total_admins"`
}

type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// CreateUser creates a profile without a password
func (s *UserService) CreateUser(ctx context.Context, req *types.CreateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &InputError{Message: "이름을 입력해주세요"}
	}

	user := &models.User{Name: name, Preferences: emptyPreferences()}
	if req.Preferences != nil {
		prefs, err := cleanPreferences(req.Preferences)
		if err != nil {
			return nil, err
		}
		user.Preferences = prefs
	}

	db := s.db.WithContext(ctx)
	if email := optionalEmail(req.Email); email != nil {
		taken, err := emailExists(db, *email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = email
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser loads a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByEmail loads a user by email address
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// UpdateUser applies the fields present in req
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if req.Email != nil {
		email := optionalEmail(req.Email)
		if email != nil {
			var count int64
			if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", *email, id).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
		}
		user.Email = email
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, &InputError{Message: "이름을 입력해주세요"}
		}
		user.Name = name
	}
	if req.Preferences != nil {
		prefs, err := cleanPreferences(req.Preferences)
		if err != nil {
			return nil, err
		}
		user.Preferences = prefs
	}

	if err := db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdatePreferences replaces the stored preferences
func (s *UserService) UpdatePreferences(ctx context.Context, id uuid.UUID, req *types.UserPreferencesRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	prefs, err := cleanPreferences(req)
	if err != nil {
		return nil, err
	}
	user.Preferences = prefs
	if err := s.db.WithContext(ctx).Model(user).Update("preferences", prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return user, nil
}

// GetStats counts the user's saved recipes and uploads
func (s *UserService) GetStats(ctx context.Context, id uuid.UUID) (*UserStats, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	stats := &UserStats{UserID: user.ID, MemberSince: user.CreatedAt}
	if err := db.Model(&models.SavedRecipe{}).Where("user_id = ?", id).Count(&stats.TotalSavedRecipes).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if err := db.Model(&models.ImageUpload{}).Where("user_id = ?", id).Count(&stats.TotalUploads).Error; err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}
	return stats, nil
}

// ListUsers returns a page of users, newest first, and the total count
func (s *UserService) ListUsers(ctx context.Context, page types.Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []models.User{}
	if err := db.Order("created_at DESC").Offset(page.Skip).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SystemStats counts users, recipes, uploads and admins
func (s *UserService) SystemStats(ctx context.Context) (*SystemStats, error) {
	db := s.db.WithContext(ctx)
	stats := &SystemStats{}

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&models.User{}), &stats.TotalUsers},
		{db.Model(&models.SavedRecipe{}), &stats.TotalRecipes},
		{db.Model(&models.ImageUpload{}), &stats.TotalImages},
		{db.Model(&models.User{}).Where("is_admin = ?", true), &stats.TotalAdmins},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute stats: %w", err)
		}
	}
	return stats, nil
}

// DeleteUser removes target and everything it owns. Admins cannot delete
// themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrSelfDelete
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", targetID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		uploads := tx.Model(&models.ImageUpload{}).Select("id").Where("user_id = ?", targetID)
		if err := tx.Where("image_id IN (?)", uploads).Delete(&models.Ingredient{}).Error; err != nil {
			return fmt.Errorf("failed to delete ingredients: %w", err)
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.ImageUpload{}).Error; err != nil {
			return fmt.Errorf("failed to delete uploads: %w", err)
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&models.SavedRecipe{}).Error; err != nil {
			return fmt.Errorf("failed to delete recipes: %w", err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", targetID.String()), zap.String("admin_id", actorID.String()))
	return nil
}

// SetAdmin grants or revokes admin rights
func (s *UserService) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("is_admin", isAdmin).Error; err != nil {
		return nil, fmt.Errorf("failed to update admin flag: %w", err)
	}
	user.IsAdmin = isAdmin

	s.logger.Info("admin flag changed", zap.String("user_id", id.String()), zap.Bool("is_admin", isAdmin))
	return user, nil
}

// cleanPreferences trims items, drops blanks and enforces the per-item length
func cleanPreferences(req *types.UserPreferencesRequest) (models.Preferences, error) {
	var err error
	prefs := models.Preferences{}
	lists := []struct {
		in  []string
		out *[]string
	}{
		{req.DietaryRestrictions, &prefs.DietaryRestrictions},
		{req.ExcludedIngredients, &prefs.ExcludedIngredients},
		{req.FavoriteCuisines, &prefs.FavoriteCuisines},
		{req.Allergies, &prefs.Allergies},
	}
	for _, l := range lists {
		if *l.out, err = cleanList(l.in); err != nil {
			return models.Preferences{}, err
		}
	}
	return prefs, nil
}

func cleanList(items []string) ([]string, error) {
	out := []string{}
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if len([]rune(item)) > 100 {
			return nil, &InputError{Message: "각 항목은 100자를 초과할 수 없습니다"}
		}
		out = append(out, item)
	}
	return out, nil
}

func optionalEmail(email *string) *string {
	if email == nil {
		return nil
	}
	e := normalizeEmail(*email)
	if e == "" {
		return nil
	}
	return &e
}

// notFound maps gorm.ErrRecordNotFound to sentinel and wraps anything else
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("query failed: %w", err)
}
