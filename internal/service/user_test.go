package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/testhelpers"
	"github.com/fridgechef/backend/internal/types"
)

func newTestUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := testhelpers.SetupSQLiteDB(t)
	return NewUserService(db, zap.NewNop()), db
}

func strPtr(s string) *string { return &s }

func TestUserService_CreateAndLookup(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, &types.CreateUserRequest{
		Name:  "  Cook ",
		Email: strPtr("Cook@Example.com"),
		Preferences: &types.UserPreferencesRequest{
			Allergies: []string{" 땅콩 ", "", "   "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Cook", user.Name)
	assert.False(t, user.HasPassword())
	assert.Equal(t, []string{"땅콩"}, user.Preferences.Allergies)
	assert.Equal(t, []string{}, user.Preferences.DietaryRestrictions)

	byEmail, err := s.GetUserByEmail(ctx, "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"땅콩"}, byID.Preferences.Allergies)

	_, err = s.CreateUser(ctx, &types.CreateUserRequest{Name: "Dup", Email: strPtr("cook@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = s.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Profiles without an email do not collide with each other.
	_, err = s.CreateUser(ctx, &types.CreateUserRequest{Name: "Anon 1"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &types.CreateUserRequest{Name: "Anon 2", Email: strPtr("")})
	require.NoError(t, err)

	var blank *InputError
	_, err = s.CreateUser(ctx, &types.CreateUserRequest{Name: "   "})
	assert.ErrorAs(t, err, &blank)
}

func TestUserService_UpdateUser(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	a, err := s.CreateUser(ctx, &types.CreateUserRequest{Name: "A", Email: strPtr("a@example.com")})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &types.CreateUserRequest{Name: "B", Email: strPtr("b@example.com")})
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, a.ID, &types.UpdateUserRequest{Email: strPtr("b@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting the current email is not a conflict.
	updated, err := s.UpdateUser(ctx, a.ID, &types.UpdateUserRequest{
		Email: strPtr("a@example.com"),
		Name:  strPtr(" Alice "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "a@example.com", updated.EmailValue())

	_, err = s.UpdateUser(ctx, uuid.New(), &types.UpdateUserRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UpdatePreferences(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, &types.CreateUserRequest{Name: "Cook"})
	require.NoError(t, err)

	_, err = s.UpdatePreferences(ctx, user.ID, &types.UserPreferencesRequest{
		DietaryRestrictions: []string{"vegetarian", " "},
		ExcludedIngredients: []string{" 고수 "},
		FavoriteCuisines:    []string{"한식"},
	})
	require.NoError(t, err)

	stored, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{
		DietaryRestrictions: []string{"vegetarian"},
		ExcludedIngredients: []string{"고수"},
		FavoriteCuisines:    []string{"한식"},
		Allergies:           []string{},
	}, stored.Preferences)

	var inputErr *InputError
	_, err = s.UpdatePreferences(ctx, user.ID, &types.UserPreferencesRequest{
		Allergies: []string{strings.Repeat("가", 101)},
	})
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "각 항목은 100자를 초과할 수 없습니다", inputErr.Message)
}

func seedUserActivity(t *testing.T, db *gorm.DB, userID uuid.UUID, recipes, uploads int) {
	t.Helper()
	for i := 0; i < recipes; i++ {
		require.NoError(t, db.Create(&models.SavedRecipe{
			UserID:       userID,
			Title:        "recipe",
			Ingredients:  models.RecipeIngredients{{Name: "egg", Quantity: "1"}},
			Instructions: models.StringArray{"cook"},
			CookingTime:  10,
			Difficulty:   "easy",
		}).Error)
	}
	for i := 0; i < uploads; i++ {
		id := userID
		upload := &models.ImageUpload{UserID: &id}
		require.NoError(t, db.Create(upload).Error)
		require.NoError(t, db.Create(&models.Ingredient{Name: "egg", ImageID: upload.ID, Freshness: "fresh", Confidence: 0.9}).Error)
	}
}

func TestUserService_Stats(t *testing.T) {
	s, db := newTestUserService(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, &types.CreateUserRequest{Name: "Cook"})
	require.NoError(t, err)
	admin := &models.User{Name: "Admin", IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)
	seedUserActivity(t, db, user.ID, 3, 2)

	stats, err := s.GetStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stats.UserID)
	assert.Equal(t, int64(3), stats.TotalSavedRecipes)
	assert.Equal(t, int64(2), stats.TotalUploads)
	assert.WithinDuration(t, user.CreatedAt, stats.MemberSince, time.Second)

	system, err := s.SystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SystemStats{TotalUsers: 2, TotalRecipes: 3, TotalImages: 2, TotalAdmins: 1}, system)
}

func TestUserService_ListUsers(t *testing.T) {
	s, db := newTestUserService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.User{Name: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Hour)}).Error)
	}

	users, total, err := s.ListUsers(ctx, types.Page{Skip: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, users, 2)
	assert.Equal(t, "d", users[0].Name)
	assert.Equal(t, "c", users[1].Name)
}

func TestUserService_DeleteUser(t *testing.T) {
	s, db := newTestUserService(t)
	ctx := context.Background()

	admin := &models.User{Name: "Admin", IsAdmin: true}
	require.NoError(t, db.Create(admin).Error)
	victim := &models.User{Name: "Victim"}
	require.NoError(t, db.Create(victim).Error)
	bystander := &models.User{Name: "Bystander"}
	require.NoError(t, db.Create(bystander).Error)
	seedUserActivity(t, db, victim.ID, 2, 2)
	seedUserActivity(t, db, bystander.ID, 1, 1)

	assert.ErrorIs(t, s.DeleteUser(ctx, admin.ID, admin.ID), ErrSelfDelete)
	assert.ErrorIs(t, s.DeleteUser(ctx, admin.ID, uuid.New()), ErrUserNotFound)

	require.NoError(t, s.DeleteUser(ctx, admin.ID, victim.ID))

	_, err := s.GetUser(ctx, victim.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&models.SavedRecipe{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.ImageUpload{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserService_SetAdmin(t *testing.T) {
	s, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, &types.CreateUserRequest{Name: "Cook"})
	require.NoError(t, err)

	updated, err := s.SetAdmin(ctx, user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)

	stored, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin)

	_, err = s.SetAdmin(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
