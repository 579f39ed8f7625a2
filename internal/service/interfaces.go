package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ResetPassword(ctx context.Context, email, newPassword string) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IUserService defines the interface for user and admin operations
type IUserService interface {
	CreateUser(ctx context.Context, req *types.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, req *types.UserPreferencesRequest) (*models.User, error)
	GetStats(ctx context.Context, id uuid.UUID) (*UserStats, error)
	ListUsers(ctx context.Context, page types.Page) ([]models.User, int64, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
	DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error)
}

// IRecipeService defines the interface for saved recipe operations
type IRecipeService interface {
	SaveRecipe(ctx context.Context, userID uuid.UUID, req *types.SaveRecipeRequest) (*models.SavedRecipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID, page types.Page) ([]models.SavedRecipe, int64, error)
	GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*models.SavedRecipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IImageService defines the interface for photo analysis
type IImageService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisOutcome, error)
	GetUpload(ctx context.Context, id uuid.UUID) (*models.ImageUpload, error)
	PhotoURL(ctx context.Context, upload *models.ImageUpload) (string, error)
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IUserService   = (*UserService)(nil)
	_ IRecipeService = (*RecipeService)(nil)
	_ IImageService  = (*ImageService)(nil)
	_ ImageStore     = (*S3ImageStore)(nil)
)
