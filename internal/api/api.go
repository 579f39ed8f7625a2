package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/types"
)

const maxPageLimit = 100

// Deps are the services the HTTP layer is built from
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Auth    service.IAuthService
	Users   service.IUserService
	Recipes service.IRecipeService
	Images  service.IImageService
	LLM     service.LLMServiceInterface
	Limiter *middleware.RateLimiter
	Logger  *zap.Logger
}

// SetupAPI registers every route on router
func SetupAPI(router *gin.Engine, deps Deps) {
	requireAuth := middleware.AuthMiddleware(deps.Auth, deps.Users)
	optionalAuth := middleware.OptionalAuth(deps.Auth, deps.Users)

	NewHealthHandler(deps.Config, deps.DB).RegisterRoutes(router)

	api := router.Group("/api")
	{
		NewAuthHandler(deps.Auth, deps.Logger).RegisterRoutes(api)
		NewImageHandler(deps.Images, deps.Limiter, deps.Config.MaxImageSize, deps.Logger).RegisterRoutes(api, optionalAuth)
		NewRecipeHandler(deps.LLM, deps.Logger).RegisterRoutes(api)
		NewUserHandler(deps.Users, deps.Recipes).RegisterRoutes(api, requireAuth)
		NewAdminHandler(deps.Users).RegisterRoutes(api, requireAuth)
	}
}

// respondError maps service errors to status codes
func respondError(c *gin.Context, err error) {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Message})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "사용자를 찾을 수 없습니다."})
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "레시피를 찾을 수 없습니다."})
	case errors.Is(err, service.ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "이미지를 찾을 수 없습니다."})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미 등록된 이메일입니다."})
	case errors.Is(err, service.ErrSelfDelete):
		c.JSON(http.StatusBadRequest, gin.H{"error": "자기 자신은 삭제할 수 없습니다."})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "서버 오류가 발생했습니다."})
	}
}

// uuidParam parses a path parameter, replying 404 when it is not a UUID
func uuidParam(c *gin.Context, name string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// parsePage reads skip and limit. limit is capped at maxPageLimit.
func parsePage(c *gin.Context, defaultLimit int) (types.Page, bool) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "skip 값은 0 이상이어야 합니다."})
		return types.Page{}, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 값은 1 이상이어야 합니다."})
		return types.Page{}, false
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return types.Page{Skip: skip, Limit: limit}, true
}

func pageBody(page types.Page, total int64) gin.H {
	return gin.H{
		"total":    total,
		"skip":     page.Skip,
		"limit":    page.Limit,
		"has_more": int64(page.Skip+page.Limit) < total,
	}
}

func userInfo(u *models.User) types.UserInfo {
	return types.UserInfo{
		ID:        u.ID,
		Email:     u.EmailValue(),
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
