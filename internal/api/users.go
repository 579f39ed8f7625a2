package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/types"
)

const defaultRecipePageLimit = 10

type UserHandler struct {
	userService   service.IUserService
	recipeService service.IRecipeService
}

func NewUserHandler(userService service.IUserService, recipeService service.IRecipeService) *UserHandler {
	return &UserHandler{userService: userService, recipeService: recipeService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/users")
	users.POST("", h.CreateUser)

	authed := users.Group("")
	authed.Use(requireAuth)
	{
		authed.GET("/by-email/:email", h.GetUserByEmail)
		authed.GET("/:id", h.GetUser)
		authed.PUT("/:id", h.UpdateUser)
		authed.PUT("/:id/preferences", h.UpdatePreferences)
		authed.GET("/:id/stats", h.GetStats)

		authed.POST("/:id/recipes", h.SaveRecipe)
		authed.GET("/:id/recipes", h.ListRecipes)
		authed.GET("/:id/recipes/:recipe_id", h.GetRecipe)
		authed.DELETE("/:id/recipes/:recipe_id", h.DeleteRecipe)
	}
}

// CreateUser makes a passwordless profile
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccess(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}

	var req types.UserPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdatePreferences(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": user.Preferences,
	})
}

func (h *UserHandler) GetStats(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}

	stats, err := h.userService.GetStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *UserHandler) SaveRecipe(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}

	var req types.SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.SaveRecipe(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *UserHandler) ListRecipes(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	page, ok := parsePage(c, defaultRecipePageLimit)
	if !ok {
		return
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}

	body := pageBody(page, total)
	body["recipes"] = recipes
	c.JSON(http.StatusOK, body)
}

func (h *UserHandler) GetRecipe(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "recipe_id", service.ErrRecipeNotFound)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *UserHandler) DeleteRecipe(c *gin.Context) {
	id, ok := h.target(c)
	if !ok {
		return
	}
	recipeID, ok := uuidParam(c, "recipe_id", service.ErrRecipeNotFound)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), id, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "레시피가 삭제되었습니다.",
	})
}

// target parses :id and checks the caller may act on that user
func (h *UserHandler) target(c *gin.Context) (uuid.UUID, bool) {
	id, ok := uuidParam(c, "id", service.ErrUserNotFound)
	if !ok {
		return uuid.Nil, false
	}
	if !canAccess(c, id) {
		return uuid.Nil, false
	}
	return id, true
}

// canAccess allows the user themself and admins, replying 403 otherwise
func canAccess(c *gin.Context, userID uuid.UUID) bool {
	user, ok := middleware.CurrentUser(c)
	if ok && isOwnerOrAdmin(user, userID) {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "접근 권한이 없습니다."})
	return false
}

func isOwnerOrAdmin(user *models.User, userID uuid.UUID) bool {
	return user.IsAdmin || user.ID == userID
}
