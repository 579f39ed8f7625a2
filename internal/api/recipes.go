package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/types"
)

type RecipeHandler struct {
	llm    service.LLMServiceInterface
	logger *zap.Logger
}

func NewRecipeHandler(llm service.LLMServiceInterface, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{llm: llm, logger: logger}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", h.Generate)
	}
}

func (h *RecipeHandler) Generate(c *gin.Context) {
	var req types.GenerateRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredients := make([]string, 0, len(req.Ingredients))
	for _, name := range req.Ingredients {
		if name = strings.TrimSpace(name); name != "" {
			ingredients = append(ingredients, name)
		}
	}
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "재료를 최소 1개 이상 입력해주세요"})
		return
	}

	result, err := h.llm.GenerateRecipes(c.Request.Context(), ingredients, req.Preferences)
	if err != nil {
		h.logger.Error("recipe generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result.Failed() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error})
		return
	}

	c.JSON(http.StatusOK, result)
}
