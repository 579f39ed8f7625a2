package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/database"
)

const apiVersion = "1.0.0"

type HealthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewHealthHandler(cfg *config.Config, db *gorm.DB) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db}
}

func (h *HealthHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "FridgeChef API is running! 🍳",
		"version": apiVersion,
		"status":  "healthy",
	})
}

// Health reports 503 when the database does not answer a ping
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code, dbState := "healthy", http.StatusOK, "connected"
	if err := database.HealthCheck(ctx, h.db); err != nil {
		status, code, dbState = "unhealthy", http.StatusServiceUnavailable, "disconnected"
	}

	openrouter := "not configured"
	if h.cfg.HasAPIKey() {
		openrouter = "configured"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"database":   dbState,
		"openrouter": openrouter,
		"mock_mode":  h.cfg.MockMode,
	})
}
