package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/service"
)

const defaultAdminPageLimit = 20

type AdminHandler struct {
	userService service.IUserService
}

func NewAdminHandler(userService service.IUserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	admin := router.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/stats", h.Stats)
		admin.DELETE("/users/:user_id", h.DeleteUser)
		admin.PUT("/users/:user_id/admin", h.SetAdmin)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, ok := parsePage(c, defaultAdminPageLimit)
	if !ok {
		return
	}

	users, total, err := h.userService.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	body := pageBody(page, total)
	body["users"] = users
	c.JSON(http.StatusOK, body)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.userService.SystemStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "user_id", service.ErrUserNotFound)
	if !ok {
		return
	}
	actor, _ := middleware.CurrentUser(c)

	if err := h.userService.DeleteUser(c.Request.Context(), actor.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "사용자가 삭제되었습니다.",
	})
}

func (h *AdminHandler) SetAdmin(c *gin.Context) {
	id, ok := uuidParam(c, "user_id", service.ErrUserNotFound)
	if !ok {
		return
	}
	isAdmin, err := strconv.ParseBool(c.Query("is_admin"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_admin 값은 true 또는 false여야 합니다."})
		return
	}

	user, err := h.userService.SetAdmin(c.Request.Context(), id, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	action := "부여"
	if !isAdmin {
		action = "해제"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("관리자 권한이 %s되었습니다.", action),
		"user":    user,
	})
}
