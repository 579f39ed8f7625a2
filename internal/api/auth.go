package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "이미 등록된 이메일입니다"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        userInfo(user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "이메일 또는 비밀번호가 올바르지 않습니다"})
		return
	case errors.Is(err, service.ErrPasswordNotSet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "비밀번호가 설정되지 않은 계정입니다. 비밀번호 재설정을 진행해주세요."})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	h.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        userInfo(user),
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req types.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "해당 이메일의 사용자를 찾을 수 없습니다"})
		return
	case errors.Is(err, service.ErrPasswordAlreadySet):
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미 비밀번호가 설정된 계정입니다. 로그인 후 설정에서 비밀번호를 변경하세요."})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "비밀번호가 성공적으로 설정되었습니다. 이제 로그인할 수 있습니다."})
}
