package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/photo"
	"github.com/fridgechef/backend/internal/service"
)

// multipartOverhead is allowed on top of the image size for form headers
const multipartOverhead = 64 * 1024

type ImageHandler struct {
	imageService service.IImageService
	limiter      *middleware.RateLimiter
	maxImageSize int64
	logger       *zap.Logger
}

// NewImageHandler creates the handler. Request bodies larger than
// maxImageSize plus form overhead are refused before they are read.
func NewImageHandler(imageService service.IImageService, limiter *middleware.RateLimiter, maxImageSize int64, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		limiter:      limiter,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	images := router.Group("/images")
	images.Use(optionalAuth)
	{
		images.POST("/analyze", h.limiter.RateLimitMiddleware(), h.Analyze)
		images.GET("/test", h.Test)
		images.GET("/quota", h.Quota)
		images.GET("/:image_id", h.GetImage)
	}
}

// Analyze accepts a multipart "file" and an optional "custom_prompt"
func (h *ImageHandler) Analyze(c *gin.Context) {
	bodyLimit := h.maxImageSize + multipartOverhead
	if c.Request.ContentLength > bodyLimit {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미지 파일이 필요합니다."})
		return
	}
	if fileHeader.Size > h.maxImageSize {
		h.tooLarge(c)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미지를 읽을 수 없습니다."})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "이미지를 읽을 수 없습니다."})
		return
	}

	in := service.AnalyzeInput{
		Data:         data,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		CustomPrompt: c.PostForm("custom_prompt"),
	}
	if user, ok := middleware.CurrentUser(c); ok {
		in.UserID = &user.ID
	}

	out, err := h.imageService.Analyze(c.Request.Context(), in)
	if err != nil {
		var verr *photo.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		h.logger.Error("image analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "이미지 분석 중 오류가 발생했습니다: " + err.Error()})
		return
	}

	body := gin.H{
		"success":     true,
		"image_id":    out.Upload.ID,
		"ingredients": out.Upload.Ingredients,
		"total_count": len(out.Upload.Ingredients),
		"model":       out.Result.Model,
	}
	if out.Result.Failed() {
		body["error"] = out.Result.Error
		body["raw_content"] = out.Result.RawContent
	}
	c.JSON(http.StatusOK, body)
}

func (h *ImageHandler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("파일 크기가 너무 큽니다. 최대 %.1fMB까지 가능합니다.", float64(h.maxImageSize)/(1024*1024)),
	})
}

func (h *ImageHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Images API is working!",
		"endpoint": "/api/images/analyze",
	})
}

// Quota reports how many analyses the caller has left today
func (h *ImageHandler) Quota(c *gin.Context) {
	remaining, reset, err := h.limiter.GetRemainingRequests(c.Request.Context(), middleware.ClientKey(c))
	if err != nil {
		h.logger.Warn("quota lookup failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "사용량을 확인할 수 없습니다."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":     h.limiter.Limit(),
		"remaining": remaining,
		"reset_at":  reset.Unix(),
		"enabled":   h.limiter.Enabled(),
	})
}

// GetImage returns a stored analysis. Uploads made while logged in are
// visible to their owner and to admins only.
func (h *ImageHandler) GetImage(c *gin.Context) {
	id, ok := uuidParam(c, "image_id", service.ErrImageNotFound)
	if !ok {
		return
	}

	upload, err := h.imageService.GetUpload(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if upload.UserID != nil {
		user, ok := middleware.CurrentUser(c)
		if !ok || (!user.IsAdmin && user.ID != *upload.UserID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "접근 권한이 없습니다."})
			return
		}
	}

	photoURL, err := h.imageService.PhotoURL(c.Request.Context(), upload)
	if err != nil {
		h.logger.Warn("failed to presign photo", zap.String("image_id", id.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                upload.ID,
		"user_id":           upload.UserID,
		"image_url":         upload.ImageURL,
		"photo_url":         photoURL,
		"uploaded_at":       upload.UploadedAt,
		"ingredients":       upload.Ingredients,
		"ingredients_count": len(upload.Ingredients),
	})
}
