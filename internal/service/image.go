package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/photo"
	"github.com/fridgechef/backend/internal/types"
)

const presignTTL = 15 * time.Minute

// AnalyzeInput is one uploaded photo
type AnalyzeInput struct {
	Data         []byte
	ContentType  string
	CustomPrompt string
	// UserID is nil for anonymous uploads
	UserID *uuid.UUID
}

// AnalysisOutcome is the stored upload and what the model returned
type AnalysisOutcome struct {
	Upload *models.ImageUpload
	Result *types.AnalysisResult
}

// AnalysisError wraps a failure after the photo was accepted
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return e.Err.Error() }
func (e *AnalysisError) Unwrap() error { return e.Err }

// ImageService runs the photo analysis flow: validate, normalize, ask the
// vision model, persist, and optionally archive the photo.
type ImageService struct {
	db        *gorm.DB
	llm       LLMServiceInterface
	processor *photo.Processor
	store     ImageStore
	logger    *zap.Logger
}

// NewImageService creates the service. store may be nil.
func NewImageService(db *gorm.DB, llm LLMServiceInterface, processor *photo.Processor, store ImageStore, logger *zap.Logger) *ImageService {
	return &ImageService{
		db:        db,
		llm:       llm,
		processor: processor,
		store:     store,
		logger:    logger,
	}
}

// Analyze validates and analyzes a photo. Rejected uploads return a
// *photo.ValidationError; anything that fails later returns *AnalysisError.
func (s *ImageService) Analyze(ctx context.Context, in AnalyzeInput) (*AnalysisOutcome, error) {
	if err := s.processor.Validate(in.ContentType, int64(len(in.Data))); err != nil {
		return nil, err
	}
	processed, err := s.processor.Process(in.Data)
	if err != nil {
		var verr *photo.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, &AnalysisError{Err: err}
	}

	s.logger.Info("analyzing photo",
		zap.Int("width", processed.Width),
		zap.Int("height", processed.Height),
		zap.Int("jpeg_bytes", len(processed.JPEG)),
	)

	result, err := s.llm.AnalyzeImage(ctx, processed.Base64, in.CustomPrompt)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	if result.Failed() {
		s.logger.Warn("vision model returned malformed output", zap.String("raw_content", result.RawContent))
	}

	upload := &models.ImageUpload{UserID: in.UserID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(upload).Error; err != nil {
			return err
		}
		upload.Ingredients = make([]models.Ingredient, 0, len(result.Ingredients))
		for _, ing := range result.Ingredients {
			upload.Ingredients = append(upload.Ingredients, toIngredient(upload.ID, ing))
		}
		if len(upload.Ingredients) == 0 {
			return nil
		}
		return tx.Create(&upload.Ingredients).Error
	})
	if err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("failed to save analysis: %w", err)}
	}

	s.archive(ctx, upload, processed.JPEG)

	return &AnalysisOutcome{Upload: upload, Result: result}, nil
}

// archive copies the photo to object storage. Failures are logged only.
func (s *ImageService) archive(ctx context.Context, upload *models.ImageUpload, jpeg []byte) {
	if s.store == nil {
		return
	}
	url, err := s.store.Put(ctx, ImageObjectKey(upload.ID), jpeg, "image/jpeg")
	if err != nil {
		s.logger.Warn("photo upload failed", zap.String("image_id", upload.ID.String()), zap.Error(err))
		return
	}
	if err := s.db.WithContext(ctx).Model(upload).Update("image_url", url).Error; err != nil {
		s.logger.Warn("failed to record photo url", zap.String("image_id", upload.ID.String()), zap.Error(err))
		return
	}
	upload.ImageURL = url
}

// GetUpload loads an upload with its ingredients
func (s *ImageService) GetUpload(ctx context.Context, id uuid.UUID) (*models.ImageUpload, error) {
	var upload models.ImageUpload
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("detected_at, name") }).
		First(&upload, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrImageNotFound)
	}
	return &upload, nil
}

// PhotoURL returns a short-lived link to the stored photo, or "" when the
// photo was never archived.
func (s *ImageService) PhotoURL(ctx context.Context, upload *models.ImageUpload) (string, error) {
	if s.store == nil || upload.ImageURL == "" {
		return "", nil
	}
	return s.store.PresignedURL(ctx, ImageObjectKey(upload.ID), presignTTL)
}

func toIngredient(imageID uuid.UUID, ing types.DetectedIngredient) models.Ingredient {
	freshness := ing.Freshness
	if freshness == "" {
		freshness = types.FreshnessModerate
	}
	return models.Ingredient{
		Name:       ing.Name,
		Quantity:   ing.Quantity,
		Freshness:  freshness,
		Confidence: ing.Confidence,
		ImageID:    imageID,
	}
}
