package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/types"
)

// LLMServiceInterface is implemented by the OpenRouter client and its mock
type LLMServiceInterface interface {
	AnalyzeImage(ctx context.Context, imageBase64, customPrompt string) (*types.AnalysisResult, error)
	GenerateRecipes(ctx context.Context, ingredients []string, prefs *types.RecipePreferences) (*types.RecipeResult, error)
}

const imageAnalysisPrompt = `이 냉장고 사진을 분석하여 보이는 모든 재료를 추출해주세요.

다음 JSON 형식으로만 응답해주세요 (다른 설명 없이):
{
  "ingredients": [
    {
      "name": "재료명",
      "quantity": "수량 (예: 2개, 500g, 1팩)",
      "freshness": "신선도 (fresh/moderate/expiring 중 하나)",
      "confidence": 0.95
    }
  ]
}

주의사항:
- 명확히 보이는 재료만 포함
- 한글 재료명 사용
- 수량은 대략적으로 추정`

const recipePromptTemplate = `다음 재료를 사용하여 만들 수 있는 레시피 3개를 추천해주세요:
재료: %s

다음 JSON 형식으로만 응답해주세요 (다른 설명 없이):
{
  "recipes": [
    {
      "title": "요리 이름",
      "description": "한 줄 설명",
      "ingredients": [
        {"name": "재료명", "quantity": "수량", "available": true}
      ],
      "instructions": ["단계1", "단계2", "단계3"],
      "cooking_time": 30,
      "difficulty": "easy",
      "calories": 350
    }
  ]
}

조건:
- 주어진 재료를 최대한 활용
- 부족한 재료는 available: false로 표시
- 난이도는 easy/medium/hard 중 선택
- 조리시간은 분 단위
- 한국 요리 위주로 추천`

const (
	defaultFreshness  = types.FreshnessModerate
	defaultConfidence = 0.8
	logPreviewRunes   = 500
)

// NewLLMService picks the implementation once, from configuration
func NewLLMService(cfg *config.Config, logger *zap.Logger, opts ...ChatClientOption) (LLMServiceInterface, error) {
	if cfg.MockMode {
		logger.Info("LLM mock mode enabled, no requests will reach OpenRouter")
		return NewMockLLMService(logger), nil
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, errors.New("OPENROUTER_API_KEY must be set unless MOCK_MODE is enabled")
	}
	return NewOpenRouterService(cfg, logger, opts...), nil
}

// OpenRouterService talks to the OpenRouter chat-completions API
type OpenRouterService struct {
	chat            *ChatClient
	imageModel      string
	textModel       string
	analysisTimeout time.Duration
	recipeTimeout   time.Duration
	logger          *zap.Logger
}

// NewOpenRouterService creates the real LLM client
func NewOpenRouterService(cfg *config.Config, logger *zap.Logger, opts ...ChatClientOption) *OpenRouterService {
	return &OpenRouterService{
		chat:            NewChatClient(cfg.OpenRouterAPIURL, cfg.OpenRouterAPIKey, cfg.ConnectTimeout, logger, opts...),
		imageModel:      cfg.ImageModel,
		textModel:       cfg.TextModel,
		analysisTimeout: cfg.AnalysisTimeout,
		recipeTimeout:   cfg.RecipeTimeout,
		logger:          logger,
	}
}

// AnalyzeImage asks the vision model for the ingredients in a JPEG photo
func (s *OpenRouterService) AnalyzeImage(ctx context.Context, imageBase64, customPrompt string) (*types.AnalysisResult, error) {
	prompt := imageAnalysisPrompt
	if custom := strings.TrimSpace(customPrompt); custom != "" {
		prompt += "\n\n추가 지시사항:\n" + custom
	}

	req := ChatRequest{
		Model: s.imageModel,
		Messages: []ChatMessage{{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: "data:image/jpeg;base64," + imageBase64}},
			},
		}},
	}

	content, err := s.chat.Complete(ctx, req, s.analysisTimeout)
	if err != nil {
		s.logger.Error("image analysis failed", zap.Error(err))
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}
	s.logger.Info("image analysis response", zap.String("preview", excerpt(content, logPreviewRunes)))

	result := &types.AnalysisResult{
		Ingredients: []types.DetectedIngredient{},
		Model:       s.imageModel,
	}
	extraction := ExtractJSON(content)
	if extraction.Malformed != nil {
		result.MalformedOutput = extraction.Malformed
		s.logger.Warn("image analysis returned malformed JSON")
		return result, nil
	}

	result.Ingredients = decodeIngredients(extraction.Data)
	s.logger.Info("parsed ingredients", zap.Int("count", len(result.Ingredients)))
	return result, nil
}

// GenerateRecipes asks the text model for recipes using the given ingredients
func (s *OpenRouterService) GenerateRecipes(ctx context.Context, ingredients []string, prefs *types.RecipePreferences) (*types.RecipeResult, error) {
	req := ChatRequest{
		Model:    s.textModel,
		Messages: []ChatMessage{{Role: "user", Content: buildRecipePrompt(ingredients, prefs)}},
	}

	content, err := s.chat.Complete(ctx, req, s.recipeTimeout)
	if err != nil {
		s.logger.Error("recipe generation failed", zap.Error(err))
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}

	extraction := ExtractJSON(content)
	if extraction.Malformed != nil {
		s.logger.Warn("recipe generation returned malformed JSON",
			zap.String("preview", extraction.Malformed.RawContent))
		return &types.RecipeResult{
			Recipes:         []types.GeneratedRecipe{},
			MalformedOutput: extraction.Malformed,
		}, nil
	}

	s.logger.Info("generated recipes", zap.Int("count", len(listField(extraction.Data, "recipes"))))
	return &types.RecipeResult{Document: extraction.Data}, nil
}

func buildRecipePrompt(ingredients []string, prefs *types.RecipePreferences) string {
	prompt := fmt.Sprintf(recipePromptTemplate, strings.Join(ingredients, ", "))
	if prefs == nil {
		return prompt
	}
	if len(prefs.DietaryRestrictions) > 0 {
		prompt += "\n식단 제한: " + strings.Join(prefs.DietaryRestrictions, ", ")
	}
	if len(prefs.ExcludedIngredients) > 0 {
		prompt += "\n제외할 재료: " + strings.Join(prefs.ExcludedIngredients, ", ")
	}
	return prompt
}

// listField returns the elements of an array-valued top-level key. A missing
// key, a non-object document or a non-array value all yield nil.
func listField(data json.RawMessage, key string) []json.RawMessage {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(doc[key], &items); err != nil {
		return nil
	}
	return items
}

type rawIngredient struct {
	Name       string          `json:"name"`
	Quantity   json.RawMessage `json:"quantity"`
	Freshness  string          `json:"freshness"`
	Confidence *float64        `json:"confidence"`
}

func decodeIngredients(data json.RawMessage) []types.DetectedIngredient {
	out := []types.DetectedIngredient{}
	for _, item := range listField(data, "ingredients") {
		var raw rawIngredient
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		name := strings.TrimSpace(raw.Name)
		if name == "" {
			continue
		}
		out = append(out, types.DetectedIngredient{
			Name:       name,
			Quantity:   looseString(raw.Quantity),
			Freshness:  normalizeFreshness(raw.Freshness),
			Confidence: clampConfidence(raw.Confidence),
		})
	}
	return out
}

// looseString renders a JSON string or number as text
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func normalizeFreshness(f string) string {
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case types.FreshnessFresh, types.FreshnessModerate, types.FreshnessExpiring:
		return f
	default:
		return defaultFreshness
	}
}

func clampConfidence(c *float64) float64 {
	if c == nil {
		return defaultConfidence
	}
	switch {
	case *c < 0:
		return 0
	case *c > 1:
		return 1
	default:
		return *c
	}
}
