package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fridgechef/backend/internal/types"
)

// MockModel identifies results produced in mock mode
const MockModel = "mock"

// MockLLMService returns fixed data without any network access. It is used
// for local development and demos when MOCK_MODE is set.
type MockLLMService struct {
	logger *zap.Logger
}

func NewMockLLMService(logger *zap.Logger) *MockLLMService {
	return &MockLLMService{logger: logger}
}

func (m *MockLLMService) AnalyzeImage(ctx context.Context, imageBase64, customPrompt string) (*types.AnalysisResult, error) {
	m.logger.Info("returning mock ingredients")
	return &types.AnalysisResult{Ingredients: mockIngredients(), Model: MockModel}, nil
}

func (m *MockLLMService) GenerateRecipes(ctx context.Context, ingredients []string, prefs *types.RecipePreferences) (*types.RecipeResult, error) {
	m.logger.Info("returning mock recipes", zap.Strings("ingredients", ingredients))
	return &types.RecipeResult{Recipes: mockRecipes()}, nil
}

func mockIngredients() []types.DetectedIngredient {
	return []types.DetectedIngredient{
		{Name: "양배추", Quantity: "1통", Freshness: types.FreshnessFresh, Confidence: 0.95},
		{Name: "계란", Quantity: "10개", Freshness: types.FreshnessFresh, Confidence: 0.92},
		{Name: "오이", Quantity: "3개", Freshness: types.FreshnessModerate, Confidence: 0.88},
		{Name: "토마토", Quantity: "5개", Freshness: types.FreshnessFresh, Confidence: 0.90},
		{Name: "청양고추", Quantity: "한 줌", Freshness: types.FreshnessModerate, Confidence: 0.85},
		{Name: "파", Quantity: "2대", Freshness: types.FreshnessExpiring, Confidence: 0.78},
	}
}

func mockRecipes() []types.GeneratedRecipe {
	return []types.GeneratedRecipe{
		{
			Title:       "오이무침",
			Description: "신선한 오이로 만드는 상큼한 반찬",
			Ingredients: []types.RecipeIngredient{
				{Name: "오이", Quantity: "2개", Available: true},
				{Name: "고춧가루", Quantity: "1큰술", Available: false},
				{Name: "식초", Quantity: "2큰술", Available: false},
				{Name: "설탕", Quantity: "1큰술", Available: false},
			},
			Instructions: []string{
				"오이를 깨끗이 씻어 얇게 썰어주세요",
				"소금을 뿌려 10분간 절여주세요",
				"물기를 짜고 양념(고춧가루, 식초, 설탕)을 넣어 버무립니다",
				"마지막으로 참기름을 넣어 마무리합니다",
			},
			CookingTime: 15,
			Difficulty:  "easy",
			Calories:    45,
		},
		{
			Title:       "계란볶음밥",
			Description: "냉장고 재료로 간단하게 만드는 볶음밥",
			Ingredients: []types.RecipeIngredient{
				{Name: "계란", Quantity: "3개", Available: true},
				{Name: "파", Quantity: "1대", Available: true},
				{Name: "밥", Quantity: "2공기", Available: false},
				{Name: "간장", Quantity: "2큰술", Available: false},
			},
			Instructions: []string{
				"팬에 기름을 두르고 계란을 스크램블해주세요",
				"파를 송송 썰어 넣고 볶습니다",
				"밥을 넣고 계란과 골고루 섞어주세요",
				"간장으로 간을 맞추고 완성합니다",
			},
			CookingTime: 10,
			Difficulty:  "easy",
			Calories:    420,
		},
		{
			Title:       "토마토 계란볶음",
			Description: "중국식 가정요리의 대표 메뉴",
			Ingredients: []types.RecipeIngredient{
				{Name: "토마토", Quantity: "3개", Available: true},
				{Name: "계란", Quantity: "4개", Available: true},
				{Name: "설탕", Quantity: "1큰술", Available: false},
				{Name: "소금", Quantity: "약간", Available: false},
			},
			Instructions: []string{
				"토마토를 큼직하게 썰어주세요",
				"계란을 풀어 스크램블을 만들고 따로 덜어둡니다",
				"같은 팬에 토마토를 넣고 볶다가 설탕을 넣습니다",
				"토마토가 무르면 계란을 넣고 가볍게 섞어 완성합니다",
			},
			CookingTime: 20,
			Difficulty:  "easy",
			Calories:    280,
		},
	}
}
