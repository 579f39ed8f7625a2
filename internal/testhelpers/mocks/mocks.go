// Package mocks holds testify mocks for the service interfaces
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/types"
)

// MockLLMService is a mock implementation of the LLM service
type MockLLMService struct {
	mock.Mock
}

var _ service.LLMServiceInterface = (*MockLLMService)(nil)

// AnalyzeImage mocks the AnalyzeImage method
func (m *MockLLMService) AnalyzeImage(ctx context.Context, imageBase64, customPrompt string) (*types.AnalysisResult, error) {
	args := m.Called(ctx, imageBase64, customPrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalysisResult), args.Error(1)
}

// GenerateRecipes mocks the GenerateRecipes method
func (m *MockLLMService) GenerateRecipes(ctx context.Context, ingredients []string, prefs *types.RecipePreferences) (*types.RecipeResult, error) {
	args := m.Called(ctx, ingredients, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeResult), args.Error(1)
}

// MockImageStore is a mock object store
type MockImageStore struct {
	mock.Mock
}

var _ service.ImageStore = (*MockImageStore)(nil)

// Put mocks the Put method
func (m *MockImageStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// PresignedURL mocks the PresignedURL method
func (m *MockImageStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
