package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/photo"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/testhelpers"
	"github.com/fridgechef/backend/internal/testhelpers/mocks"
	"github.com/fridgechef/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	llm    *mocks.MockLLMService
	cfg    *config.Config
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db := testhelpers.SetupSQLiteDB(t)
	logger := zap.NewNop()
	cfg := &config.Config{
		Environment:       config.Test,
		MockMode:          true,
		MaxImageSize:      1024 * 1024,
		MaxRequestsPerDay: 50,
	}
	llm := &mocks.MockLLMService{}
	auth := service.NewAuthService(db, "test-secret", time.Hour, logger)
	processor := photo.NewProcessor([]string{"image/jpeg", "image/png", "image/jpg"}, 1024*1024, 256)

	router := gin.New()
	SetupAPI(router, Deps{
		Config:  cfg,
		DB:      db,
		Auth:    auth,
		Users:   service.NewUserService(db, logger),
		Recipes: service.NewRecipeService(db, logger),
		Images:  service.NewImageService(db, llm, processor, nil, logger),
		LLM:     llm,
		Limiter: middleware.NewAnalysisRateLimiter(nil, cfg.MaxRequestsPerDay, logger),
		Logger:  logger,
	})

	return &testAPI{router: router, db: db, auth: auth, llm: llm, cfg: cfg}
}

// register creates a password account and returns it with a bearer token
func (a *testAPI) register(t *testing.T, email string, admin bool) (*models.User, string) {
	t.Helper()
	user, token, err := a.auth.Register(context.Background(), &types.RegisterRequest{
		Email:    email,
		Password: "password123",
		Name:     "테스터",
	})
	require.NoError(t, err)
	if admin {
		require.NoError(t, a.db.Model(user).Update("is_admin", true).Error)
		user.IsAdmin = true
	}
	return user, token
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestAPI(t)

	t.Run("root", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "1.0.0", body["version"])
	})

	t.Run("health reports database and provider state", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "connected", body["database"])
		assert.Equal(t, "not configured", body["openrouter"])
		assert.Equal(t, true, body["mock_mode"])
	})

	t.Run("health is unavailable without a database", func(t *testing.T) {
		sqlDB, err := a.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		w := a.do(t, http.MethodGet, "/health", nil, "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "disconnected", decode(t, w)["database"])
	})
}

func TestAuthEndpoints(t *testing.T) {
	a := newTestAPI(t)

	t.Run("register returns a bearer token", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/register", gin.H{
			"email":    "Cook@Example.com",
			"password": "password123",
			"name":     "요리사",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, "bearer", body["token_type"])
		assert.NotEmpty(t, body["access_token"])
		user := body["user"].(map[string]interface{})
		assert.Equal(t, "cook@example.com", user["email"])
		assert.Equal(t, false, user["is_admin"])
	})

	t.Run("register rejects a duplicate email", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/register", gin.H{
			"email":    "cook@example.com",
			"password": "password123",
			"name":     "다른 요리사",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "이미 등록된 이메일입니다", decode(t, w)["error"])
	})

	t.Run("register validates the body", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/register", gin.H{
			"email":    "not-an-email",
			"password": "short",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login succeeds with the right password", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "cook@example.com",
			"password": "password123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotEmpty(t, decode(t, w)["access_token"])
	})

	t.Run("login rejects a wrong password", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "cook@example.com",
			"password": "wrong-password",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
