package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fridgechef/backend/internal/models"
	"github.com/fridgechef/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	tokens map[string]uuid.UUID
}

func (v *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	id, ok := v.tokens[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	claims := &types.TokenClaims{Type: types.TokenTypeAccess}
	claims.Subject = id.String()
	return claims, nil
}

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

type authFixture struct {
	validator *stubValidator
	users     stubUsers
	member    *models.User
	admin     *models.User
}

func newAuthFixture() *authFixture {
	member := &models.User{ID: uuid.New(), Name: "member"}
	admin := &models.User{ID: uuid.New(), Name: "admin", IsAdmin: true}
	ghost := uuid.New()
	return &authFixture{
		validator: &stubValidator{tokens: map[string]uuid.UUID{
			"member-token": member.ID,
			"admin-token":  admin.ID,
			"ghost-token":  ghost,
		}},
		users:  stubUsers{member.ID: member, admin.ID: admin},
		member: member,
		admin:  admin,
	}
}

func whoAmI(c *gin.Context) {
	if user, ok := CurrentUser(c); ok {
		c.JSON(http.StatusOK, gin.H{"name": user.Name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": "anonymous"})
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.GET("/me", AuthMiddleware(f.validator, f.users), whoAmI)
	r.GET("/admin", AuthMiddleware(f.validator, f.users), RequireAdmin(), whoAmI)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
		body   string
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, "인증이 필요합니다"},
		{"unknown token", "/me", "bogus", http.StatusUnauthorized, "인증이 만료되었거나 유효하지 않습니다"},
		{"deleted user", "/me", "ghost-token", http.StatusUnauthorized, "사용자를 찾을 수 없습니다"},
		{"valid token", "/me", "member-token", http.StatusOK, `"member"`},
		{"member on admin route", "/admin", "member-token", http.StatusForbidden, "관리자 권한이 필요합니다"},
		{"admin on admin route", "/admin", "admin-token", http.StatusOK, `"admin"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Token member-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.GET("/me", OptionalAuth(f.validator, f.users), whoAmI)

	assert.Contains(t, do(r, http.MethodGet, "/me", "").Body.String(), "anonymous")
	assert.Contains(t, do(r, http.MethodGet, "/me", "bogus").Body.String(), "anonymous")
	assert.Contains(t, do(r, http.MethodGet, "/me", "member-token").Body.String(), "member")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoveryAndRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(RequestLogger(logger), Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())

	do(r, http.MethodGet, "/ok", "")

	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "/boom", failed[0].ContextMap()["path"])
	assert.Equal(t, 1, logs.FilterMessage("request handled").Len())
}
