package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fridgechef/backend/internal/models"
)

func recipeBody(title string) gin.H {
	return gin.H{
		"title":        title,
		"description":  "간단한 한 끼",
		"ingredients":  []gin.H{{"name": "계란", "quantity": "2개"}},
		"instructions": []string{"팬을 달군다", "  ", "계란을 굽는다"},
		"cooking_time": 10,
		"difficulty":   "easy",
	}
}

func TestUserHandler_CreateAndResetPassword(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/users", gin.H{
		"name":  "프로필",
		"email": "Profile@Example.com",
		"preferences": gin.H{
			"allergies": []string{" 땅콩 ", ""},
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "profile@example.com", body["email"])
	prefs := body["preferences"].(map[string]interface{})
	assert.Equal(t, []interface{}{"땅콩"}, prefs["allergies"])

	t.Run("duplicate email", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/users", gin.H{"name": "다른", "email": "profile@example.com"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "이미 등록된 이메일입니다.", decode(t, w)["error"])
	})

	t.Run("login needs a password first", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "profile@example.com",
			"password": "password123",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reset password sets it once", func(t *testing.T) {
		reset := gin.H{"email": "profile@example.com", "new_password": "password123"}
		w := a.do(t, http.MethodPost, "/api/auth/reset-password", reset, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = a.do(t, http.MethodPost, "/api/auth/reset-password", reset, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email":    "profile@example.com",
			"password": "password123",
		}, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reset password for an unknown email", func(t *testing.T) {
		w := a.do(t, http.MethodPost, "/api/auth/reset-password", gin.H{
			"email":        "nobody@example.com",
			"new_password": "password123",
		}, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_Access(t *testing.T) {
	a := newTestAPI(t)
	owner, ownerToken := a.register(t, "owner@example.com", false)
	_, otherToken := a.register(t, "other@example.com", false)
	_, adminToken := a.register(t, "admin@example.com", true)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{"owner", "/api/users/" + owner.ID.String(), ownerToken, http.StatusOK},
		{"admin", "/api/users/" + owner.ID.String(), adminToken, http.StatusOK},
		{"other user", "/api/users/" + owner.ID.String(), otherToken, http.StatusForbidden},
		{"no token", "/api/users/" + owner.ID.String(), "", http.StatusUnauthorized},
		{"by email as owner", "/api/users/by-email/owner@example.com", ownerToken, http.StatusOK},
		{"by email as other", "/api/users/by-email/owner@example.com", otherToken, http.StatusForbidden},
		{"unknown email", "/api/users/by-email/missing@example.com", adminToken, http.StatusNotFound},
		{"malformed id", "/api/users/not-a-uuid", adminToken, http.StatusNotFound},
		{"stats as owner", "/api/users/" + owner.ID.String() + "/stats", ownerToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodGet, tt.path, nil, tt.token)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestUserHandler_Update(t *testing.T) {
	a := newTestAPI(t)
	owner, token := a.register(t, "owner@example.com", false)
	a.register(t, "taken@example.com", false)
	path := "/api/users/" + owner.ID.String()

	t.Run("changes the name", func(t *testing.T) {
		w := a.do(t, http.MethodPut, path, gin.H{"name": "새 이름"}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "새 이름", decode(t, w)["name"])
	})

	t.Run("rejects an email owned by someone else", func(t *testing.T) {
		w := a.do(t, http.MethodPut, path, gin.H{"email": "taken@example.com"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("keeps its own email", func(t *testing.T) {
		w := a.do(t, http.MethodPut, path, gin.H{"email": "owner@example.com"}, token)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("replaces preferences", func(t *testing.T) {
		w := a.do(t, http.MethodPut, path+"/preferences", gin.H{
			"dietary_restrictions": []string{"vegan", " "},
			"favorite_cuisines":    []string{"한식"},
		}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		prefs := body["preferences"].(map[string]interface{})
		assert.Equal(t, []interface{}{"vegan"}, prefs["dietary_restrictions"])
		assert.Equal(t, []interface{}{"한식"}, prefs["favorite_cuisines"])
	})

	t.Run("limits the number of restrictions", func(t *testing.T) {
		many := make([]string, 11)
		for i := range many {
			many[i] = "item"
		}
		w := a.do(t, http.MethodPut, path+"/preferences", gin.H{"dietary_restrictions": many}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_SavedRecipes(t *testing.T) {
	a := newTestAPI(t)
	owner, token := a.register(t, "owner@example.com", false)
	_, otherToken := a.register(t, "other@example.com", false)
	base := "/api/users/" + owner.ID.String() + "/recipes"

	var firstID string
	for _, title := range []string{"  계란후라이 ", "계란말이", "계란찜"} {
		w := a.do(t, http.MethodPost, base, recipeBody(title), token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		body := decode(t, w)
		if firstID == "" {
			firstID = body["id"].(string)
			assert.Equal(t, "계란후라이", body["title"])
			assert.Equal(t, []interface{}{"팬을 달군다", "계란을 굽는다"}, body["instructions"])
			ing := body["ingredients"].([]interface{})[0].(map[string]interface{})
			assert.Equal(t, true, ing["available"])
		}
	}

	t.Run("validates the body", func(t *testing.T) {
		bad := recipeBody("잘못된")
		bad["difficulty"] = "extreme"
		w := a.do(t, http.MethodPost, base, bad, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		blank := recipeBody("빈 단계")
		blank["instructions"] = []string{" ", ""}
		w = a.do(t, http.MethodPost, base, blank, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "유효한 조리 방법을 입력해주세요", decode(t, w)["error"])
	})

	t.Run("lists newest first with paging", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"?skip=0&limit=2", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, true, body["has_more"])
		assert.Len(t, body["recipes"], 2)

		w = a.do(t, http.MethodGet, base+"?skip=2&limit=2", nil, token)
		body = decode(t, w)
		assert.Equal(t, false, body["has_more"])
		assert.Len(t, body["recipes"], 1)
	})

	t.Run("caps the limit", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"?limit=500", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(100), decode(t, w)["limit"])
	})

	t.Run("rejects a negative skip", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"?skip=-1", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("other users cannot list", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base, nil, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("get and delete one recipe", func(t *testing.T) {
		w := a.do(t, http.MethodGet, base+"/"+firstID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)

		w = a.do(t, http.MethodDelete, base+"/"+firstID, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "레시피가 삭제되었습니다.", decode(t, w)["message"])

		w = a.do(t, http.MethodGet, base+"/"+firstID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = a.do(t, http.MethodDelete, base+"/"+firstID, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("stats count saved recipes", func(t *testing.T) {
		w := a.do(t, http.MethodGet, "/api/users/"+owner.ID.String()+"/stats", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decode(t, w)["total_saved_recipes"])

		var count int64
		require.NoError(t, a.db.Model(&models.SavedRecipe{}).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})
}
