package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fridgechef/backend/config"
	"github.com/fridgechef/backend/internal/api"
	"github.com/fridgechef/backend/internal/middleware"
	"github.com/fridgechef/backend/internal/photo"
	"github.com/fridgechef/backend/internal/service"
	"github.com/fridgechef/backend/internal/testhelpers"
)

func newTestServer(t *testing.T, port string) *Server {
	t.Helper()

	db := testhelpers.SetupSQLiteDB(t)
	logger := zap.NewNop()
	cfg := &config.Config{
		Environment:       config.Test,
		ServerHost:        "127.0.0.1",
		ServerPort:        port,
		AllowedOrigins:    []string{"http://localhost:5173"},
		MockMode:          true,
		MaxImageSize:      1024,
		MaxRequestsPerDay: 50,
	}
	llm := service.NewMockLLMService(logger)
	users := service.NewUserService(db, logger)

	return New(cfg, api.Deps{
		DB:      db,
		Auth:    service.NewAuthService(db, "test-secret", time.Hour, logger),
		Users:   users,
		Recipes: service.NewRecipeService(db, logger),
		Images:  service.NewImageService(db, llm, photo.NewProcessor([]string{"image/png"}, 1024, 64), nil, logger),
		LLM:     llm,
		Limiter: middleware.NewAnalysisRateLimiter(nil, cfg.MaxRequestsPerDay, logger),
		Logger:  logger,
	})
}

func TestNew(t *testing.T) {
	srv := newTestServer(t, "0")

	t.Run("serves the health endpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("applies CORS", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("mock mode generates recipes", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/recipes/generate",
			strings.NewReader(`{"ingredients":["계란"]}`))
		req.Header.Set("Content-Type", "application/json")
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "recipes")
	})

	t.Run("mock mode names its model", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		var pic bytes.Buffer
		require.NoError(t, png.Encode(&pic, img))

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="fridge.png"`)
		header.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(pic.Bytes())
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/images/analyze", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		srv.Router().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var out map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, service.MockModel, out["model"])
		assert.Equal(t, float64(6), out["total_count"])
	})

	t.Run("unknown routes are 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t, "0")

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Start may not have bound yet; Shutdown still makes ListenAndServe return.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
