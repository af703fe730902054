package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/models"
	"github.com/vidgrab/vidgrab/internal/services"
)

func setupDownloadRouter(t *testing.T) (*gin.Engine, *services.SessionManager, *models.SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := models.NewSessionStore()
	sessions := services.NewSessionManager(store, nil)
	t.Cleanup(sessions.Shutdown)

	h := NewDownloadHandler(services.NewDownloadService(), sessions, 0)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/validate", h.Validate)
	api.POST("/download", h.Initiate)
	api.GET("/status/:downloadId", h.Status)
	api.DELETE("/cancel/:downloadId", h.Cancel)
	api.GET("/formats/:platform", h.Formats)
	return router, sessions, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return doJSONWithAuth(t, router, method, path, body, "")
}

func doJSONWithAuth(t *testing.T, router *gin.Engine, method, path string, body any, authorization string) (*httptest.ResponseRecorder, map[string]any) {
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
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func errorBody(t *testing.T, parsed map[string]any) (message, code string) {
	t.Helper()
	require.Equal(t, false, parsed["success"])
	errObj, ok := parsed["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", parsed)
	message, _ = errObj["message"].(string)
	code, _ = errObj["code"].(string)
	return message, code
}

func TestValidate_BadRequests(t *testing.T) {
	router, _, _ := setupDownloadRouter(t)

	tests := []struct {
		name        string
		body        any
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing url",
			body:        map[string]string{},
			wantCode:    models.CodeMissingURL,
			wantMessage: "URL is required",
		},
		{
			name:        "not a url",
			body:        map[string]string{"url": "not-a-url"},
			wantCode:    models.CodeInvalidURL,
			wantMessage: "Invalid URL format",
		},
		{
			name:        "unrecognized domain",
			body:        map[string]string{"url": "https://example.com/video/1"},
			wantCode:    models.CodeInvalidURL,
			wantMessage: "URL domain is not recognized",
		},
		{
			name:        "disabled platform",
			body:        map[string]string{"url": "https://vimeo.com/123456"},
			wantCode:    models.CodeInvalidURL,
			wantMessage: "Platform 'Vimeo' is not yet supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, parsed := doJSON(t, router, http.MethodPost, "/api/validate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			message, code := errorBody(t, parsed)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestInitiate_BadRequests(t *testing.T) {
	router, _, _ := setupDownloadRouter(t)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{
			name:     "missing url",
			body:     map[string]string{"format": "video"},
			wantCode: models.CodeMissingURL,
		},
		{
			name:     "invalid format",
			body:     map[string]string{"url": "https://www.youtube.com/watch?v=abc123", "format": "gif"},
			wantCode: models.CodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, parsed := doJSON(t, router, http.MethodPost, "/api/download", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			_, code := errorBody(t, parsed)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestStatus_NotFound(t *testing.T) {
	router, _, _ := setupDownloadRouter(t)

	w, parsed := doJSON(t, router, http.MethodGet, "/api/status/deadbeefdeadbeef", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	message, code := errorBody(t, parsed)
	assert.Equal(t, models.CodeDownloadNotFound, code)
	assert.Equal(t, "Download not found", message)
}

func TestStatus_ActiveSession(t *testing.T) {
	router, sessions, _ := setupDownloadRouter(t)

	session := sessions.Start("https://www.youtube.com/watch?v=abc123", "video", "youtube", nil)

	w, parsed := doJSON(t, router, http.MethodGet, "/api/status/"+session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, parsed["success"])

	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, session.ID, data["downloadId"])
	assert.Equal(t, "youtube", data["platform"])
	assert.Contains(t, []any{"pending", "downloading", "completed"}, data["status"])
}

func TestCancel_Flow(t *testing.T) {
	router, sessions, _ := setupDownloadRouter(t)

	session := sessions.Start("https://www.tiktok.com/@user/video/712345", "video", "tiktok", nil)

	w, parsed := doJSON(t, router, http.MethodDelete, "/api/cancel/"+session.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, parsed["success"])

	data, ok := parsed["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, session.ID, data["downloadId"])
	assert.Equal(t, "cancelled", data["status"])

	// The transfer task observes the cancel and exits.
	sessions.Wait(session.ID)

	// Cancelling again is rejected as an invalid state transition.
	w, parsed = doJSON(t, router, http.MethodDelete, "/api/cancel/"+session.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	message, code := errorBody(t, parsed)
	assert.Equal(t, models.CodeInvalidState, code)
	assert.Equal(t, "Download is already cancelled", message)
}

func TestCancel_NotFound(t *testing.T) {
	router, _, _ := setupDownloadRouter(t)

	w, parsed := doJSON(t, router, http.MethodDelete, "/api/cancel/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, code := errorBody(t, parsed)
	assert.Equal(t, models.CodeDownloadNotFound, code)
}

func TestCancel_CompletedSession(t *testing.T) {
	router, _, store := setupDownloadRouter(t)

	session := store.Create("https://redd.it/abc123", "video", "reddit", nil)
	completedAt := time.Now().UTC()
	_, err := store.Update(session.ID, func(s *models.Session) {
		s.Status = models.StatusCompleted
		s.Progress = 100
		s.CompletedAt = &completedAt
	})
	require.NoError(t, err)

	w, parsed := doJSON(t, router, http.MethodDelete, "/api/cancel/"+session.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	message, code := errorBody(t, parsed)
	assert.Equal(t, models.CodeInvalidState, code)
	assert.Equal(t, "Cannot cancel a completed download", message)
}

func TestFormats(t *testing.T) {
	router, _, _ := setupDownloadRouter(t)

	t.Run("supported platform", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodGet, "/api/formats/youtube", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, parsed["success"])

		data, ok := parsed["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "youtube", data["platform"])
		assert.Len(t, data["qualityOptions"], 6)
	})

	t.Run("disabled platform", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodGet, "/api/formats/vimeo", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		message, code := errorBody(t, parsed)
		assert.Equal(t, models.CodePlatformNotSupported, code)
		assert.Equal(t, "Platform 'vimeo' is not supported", message)
	})

	t.Run("unknown platform", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodGet, "/api/formats/dailymotion", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, models.CodePlatformNotSupported, code)
	})
}

func TestPlatformHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewPlatformHandler()

	router := gin.New()
	router.GET("/api/platforms", h.List)
	router.GET("/api/platforms/supported", h.ListSupported)

	w, parsed := doJSON(t, router, http.MethodGet, "/api/platforms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all, ok := parsed["data"].([]any)
	require.True(t, ok)
	assert.Len(t, all, 6)

	w, parsed = doJSON(t, router, http.MethodGet, "/api/platforms/supported", nil)
	require.Equal(t, http.StatusOK, w.Code)
	supported, ok := parsed["data"].([]any)
	require.True(t, ok)
	assert.Len(t, supported, 5)
}
