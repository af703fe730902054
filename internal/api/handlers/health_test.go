package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/health", NewHealthHandler("test").Status)

	w, parsed := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "ok", parsed["status"])
	assert.Equal(t, "vidgrab", parsed["service"])
	assert.Equal(t, "test", parsed["environment"])

	platforms, ok := parsed["supportedPlatforms"].([]any)
	require.True(t, ok)
	assert.Len(t, platforms, 5)

	timestamp, _ := parsed["timestamp"].(string)
	_, err := time.Parse(time.RFC3339, timestamp)
	assert.NoError(t, err)
}
