package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/models"
)

func TestRateLimiter_IsAllowed(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, remaining := rl.IsAllowed("1.2.3.4")
		assert.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3-(i+1), remaining)
	}

	allowed, remaining := rl.IsAllowed("1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// A different key carries its own budget.
	allowed, _ = rl.IsAllowed("5.6.7.8")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	allowed, _ := rl.IsAllowed("1.2.3.4")
	require.True(t, allowed)
	allowed, _ = rl.IsAllowed("1.2.3.4")
	require.False(t, allowed)

	time.Sleep(60 * time.Millisecond)
	allowed, _ = rl.IsAllowed("1.2.3.4")
	assert.True(t, allowed, "budget should replenish after the window passes")
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/limited", RateLimit(2, time.Minute, "Too many requests."), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-Rate-Limit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-Rate-Limit-Remaining"))

	second := do()
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-Rate-Limit-Remaining"))

	third := do()
	assert.Equal(t, http.StatusTooManyRequests, third.Code)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &parsed))
	assert.Equal(t, false, parsed["success"])
	errObj, ok := parsed["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.CodeRateLimitExceeded, errObj["code"])
	assert.Equal(t, "Too many requests.", errObj["message"])
}
