package handlers

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/api/middleware"
	"github.com/vidgrab/vidgrab/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret-key"

func setupAuthRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, email, password_hash, role, active)
		VALUES (?, ?, ?, 'admin', 1)`, "admin", "admin@example.com", string(hash))
	require.NoError(t, err)

	h := NewAuthHandler(db, []byte(testJWTSecret))

	router := gin.New()
	auth := router.Group("/api/auth")
	auth.POST("/login", h.Login)
	auth.GET("/verify", middleware.JWTAuth([]byte(testJWTSecret)), h.Verify)
	return router, db
}

func TestLogin(t *testing.T) {
	router, _ := setupAuthRouter(t)

	t.Run("valid credentials", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "admin", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, true, parsed["success"])
		token, _ := parsed["token"].(string)
		assert.NotEmpty(t, token)

		user, ok := parsed["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "admin", user["username"])
		assert.Equal(t, "admin", user["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "admin", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, "INVALID_CREDENTIALS", code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "nobody", "password": "whatever"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, "INVALID_CREDENTIALS", code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "admin"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, "INVALID_REQUEST", code)
	})
}

func TestLogin_InactiveUser(t *testing.T) {
	router, db := setupAuthRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, password_hash, active) VALUES (?, ?, 0)`,
		"disabled", string(hash))
	require.NoError(t, err)

	w, parsed := doJSON(t, router, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "disabled", "password": "secret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, code := errorBody(t, parsed)
	assert.Equal(t, "INVALID_CREDENTIALS", code)
}

func TestVerify(t *testing.T) {
	router, _ := setupAuthRouter(t)

	t.Run("with valid token", func(t *testing.T) {
		_, loginResp := doJSON(t, router, http.MethodPost, "/api/auth/login",
			map[string]string{"username": "admin", "password": "correct-horse"})
		token, _ := loginResp["token"].(string)
		require.NotEmpty(t, token)

		w, parsed := doJSONWithAuth(t, router, http.MethodGet, "/api/auth/verify", nil, "Bearer "+token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, parsed["success"])
		assert.Equal(t, "admin", parsed["username"])
		assert.Equal(t, "admin", parsed["role"])
	})

	t.Run("without token", func(t *testing.T) {
		w, parsed := doJSON(t, router, http.MethodGet, "/api/auth/verify", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, "MISSING_TOKEN", code)
	})

	t.Run("with garbage token", func(t *testing.T) {
		w, parsed := doJSONWithAuth(t, router, http.MethodGet, "/api/auth/verify", nil, "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		_, code := errorBody(t, parsed)
		assert.Equal(t, "INVALID_TOKEN", code)
	})
}
