package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/vidgrab/vidgrab/internal/api/middleware"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	DB        *sql.DB
	JWTSecret []byte
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

func NewAuthHandler(db *sql.DB, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
	}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request format", "INVALID_REQUEST")
		return
	}

	var user User
	var passwordHash string
	err := h.DB.QueryRow(`
		SELECT id, username, email, password_hash, role, active
		FROM users
		WHERE username = ? AND active = 1
	`, req.Username).Scan(&user.ID, &user.Username, &user.Email, &passwordHash, &user.Role, &user.Active)

	if err == sql.ErrNoRows {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		return
	} else if err != nil {
		respondError(c, http.StatusInternalServerError, "Database error", "INTERNAL_ERROR")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate token", "INTERNAL_ERROR")
		return
	}

	if _, err := h.DB.Exec("UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", user.ID); err != nil {
		// Login still succeeds when the bookkeeping write fails.
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// GET /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user_id":  c.GetInt("user_id"),
		"username": c.GetString("username"),
		"role":     c.GetString("role"),
	})
}

func (h *AuthHandler) generateJWT(user User) (string, error) {
	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    serviceName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}
