package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/services"
)

type AdminHandler struct {
	Sessions *services.SessionManager
}

func NewAdminHandler(sessions *services.SessionManager) *AdminHandler {
	return &AdminHandler{Sessions: sessions}
}

// GET /api/admin/downloads
func (h *AdminHandler) ListDownloads(c *gin.Context) {
	sessions := h.Sessions.List()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"downloads": sessions,
			"total":     len(sessions),
		},
	})
}

type cleanupRequest struct {
	MaxAgeMinutes int `json:"max_age_minutes"`
}

// POST /api/admin/cleanup
func (h *AdminHandler) Cleanup(c *gin.Context) {
	req := cleanupRequest{MaxAgeMinutes: 60}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "Invalid request format", "INVALID_REQUEST")
		return
	}
	if req.MaxAgeMinutes <= 0 {
		req.MaxAgeMinutes = 60
	}

	cleaned := h.Sessions.CleanupOldSessions(time.Duration(req.MaxAgeMinutes) * time.Minute)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"cleaned":         cleaned,
			"max_age_minutes": req.MaxAgeMinutes,
		},
	})
}
