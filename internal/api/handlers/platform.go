package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/config"
)

type PlatformHandler struct{}

func NewPlatformHandler() *PlatformHandler {
	return &PlatformHandler{}
}

// GET /api/platforms
func (h *PlatformHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": config.Platforms(),
	})
}

// GET /api/platforms/supported
func (h *PlatformHandler) ListSupported(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": config.EnabledPlatforms(),
	})
}
