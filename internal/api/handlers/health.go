package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/config"
)

const serviceName = "vidgrab"
const serviceVersion = "1.0.0"

type HealthHandler struct {
	Environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{Environment: environment}
}

// GET /api/health
func (h *HealthHandler) Status(c *gin.Context) {
	keys := make([]string, 0)
	for _, p := range config.EnabledPlatforms() {
		keys = append(keys, p.Key)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"service":            serviceName,
		"version":            serviceVersion,
		"environment":        h.Environment,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"supportedPlatforms": keys,
	})
}
