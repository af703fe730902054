package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vidgrab/vidgrab/internal/config"
	"github.com/vidgrab/vidgrab/internal/models"
	"github.com/vidgrab/vidgrab/internal/platform"
	"github.com/vidgrab/vidgrab/internal/services"
)

type DownloadHandler struct {
	Service      *services.DownloadService
	Sessions     *services.SessionManager
	FetchTimeout time.Duration
}

func NewDownloadHandler(service *services.DownloadService, sessions *services.SessionManager, fetchTimeout time.Duration) *DownloadHandler {
	return &DownloadHandler{
		Service:      service,
		Sessions:     sessions,
		FetchTimeout: fetchTimeout,
	}
}

type urlRequest struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	URL     string `json:"url"`
	Format  string `json:"format"`
	Quality string `json:"quality"`
}

// POST /api/validate
func (h *DownloadHandler) Validate(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		respondError(c, http.StatusBadRequest, "URL is required", models.CodeMissingURL)
		return
	}

	classification, err := platform.Classify(req.URL)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), models.CodeInvalidURL)
		return
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	result, err := h.Service.ValidateAndExtract(ctx, req.URL, classification.Platform)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"valid":              true,
			"url":                req.URL,
			"platform":           classification.Platform,
			"platformLabel":      classification.Label,
			"metadata":           result.Metadata,
			"supportedFormats":   result.SupportedFormats,
			"supportedQualities": result.SupportedQualities,
		},
	})
}

// POST /api/metadata
func (h *DownloadHandler) Metadata(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		respondError(c, http.StatusBadRequest, "URL is required", models.CodeMissingURL)
		return
	}

	classification, err := platform.Classify(req.URL)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), models.CodeInvalidURL)
		return
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	metadata, err := h.Service.GetMetadata(ctx, req.URL, classification.Platform)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url":           req.URL,
			"platform":      classification.Platform,
			"platformLabel": classification.Label,
			"metadata":      metadata,
		},
	})
}

// POST /api/download
func (h *DownloadHandler) Initiate(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		respondError(c, http.StatusBadRequest, "URL is required", models.CodeMissingURL)
		return
	}

	classification, err := platform.Classify(req.URL)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error(), models.CodeInvalidURL)
		return
	}

	if req.Format != "" && req.Format != "video" && req.Format != "audio" {
		respondError(c, http.StatusBadRequest, "Invalid format. Must be 'video' or 'audio'", models.CodeInvalidFormat)
		return
	}
	format := req.Format
	if format == "" {
		format = "video"
	}

	quality := req.Quality
	if quality == "" {
		quality = "720p"
	}

	ctx, cancel := h.fetchContext(c)
	defer cancel()

	info, err := h.Service.GetDownloadInfo(ctx, req.URL, classification.Platform, format, quality)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	session := h.Sessions.Start(req.URL, format, classification.Platform, info)

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"downloadId":   session.ID,
			"status":       session.Status,
			"url":          session.URL,
			"format":       session.Format,
			"platform":     session.Platform,
			"quality":      quality,
			"downloadInfo": session.DownloadInfo,
			"createdAt":    session.CreatedAt,
		},
	})
}

// GET /api/status/:downloadId
func (h *DownloadHandler) Status(c *gin.Context) {
	session, exists := h.Sessions.Get(c.Param("downloadId"))
	if !exists {
		respondError(c, http.StatusNotFound, "Download not found", models.CodeDownloadNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"downloadId":      session.ID,
			"status":          session.Status,
			"progress":        session.Progress,
			"speed":           session.Speed,
			"bytesDownloaded": session.BytesDownloaded,
			"totalBytes":      session.TotalBytes,
			"url":             session.URL,
			"format":          session.Format,
			"platform":        session.Platform,
			"createdAt":       session.CreatedAt,
			"startedAt":       session.StartedAt,
			"completedAt":     session.CompletedAt,
			"error":           session.Error,
		},
	})
}

// DELETE /api/cancel/:downloadId
func (h *DownloadHandler) Cancel(c *gin.Context) {
	downloadID := c.Param("downloadId")

	session, exists := h.Sessions.Get(downloadID)
	if !exists {
		respondError(c, http.StatusNotFound, "Download not found", models.CodeDownloadNotFound)
		return
	}

	switch session.Status {
	case models.StatusCompleted:
		respondError(c, http.StatusBadRequest, "Cannot cancel a completed download", models.CodeInvalidState)
		return
	case models.StatusCancelled:
		respondError(c, http.StatusBadRequest, "Download is already cancelled", models.CodeInvalidState)
		return
	}

	cancelled, err := h.Sessions.Cancel(downloadID)
	if err != nil {
		respondError(c, http.StatusNotFound, "Download not found", models.CodeDownloadNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"downloadId":  cancelled.ID,
			"status":      cancelled.Status,
			"url":         cancelled.URL,
			"cancelledAt": time.Now().UTC(),
		},
	})
}

// GET /api/formats/:platform
func (h *DownloadHandler) Formats(c *gin.Context) {
	key := c.Param("platform")

	desc, ok := config.FindPlatform(key)
	if !ok || !desc.Enabled {
		respondError(c, http.StatusNotFound, "Platform '"+key+"' is not supported", models.CodePlatformNotSupported)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"platform":       desc.Key,
			"label":          desc.Label,
			"supports":       desc.Supports,
			"qualityOptions": desc.Qualities,
		},
	})
}

func (h *DownloadHandler) fetchContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.FetchTimeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.FetchTimeout)
}

func respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"message": message,
			"code":    code,
		},
	})
}

// respondAPIError unwraps the service layer's typed error; anything else
// falls through as a generic 500.
func respondAPIError(c *gin.Context, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		respondError(c, apiErr.StatusCode, apiErr.Message, apiErr.Code)
		return
	}
	respondError(c, http.StatusInternalServerError, err.Error(), models.CodeInternal)
}
