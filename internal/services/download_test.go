package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidgrab/vidgrab/internal/models"
)

func requireAPIError(t *testing.T, err error) *models.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*models.APIError)
	require.True(t, ok, "expected *models.APIError, got %T", err)
	return apiErr
}

func TestDownloadService_UnknownPlatform(t *testing.T) {
	service := NewDownloadService()
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() error
		wantCode string
	}{
		{
			name: "metadata",
			call: func() error {
				_, err := service.GetMetadata(ctx, "https://vimeo.com/123", "vimeo")
				return err
			},
			wantCode: models.CodeMetadataExtraction,
		},
		{
			name: "download info",
			call: func() error {
				_, err := service.GetDownloadInfo(ctx, "https://vimeo.com/123", "vimeo", "video", "720p")
				return err
			},
			wantCode: models.CodeDownloadInfo,
		},
		{
			name: "stream",
			call: func() error {
				_, err := service.GetStream(ctx, "https://vimeo.com/123", "vimeo", "video", "720p")
				return err
			},
			wantCode: models.CodeStream,
		},
		{
			name: "validate",
			call: func() error {
				_, err := service.ValidateAndExtract(ctx, "https://vimeo.com/123", "vimeo")
				return err
			},
			wantCode: models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := requireAPIError(t, tt.call())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.Contains(t, apiErr.Message, "unsupported platform")
		})
	}
}

func TestDownloadService_ValidateAndExtract_BadURL(t *testing.T) {
	service := NewDownloadService()

	apiErr := requireAPIError(t, func() error {
		_, err := service.ValidateAndExtract(context.Background(), "not-a-url", "youtube")
		return err
	}())
	assert.Equal(t, models.CodeInvalidURL, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid URL format", apiErr.Message)
}

func TestDownloadService_ValidateAndExtract_UnextractableID(t *testing.T) {
	service := NewDownloadService()

	// Valid URL shape, valid platform, but no video ID in the path.
	apiErr := requireAPIError(t, func() error {
		_, err := service.ValidateAndExtract(context.Background(), "https://www.youtube.com/feed/subscriptions", "youtube")
		return err
	}())
	assert.Equal(t, models.CodeInvalidVideoID, apiErr.Code)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}
