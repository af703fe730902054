package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/vidgrab/vidgrab/internal/config"
	"github.com/vidgrab/vidgrab/internal/models"
	"github.com/vidgrab/vidgrab/internal/platform"
)

// DownloadService orchestrates the extractor registry and funnels every
// extractor failure into a typed APIError. Extractor errors are not
// distinguished from one another — parse failure, missing field, and network
// failure all collapse into the enclosing operation's code.
type DownloadService struct{}

func NewDownloadService() *DownloadService {
	return &DownloadService{}
}

// ValidationResult bundles the metadata and capability set returned by
// ValidateAndExtract.
type ValidationResult struct {
	VideoID            string
	Metadata           *models.VideoMetadata
	SupportedFormats   []string
	SupportedQualities []string
}

func (s *DownloadService) GetMetadata(ctx context.Context, rawURL, platformKey string) (*models.VideoMetadata, error) {
	ext, err := platform.Get(platformKey)
	if err != nil {
		return nil, models.NewAPIError(err.Error(), models.CodeMetadataExtraction, http.StatusInternalServerError)
	}

	metadata, err := ext.GetMetadata(ctx, rawURL)
	if err != nil {
		return nil, models.NewAPIError(
			fmt.Sprintf("Failed to extract metadata: %s", err.Error()),
			models.CodeMetadataExtraction, http.StatusInternalServerError)
	}
	return metadata, nil
}

func (s *DownloadService) GetDownloadInfo(ctx context.Context, rawURL, platformKey, format, quality string) (*models.DownloadInfo, error) {
	ext, err := platform.Get(platformKey)
	if err != nil {
		return nil, models.NewAPIError(err.Error(), models.CodeDownloadInfo, http.StatusInternalServerError)
	}

	info, err := ext.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, models.NewAPIError(
			fmt.Sprintf("Failed to get download info: %s", err.Error()),
			models.CodeDownloadInfo, http.StatusInternalServerError)
	}
	return info, nil
}

func (s *DownloadService) GetStream(ctx context.Context, rawURL, platformKey, format, quality string) (io.ReadCloser, error) {
	ext, err := platform.Get(platformKey)
	if err != nil {
		return nil, models.NewAPIError(err.Error(), models.CodeStream, http.StatusInternalServerError)
	}

	stream, err := ext.GetStream(ctx, rawURL, format, quality)
	if err != nil {
		return nil, models.NewAPIError(
			fmt.Sprintf("Failed to get download stream: %s", err.Error()),
			models.CodeStream, http.StatusInternalServerError)
	}
	return stream, nil
}

// ValidateAndExtract composes the URL-shape check, the platform-native ID
// extraction, and a metadata fetch, returning the platform's declared
// capability set alongside the metadata.
func (s *DownloadService) ValidateAndExtract(ctx context.Context, rawURL, platformKey string) (*ValidationResult, error) {
	ext, err := platform.Get(platformKey)
	if err != nil {
		return nil, models.NewAPIError(err.Error(), models.CodeValidation, http.StatusInternalServerError)
	}

	if parsed, err := url.Parse(rawURL); err != nil || parsed.Scheme == "" {
		return nil, models.NewAPIError("Invalid URL format", models.CodeInvalidURL, http.StatusBadRequest)
	}

	videoID := ext.ExtractID(rawURL)
	if videoID == "" {
		return nil, models.NewAPIError("Could not extract video ID from URL", models.CodeInvalidVideoID, http.StatusBadRequest)
	}

	metadata, err := ext.GetMetadata(ctx, rawURL)
	if err != nil {
		return nil, models.NewAPIError(
			fmt.Sprintf("Validation failed: %s", err.Error()),
			models.CodeValidation, http.StatusInternalServerError)
	}

	result := &ValidationResult{
		VideoID:  videoID,
		Metadata: metadata,
	}
	if desc, ok := config.FindPlatform(platformKey); ok {
		result.SupportedFormats = desc.Supports
		result.SupportedQualities = desc.Qualities
	}
	return result, nil
}
