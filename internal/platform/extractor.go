package platform

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/vidgrab/vidgrab/internal/models"
)

// Extractor is the per-platform implementation of metadata and download-info
// extraction. Implementations are stateless: each call performs a single
// fetch against the platform with no retry or backoff, and every failure —
// unreachable page, missing script marker, unparseable blob, post that is
// not a video — surfaces as one error kind carrying the proximate cause.
type Extractor interface {
	// ExtractID parses the platform-native identifier out of the URL.
	// Returns "" when the URL does not follow the platform's scheme.
	ExtractID(url string) string

	GetMetadata(ctx context.Context, url string) (*models.VideoMetadata, error)

	GetDownloadInfo(ctx context.Context, url, format, quality string) (*models.DownloadInfo, error)

	// GetStream re-derives the direct media URL via GetDownloadInfo and
	// issues a second fetch returning the raw upstream body. The caller
	// owns the ReadCloser.
	GetStream(ctx context.Context, url, format, quality string) (io.ReadCloser, error)
}

// Registration is static and fixed at process start. Order is preserved for
// Supported().
var (
	registryOrder = []string{"youtube", "tiktok", "twitter", "instagram", "reddit"}
	registry      = map[string]Extractor{
		"youtube":   &YouTubeExtractor{},
		"tiktok":    &TikTokExtractor{},
		"twitter":   &TwitterExtractor{},
		"instagram": &InstagramExtractor{},
		"reddit":    &RedditExtractor{},
	}
)

// Get resolves a platform key to its extractor.
func Get(key string) (Extractor, error) {
	ext, ok := registry[key]
	if !ok {
		return nil, errors.Errorf("unsupported platform: %s", key)
	}
	return ext, nil
}

// Supported returns the registered platform keys in registration order.
func Supported() []string {
	keys := make([]string, len(registryOrder))
	copy(keys, registryOrder)
	return keys
}

// IsSupported reports whether an extractor is registered for the key.
func IsSupported(key string) bool {
	_, ok := registry[key]
	return ok
}
