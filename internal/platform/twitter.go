package platform

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vidgrab/vidgrab/internal/models"
)

// TwitterExtractor pulls metadata out of the tweet page's OpenGraph tags and
// the direct video URL out of an embedded script blob.
type TwitterExtractor struct{}

var (
	twitterVideoURLRegexp = regexp.MustCompile(`video_url":"([^"]+)"`)
	ogTagRegexp           = regexp.MustCompile(`<meta\s+property="og:(title|description|image)"\s+content="([^"]*)"`)
)

func (e *TwitterExtractor) ExtractID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if _, after, ok := strings.Cut(parsed.EscapedPath(), "/status/"); ok {
		return firstPathSegment(after)
	}
	return ""
}

func (e *TwitterExtractor) GetMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	tweetID := e.ExtractID(rawURL)
	if tweetID == "" {
		return nil, errors.New("invalid Twitter/X URL")
	}

	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}

	meta := &models.VideoMetadata{
		Title:      "Twitter Video",
		Uploader:   "Unknown",
		UploadDate: time.Now().UTC().Format(time.RFC3339),
		VideoID:    tweetID,
	}

	for _, match := range ogTagRegexp.FindAllSubmatch(page, -1) {
		switch string(match[1]) {
		case "title":
			meta.Title = string(match[2])
		case "description":
			meta.Description = string(match[2])
		case "image":
			meta.Thumbnail = string(match[2])
		}
	}

	return meta, nil
}

func (e *TwitterExtractor) GetDownloadInfo(ctx context.Context, rawURL, format, quality string) (*models.DownloadInfo, error) {
	if e.ExtractID(rawURL) == "" {
		return nil, errors.New("invalid Twitter/X URL")
	}

	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}

	match := twitterVideoURLRegexp.FindSubmatch(page)
	if match == nil {
		return nil, errors.New("could not find video data")
	}

	videoURL := strings.ReplaceAll(string(match[1]), `\/`, "/")
	return mp4DownloadInfo(videoURL, format, quality), nil
}

func (e *TwitterExtractor) GetStream(ctx context.Context, rawURL, format, quality string) (io.ReadCloser, error) {
	info, err := e.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, err
	}
	return fetchStream(ctx, info.URL, "https://twitter.com/")
}
