package platform

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/vidgrab/vidgrab/internal/models"
)

// InstagramExtractor scrapes the window._sharedData blob on post/reel pages.
// Posts that are not videos are rejected.
type InstagramExtractor struct{}

var (
	sharedDataRegexp = regexp.MustCompile(`window\._sharedData\s*=\s*(\{.+?\});`)
	instagramIDSplit = regexp.MustCompile(`/p/|/reel/`)
)

func (e *InstagramExtractor) ExtractID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := parsed.EscapedPath()

	if !strings.Contains(path, "/p/") && !strings.Contains(path, "/reel/") {
		return ""
	}

	parts := instagramIDSplit.Split(path, 2)
	if len(parts) < 2 {
		return ""
	}
	return firstPathSegment(parts[1])
}

func (e *InstagramExtractor) GetMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	postID := e.ExtractID(rawURL)
	if postID == "" {
		return nil, errors.New("invalid Instagram URL")
	}

	media, err := e.shortcodeMedia(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	caption := media.Get("edge_media_to_caption.edges.0.node.text").String()
	title := caption
	if title == "" {
		title = "Instagram Video"
	}

	uploader := media.Get("owner.username").String()
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoMetadata{
		Title:       title,
		Duration:    int(media.Get("video_duration").Int()),
		Uploader:    uploader,
		Description: caption,
		Thumbnail:   media.Get("display_url").String(),
		ViewCount:   media.Get("video_view_count").Int(),
		UploadDate:  time.Unix(media.Get("taken_at_timestamp").Int(), 0).UTC().Format(time.RFC3339),
		VideoID:     postID,
	}, nil
}

func (e *InstagramExtractor) GetDownloadInfo(ctx context.Context, rawURL, format, quality string) (*models.DownloadInfo, error) {
	if e.ExtractID(rawURL) == "" {
		return nil, errors.New("invalid Instagram URL")
	}

	media, err := e.shortcodeMedia(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Instagram serves a single muxed mp4; audio requests resolve to the
	// same URL as video.
	downloadURL := media.Get("video_url").String()
	if downloadURL == "" {
		return nil, errors.New("could not find download URL")
	}

	return mp4DownloadInfo(downloadURL, format, quality), nil
}

func (e *InstagramExtractor) GetStream(ctx context.Context, rawURL, format, quality string) (io.ReadCloser, error) {
	info, err := e.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, err
	}
	return fetchStream(ctx, info.URL, "https://www.instagram.com/")
}

func (e *InstagramExtractor) shortcodeMedia(ctx context.Context, rawURL string) (gjson.Result, error) {
	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return gjson.Result{}, err
	}

	match := sharedDataRegexp.FindSubmatch(page)
	if match == nil {
		return gjson.Result{}, errors.New("could not find video data or post is not a video")
	}

	media := gjson.ParseBytes(match[1]).Get("entry_data.PostPage.0.graphql.shortcode_media")
	if !media.Exists() || !media.Get("is_video").Bool() {
		return gjson.Result{}, errors.New("could not find video data or post is not a video")
	}
	return media, nil
}
