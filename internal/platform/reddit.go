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

// RedditExtractor scrapes the window.__r hydration blob on post pages and
// resolves the post's video media entry.
type RedditExtractor struct{}

var redditDataRegexp = regexp.MustCompile(`window\.__r\s*=\s*(\{.+?\});`)

func (e *RedditExtractor) ExtractID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := parsed.EscapedPath()

	if _, after, ok := strings.Cut(path, "/comments/"); ok {
		return firstPathSegment(after)
	}

	// Short-link form: https://redd.it/<id>
	if strings.Contains(parsed.Hostname(), "redd.it") && len(path) > 1 {
		return firstPathSegment(strings.TrimPrefix(path, "/"))
	}

	return ""
}

func (e *RedditExtractor) GetMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	postID := e.ExtractID(rawURL)
	if postID == "" {
		return nil, errors.New("invalid Reddit URL")
	}

	post, err := e.videoPost(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title := post.Get("title").String()
	if title == "" {
		title = "Reddit Video"
	}

	uploader := post.Get("author").String()
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoMetadata{
		Title:       title,
		Duration:    int(post.Get("media.duration").Int()),
		Uploader:    uploader,
		Description: post.Get("selftext").String(),
		Thumbnail:   post.Get("media.posterUrl").String(),
		ViewCount:   post.Get("viewCount").Int(),
		UploadDate:  time.Unix(post.Get("created").Int(), 0).UTC().Format(time.RFC3339),
		VideoID:     postID,
	}, nil
}

func (e *RedditExtractor) GetDownloadInfo(ctx context.Context, rawURL, format, quality string) (*models.DownloadInfo, error) {
	if e.ExtractID(rawURL) == "" {
		return nil, errors.New("invalid Reddit URL")
	}

	post, err := e.videoPost(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var downloadURL string
	if format == "audio" {
		downloadURL = post.Get("media.audioUrl").String()
	} else {
		downloadURL = post.Get("media.hlsUrl").String()
		if downloadURL == "" {
			downloadURL = post.Get("media.dashUrl").String()
		}
	}

	if downloadURL == "" {
		return nil, errors.New("could not find download URL")
	}

	return mp4DownloadInfo(downloadURL, format, quality), nil
}

func (e *RedditExtractor) GetStream(ctx context.Context, rawURL, format, quality string) (io.ReadCloser, error) {
	info, err := e.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, err
	}
	return fetchStream(ctx, info.URL, "https://www.reddit.com/")
}

// videoPost walks the hydration blob: the top-level object holding
// posts.models is located first, then the first model gated on
// media.type == "video".
func (e *RedditExtractor) videoPost(ctx context.Context, rawURL string) (gjson.Result, error) {
	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return gjson.Result{}, err
	}

	match := redditDataRegexp.FindSubmatch(page)
	if match == nil {
		return gjson.Result{}, errors.New("could not find video data or post is not a video")
	}

	var post gjson.Result
	gjson.ParseBytes(match[1]).ForEach(func(_, section gjson.Result) bool {
		models := section.Get("posts.models")
		if !models.Exists() {
			return true
		}
		models.ForEach(func(_, candidate gjson.Result) bool {
			if candidate.Get("media.type").String() == "video" {
				post = candidate
				return false
			}
			return true
		})
		return !post.Exists()
	})

	if !post.Exists() {
		return gjson.Result{}, errors.New("could not find video data or post is not a video")
	}
	return post, nil
}
