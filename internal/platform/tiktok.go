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

// TikTokExtractor scrapes the __NEXT_DATA__ blob embedded in the video page.
type TikTokExtractor struct{}

var nextDataRegexp = regexp.MustCompile(`__NEXT_DATA__\s*=\s*(\{.+?\});`)

func (e *TikTokExtractor) ExtractID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := parsed.EscapedPath()

	if _, after, ok := strings.Cut(path, "/video/"); ok {
		return firstPathSegment(after)
	}
	if _, after, ok := strings.Cut(path, "/t/"); ok {
		return firstPathSegment(after)
	}
	return ""
}

func (e *TikTokExtractor) GetMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	videoID := e.ExtractID(rawURL)
	if videoID == "" {
		return nil, errors.New("invalid TikTok URL")
	}

	item, err := e.itemStruct(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title := item.Get("desc").String()
	if title == "" {
		title = "TikTok Video"
	}

	uploader := item.Get("author.uniqueId").String()
	if uploader == "" {
		uploader = "Unknown"
	}

	return &models.VideoMetadata{
		Title:       title,
		Duration:    int(item.Get("video.duration").Int()),
		Uploader:    uploader,
		Description: item.Get("desc").String(),
		Thumbnail:   item.Get("video.cover").String(),
		ViewCount:   item.Get("stats.playCount").Int(),
		UploadDate:  time.Unix(item.Get("createTime").Int(), 0).UTC().Format(time.RFC3339),
		VideoID:     videoID,
	}, nil
}

func (e *TikTokExtractor) GetDownloadInfo(ctx context.Context, rawURL, format, quality string) (*models.DownloadInfo, error) {
	if e.ExtractID(rawURL) == "" {
		return nil, errors.New("invalid TikTok URL")
	}

	item, err := e.itemStruct(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var downloadURL string
	if format == "audio" {
		downloadURL = item.Get("video.downloadAddr").String()
	} else {
		downloadURL = item.Get("video.playAddr").String()
		if downloadURL == "" {
			downloadURL = item.Get("video.downloadAddr").String()
		}
	}

	if downloadURL == "" {
		return nil, errors.New("could not find download URL")
	}

	return mp4DownloadInfo(downloadURL, format, quality), nil
}

func (e *TikTokExtractor) GetStream(ctx context.Context, rawURL, format, quality string) (io.ReadCloser, error) {
	info, err := e.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, err
	}
	return fetchStream(ctx, info.URL, "https://www.tiktok.com/")
}

func (e *TikTokExtractor) itemStruct(ctx context.Context, rawURL string) (gjson.Result, error) {
	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return gjson.Result{}, err
	}

	match := nextDataRegexp.FindSubmatch(page)
	if match == nil {
		return gjson.Result{}, errors.New("could not extract video data")
	}

	item := gjson.ParseBytes(match[1]).Get("props.pageProps.itemInfo.itemStruct")
	if !item.Exists() {
		return gjson.Result{}, errors.New("could not extract video data")
	}
	return item, nil
}

// firstPathSegment trims query strings and trailing segments off an ID
// parsed out of a URL path.
func firstPathSegment(s string) string {
	s, _, _ = strings.Cut(s, "?")
	s, _, _ = strings.Cut(s, "/")
	return s
}

// mp4DownloadInfo is the shared shape the page-scraper platforms resolve to.
// The requested quality label is echoed back unvalidated.
func mp4DownloadInfo(downloadURL, format, quality string) *models.DownloadInfo {
	info := &models.DownloadInfo{
		URL:       downloadURL,
		Format:    "video/mp4",
		Quality:   quality,
		Container: "mp4",
		Codecs:    "h264,aac",
	}
	if format == "audio" {
		info.Format = "audio/mp4"
		info.Codecs = "aac"
	}
	return info
}
