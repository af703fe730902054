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

// YouTubeExtractor scrapes the watch page's embedded player response. It is
// the only extractor that attempts real quality selection: the requested
// label is matched against the available encoded formats.
type YouTubeExtractor struct{}

var playerResponseRegexp = regexp.MustCompile(`ytInitialPlayerResponse\s*=\s*(\{.+?\});`)

// Requested display labels map onto the player's internal quality tiers.
var youtubeQualityTiers = map[string]string{
	"144p":  "tiny",
	"240p":  "small",
	"360p":  "medium",
	"480p":  "large",
	"720p":  "hd720",
	"1080p": "hd1080",
}

func (e *YouTubeExtractor) ExtractID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	if strings.Contains(parsed.Hostname(), "youtu.be") {
		return strings.TrimPrefix(parsed.EscapedPath(), "/")
	}

	if strings.Contains(parsed.Hostname(), "youtube.com") {
		return parsed.Query().Get("v")
	}

	return ""
}

func (e *YouTubeExtractor) GetMetadata(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	videoID := e.ExtractID(rawURL)
	if videoID == "" {
		return nil, errors.New("invalid YouTube URL")
	}

	info, err := e.playerResponse(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	details := info.Get("videoDetails")
	if !details.Exists() {
		return nil, errors.New("could not extract video data")
	}

	thumbnails := details.Get("thumbnail.thumbnails").Array()
	thumbnail := ""
	if len(thumbnails) > 0 {
		thumbnail = thumbnails[len(thumbnails)-1].Get("url").String()
	}

	uploadDate := info.Get("microformat.playerMicroformatRenderer.publishDate").String()
	if uploadDate == "" {
		uploadDate = time.Now().UTC().Format(time.RFC3339)
	}

	return &models.VideoMetadata{
		Title:       details.Get("title").String(),
		Duration:    int(details.Get("lengthSeconds").Int()),
		Uploader:    details.Get("author").String(),
		Description: details.Get("shortDescription").String(),
		Thumbnail:   thumbnail,
		ViewCount:   details.Get("viewCount").Int(),
		UploadDate:  uploadDate,
		VideoID:     videoID,
	}, nil
}

func (e *YouTubeExtractor) GetDownloadInfo(ctx context.Context, rawURL, format, quality string) (*models.DownloadInfo, error) {
	info, err := e.playerResponse(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	formats := append(info.Get("streamingData.formats").Array(),
		info.Get("streamingData.adaptiveFormats").Array()...)

	var candidates []gjson.Result
	for _, f := range formats {
		mime := f.Get("mimeType").String()
		if format == "audio" {
			if strings.HasPrefix(mime, "audio/") {
				candidates = append(candidates, f)
			}
		} else if strings.HasPrefix(mime, "video/") {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return nil, errors.New("no suitable format found")
	}

	selected := selectYouTubeFormat(candidates, quality)

	var size *int64
	if length := selected.Get("contentLength"); length.Exists() {
		n := length.Int()
		size = &n
	}

	mime := selected.Get("mimeType").String()
	resolvedQuality := selected.Get("qualityLabel").String()
	if resolvedQuality == "" {
		resolvedQuality = quality
	}

	return &models.DownloadInfo{
		URL:       selected.Get("url").String(),
		Format:    mime,
		Quality:   resolvedQuality,
		Size:      size,
		Container: containerFromMime(mime),
		Codecs:    codecsFromMime(mime),
	}, nil
}

func (e *YouTubeExtractor) GetStream(ctx context.Context, rawURL, format, quality string) (io.ReadCloser, error) {
	info, err := e.GetDownloadInfo(ctx, rawURL, format, quality)
	if err != nil {
		return nil, err
	}
	return fetchStream(ctx, info.URL, "https://www.youtube.com/")
}

func (e *YouTubeExtractor) playerResponse(ctx context.Context, rawURL string) (gjson.Result, error) {
	page, err := fetchPage(ctx, rawURL, "")
	if err != nil {
		return gjson.Result{}, err
	}

	match := playerResponseRegexp.FindSubmatch(page)
	if match == nil {
		return gjson.Result{}, errors.New("could not extract video data")
	}

	js := gjson.ParseBytes(match[1])
	if !js.IsObject() {
		return gjson.Result{}, errors.New("could not parse video data")
	}
	return js, nil
}

// selectYouTubeFormat prefers an exact label substring match, falls back to
// the label→tier map, then to the first candidate.
func selectYouTubeFormat(candidates []gjson.Result, quality string) gjson.Result {
	for _, f := range candidates {
		label := strings.ToLower(f.Get("qualityLabel").String())
		if label != "" && strings.Contains(label, strings.ToLower(quality)) {
			return f
		}
	}

	if tier, ok := youtubeQualityTiers[quality]; ok {
		for _, f := range candidates {
			if f.Get("quality").String() == tier {
				return f
			}
		}
	}

	return candidates[0]
}

func containerFromMime(mime string) string {
	base, _, _ := strings.Cut(mime, ";")
	if _, sub, ok := strings.Cut(base, "/"); ok {
		return strings.TrimSpace(sub)
	}
	return ""
}

func codecsFromMime(mime string) string {
	_, params, ok := strings.Cut(mime, ";")
	if !ok {
		return ""
	}
	if _, codecs, ok := strings.Cut(params, "codecs="); ok {
		return strings.Trim(strings.TrimSpace(codecs), `"`)
	}
	return ""
}
