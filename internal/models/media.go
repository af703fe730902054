package models

// VideoMetadata is the normalized shape every extractor projects its
// platform-specific page data into. Produced fresh per request, never cached.
type VideoMetadata struct {
	Title       string `json:"title"`
	Duration    int    `json:"duration"` // seconds, 0 when unknown
	Uploader    string `json:"uploader"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	ViewCount   int64  `json:"viewCount"`
	UploadDate  string `json:"uploadDate"` // ISO-8601
	VideoID     string `json:"videoId"`
}

// DownloadInfo carries the resolved direct-media URL and its format
// descriptor for a requested quality. Quality is best-effort: the page
// scrapers echo the requested label back unvalidated.
type DownloadInfo struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	Quality   string `json:"quality"`
	Size      *int64 `json:"size"` // bytes, frequently unknown
	Container string `json:"container"`
	Codecs    string `json:"codecs"`
}
