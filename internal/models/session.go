package models

import "time"

type SessionStatus string

const (
	StatusPending     SessionStatus = "pending"
	StatusDownloading SessionStatus = "downloading"
	StatusCompleted   SessionStatus = "completed"
	StatusFailed      SessionStatus = "failed"
	StatusCancelled   SessionStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Session is a tracked download request and its lifecycle state. The store
// owns these records exclusively; everything else observes copies. The
// throughput fields are synthetic — the transfer loop is a simulation and
// no bytes actually move during it.
type Session struct {
	ID              string        `json:"downloadId"`
	URL             string        `json:"url"`
	Format          string        `json:"format"`
	Platform        string        `json:"platform"`
	Status          SessionStatus `json:"status"`
	Progress        float64       `json:"progress"` // 0-100
	Speed           float64       `json:"speed,omitempty"`
	BytesDownloaded int64         `json:"bytesDownloaded,omitempty"`
	TotalBytes      int64         `json:"totalBytes,omitempty"`
	Error           string        `json:"error,omitempty"`
	DownloadInfo    *DownloadInfo `json:"downloadInfo,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	StartedAt       *time.Time    `json:"startedAt"`
	CompletedAt     *time.Time    `json:"completedAt"`
}
