package services

import (
	"time"

	"github.com/vidgrab/vidgrab/internal/models"
)

// ProgressEvent is pushed on every step of an active session.
type ProgressEvent struct {
	DownloadID      string               `json:"downloadId"`
	Progress        float64              `json:"progress"`
	Speed           float64              `json:"speed"`
	BytesDownloaded int64                `json:"bytesDownloaded"`
	TotalBytes      int64                `json:"totalBytes"`
	Status          models.SessionStatus `json:"status"`
}

// CompleteEvent is pushed once when a session finishes successfully.
type CompleteEvent struct {
	DownloadID   string               `json:"downloadId"`
	Status       models.SessionStatus `json:"status"`
	CompletedAt  *time.Time           `json:"completedAt"`
	DownloadInfo *models.DownloadInfo `json:"downloadInfo"`
}

// ErrorEvent is pushed when a session's transfer task fails.
type ErrorEvent struct {
	DownloadID string `json:"downloadId"`
	Error      string `json:"error"`
}

// Notifier delivers session-scoped lifecycle events to subscribed clients.
// Delivery is fire-and-forget: nothing is buffered for late joiners, who
// fall back to polling the status endpoint.
type Notifier interface {
	NotifyProgress(event ProgressEvent)
	NotifyComplete(event CompleteEvent)
	NotifyError(event ErrorEvent)
}

// NopNotifier discards every event. Used where no push channel is wired.
type NopNotifier struct{}

func (NopNotifier) NotifyProgress(ProgressEvent) {}
func (NopNotifier) NotifyComplete(CompleteEvent) {}
func (NopNotifier) NotifyError(ErrorEvent)       {}
