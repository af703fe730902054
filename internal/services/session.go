package services

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vidgrab/vidgrab/internal/models"
)

const (
	simulationSteps = 40

	minDuration = 3 * time.Second
	maxDuration = 7 * time.Second

	minTotalBytes = 5 * 1024 * 1024
	maxTotalBytes = 25 * 1024 * 1024

	minSpeed = 500
	maxSpeed = 3000
)

// SessionManager owns session lifecycle: it creates sessions, spawns one
// simulated transfer task per session, and pushes lifecycle events through
// the notifier. The transfer loop stands in for a real byte-level transfer —
// the throughput figures it writes are synthetic and no network I/O happens
// during it (the one real fetch occurred earlier, resolving DownloadInfo).
type SessionManager struct {
	store    *models.SessionStore
	notifier Notifier

	mu    sync.Mutex
	tasks map[string]*transferTask
}

// transferTask makes the background simulation observable: it can be
// cancelled through its context and joined through its done channel.
type transferTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSessionManager(store *models.SessionStore, notifier Notifier) *SessionManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &SessionManager{
		store:    store,
		notifier: notifier,
		tasks:    make(map[string]*transferTask),
	}
}

// Start allocates a pending session and launches its transfer task. The
// caller gets the session back immediately; completion is observed through
// the push channel or the status endpoint.
func (m *SessionManager) Start(url, format, platform string, info *models.DownloadInfo) models.Session {
	session := m.store.Create(url, format, platform, info)

	ctx, cancel := context.WithCancel(context.Background())
	task := &transferTask{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.tasks[session.ID] = task
	m.mu.Unlock()

	go m.runTransfer(ctx, session.ID, task)

	return session
}

// Get returns a session snapshot.
func (m *SessionManager) Get(id string) (models.Session, bool) {
	return m.store.Get(id)
}

// List returns snapshots of every session in the store.
func (m *SessionManager) List() []models.Session {
	return m.store.List()
}

// Cancel flips a pre-terminal session to cancelled and signals its task.
// Completed and cancelled sessions are returned unchanged.
func (m *SessionManager) Cancel(id string) (models.Session, error) {
	session, err := m.store.Cancel(id)
	if err != nil {
		return models.Session{}, err
	}

	if session.Status == models.StatusCancelled {
		m.mu.Lock()
		if task, ok := m.tasks[id]; ok {
			task.cancel()
		}
		m.mu.Unlock()
	}

	return session, nil
}

// Wait blocks until the session's transfer task has exited. Sessions with no
// running task return immediately.
func (m *SessionManager) Wait(id string) {
	m.mu.Lock()
	task, ok := m.tasks[id]
	m.mu.Unlock()
	if ok {
		<-task.done
	}
}

// CleanupOldSessions sweeps terminal sessions past the retention window.
func (m *SessionManager) CleanupOldSessions(maxAge time.Duration) int {
	return m.store.CleanupOldSessions(maxAge)
}

// StartJanitor sweeps terminal sessions periodically until ctx is done.
func (m *SessionManager) StartJanitor(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if cleaned := m.store.CleanupOldSessions(retention); cleaned > 0 {
					log.Printf("Session janitor removed %d terminal sessions", cleaned)
				}
			}
		}
	}()
}

// Shutdown cancels every running task and waits for them to exit.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	tasks := make([]*transferTask, 0, len(m.tasks))
	for _, task := range m.tasks {
		task.cancel()
		tasks = append(tasks, task)
	}
	m.mu.Unlock()

	for _, task := range tasks {
		<-task.done
	}
}

func (m *SessionManager) runTransfer(ctx context.Context, id string, task *transferTask) {
	defer close(task.done)
	defer func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}()

	startedAt := time.Now().UTC()
	totalBytes := int64(minTotalBytes + rand.Int63n(maxTotalBytes-minTotalBytes))

	started := false
	if _, err := m.store.Update(id, func(s *models.Session) {
		if s.Status != models.StatusPending {
			return
		}
		s.Status = models.StatusDownloading
		s.StartedAt = &startedAt
		s.TotalBytes = totalBytes
		started = true
	}); err != nil || !started {
		// Cancelled before the first step, or removed from the store.
		return
	}

	duration := minDuration + time.Duration(rand.Int63n(int64(maxDuration-minDuration)))
	stepInterval := duration / simulationSteps

	for step := 1; step <= simulationSteps; step++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(stepInterval):
		}

		progress := float64(step) / simulationSteps * 100
		bytesDownloaded := int64(progress / 100 * float64(totalBytes))
		speed := minSpeed + rand.Float64()*(maxSpeed-minSpeed)

		// Re-read inside the locked update so a cancel that landed during
		// the sleep is observed before any further write.
		wrote := false
		updated, err := m.store.Update(id, func(s *models.Session) {
			if s.Status != models.StatusDownloading {
				return
			}
			s.Progress = progress
			s.BytesDownloaded = bytesDownloaded
			s.Speed = speed
			wrote = true
		})
		if err != nil {
			m.fail(id, err)
			return
		}
		if !wrote {
			return
		}

		m.notifier.NotifyProgress(ProgressEvent{
			DownloadID:      id,
			Progress:        updated.Progress,
			Speed:           updated.Speed,
			BytesDownloaded: updated.BytesDownloaded,
			TotalBytes:      updated.TotalBytes,
			Status:          updated.Status,
		})
	}

	completedAt := time.Now().UTC()
	completed := false
	final, err := m.store.Update(id, func(s *models.Session) {
		if s.Status != models.StatusDownloading {
			return
		}
		s.Status = models.StatusCompleted
		s.Progress = 100
		s.BytesDownloaded = s.TotalBytes
		s.CompletedAt = &completedAt
		completed = true
	})
	if err != nil {
		m.fail(id, err)
		return
	}
	if !completed {
		return
	}

	m.notifier.NotifyComplete(CompleteEvent{
		DownloadID:   id,
		Status:       final.Status,
		CompletedAt:  final.CompletedAt,
		DownloadInfo: final.DownloadInfo,
	})
}

// fail records the task error on the session and pushes an error event. The
// error surfaces only through the push channel or a later status read.
func (m *SessionManager) fail(id string, cause error) {
	completedAt := time.Now().UTC()
	_, err := m.store.Update(id, func(s *models.Session) {
		if s.Status.IsTerminal() {
			return
		}
		s.Status = models.StatusFailed
		s.Error = cause.Error()
		s.CompletedAt = &completedAt
	})
	if err != nil {
		log.Printf("Transfer task for session %s failed and the session is gone: %v", id, cause)
		return
	}

	m.notifier.NotifyError(ErrorEvent{
		DownloadID: id,
		Error:      cause.Error(),
	})
}
