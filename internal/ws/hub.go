package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/vidgrab/vidgrab/internal/services"
)

// Event names pushed to subscribers.
const (
	EventProgress = "download:progress"
	EventComplete = "download:complete"
	EventError    = "download:error"
)

// Hub owns subscriber-group membership for the push channel. Groups are
// keyed by download session ID; clients join and leave explicitly. Broadcast
// is fire-and-forget — there is no buffering for clients that subscribe late
// or fall behind, they fall back to polling the status endpoint.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	groups  map[string]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		groups:  make(map[string]map[*Client]struct{}),
	}
}

// envelope is the wire shape of every pushed event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NotifyProgress implements services.Notifier.
func (h *Hub) NotifyProgress(event services.ProgressEvent) {
	h.broadcast(event.DownloadID, EventProgress, event)
}

// NotifyComplete implements services.Notifier.
func (h *Hub) NotifyComplete(event services.CompleteEvent) {
	h.broadcast(event.DownloadID, EventComplete, event)
}

// NotifyError implements services.Notifier.
func (h *Hub) NotifyError(event services.ErrorEvent) {
	h.broadcast(event.DownloadID, EventError, event)
}

func (h *Hub) broadcast(downloadID, event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("Failed to encode %s event for %s: %v", event, downloadID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.groups[downloadID] {
		select {
		case client.send <- payload:
		default:
			// Client is not draining its queue; drop the event.
		}
	}
}

func (h *Hub) addClient(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for id, group := range h.groups {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, id)
		}
	}
	close(c.send)
}

func (h *Hub) subscribe(c *Client, downloadID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[downloadID]
	if !ok {
		group = make(map[*Client]struct{})
		h.groups[downloadID] = group
	}
	group[c] = struct{}{}
	log.Printf("Client %s subscribed to download %s", c.id, downloadID)
}

func (h *Hub) unsubscribe(c *Client, downloadID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if group, ok := h.groups[downloadID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, downloadID)
		}
	}
	log.Printf("Client %s unsubscribed from download %s", c.id, downloadID)
}

// Subscribers reports the size of a session's group.
func (h *Hub) Subscribers(downloadID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[downloadID])
}

// Shutdown disconnects every client and refuses new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for client := range h.clients {
		close(client.send)
		client.conn.Close()
	}
	h.clients = make(map[*Client]struct{})
	h.groups = make(map[string]map[*Client]struct{})
}
