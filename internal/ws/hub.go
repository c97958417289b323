// Package ws pushes task lifecycle events to the owner's open sockets
// so the frontend does not have to poll the task list.
package ws

import (
	"encoding/json"
	"sync"

	"taskflow/internal/domain"
	"taskflow/internal/logger"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, present := set[c]; !present {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	// closed under the write lock so no NotifyTaskEvent is mid-send
	close(c.Send)
}

// taskEvent is the wire shape pushed to clients.
type taskEvent struct {
	Type string       `json:"type"`
	Task *domain.Task `json:"task"`
}

// NotifyTaskEvent fans an event out to every open socket of the task's
// owner. Fire-and-forget: a client with a full send buffer just misses
// the event.
func (h *Hub) NotifyTaskEvent(userID, event string, task *domain.Task) {
	payload, err := json.Marshal(taskEvent{Type: event, Task: task})
	if err != nil {
		logger.Error("marshal task event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- payload:
		default:
			// slow consumer, drop
		}
	}
}

// ConnectedUsers returns how many users currently hold open sockets.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
