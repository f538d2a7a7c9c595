// services/events.go - Sync status broadcast hub
package services

import (
	"sync"
	"time"
)

// Sync event types pushed to websocket subscribers.
const (
	EventSyncStarted   = "sync.started"
	EventSyncProgress  = "sync.progress"
	EventSyncCompleted = "sync.completed"
	EventSyncFailed    = "sync.failed"
)

// SyncEvent is one status update from a catalog sync run.
type SyncEvent struct {
	Type    string    `json:"type"`
	RunID   string    `json:"run_id"`
	Stage   string    `json:"stage,omitempty"`
	Count   int       `json:"count,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// SyncEventHub fans sync events out to any number of subscribers. Slow
// subscribers drop events instead of blocking the sync.
type SyncEventHub struct {
	mu   sync.RWMutex
	subs map[chan SyncEvent]bool
}

var syncEventHub *SyncEventHub

// InitEventHub initializes the singleton hub.
func InitEventHub() {
	syncEventHub = NewSyncEventHub()
}

// GetEventHub returns the initialized hub.
func GetEventHub() *SyncEventHub {
	return syncEventHub
}

// NewSyncEventHub creates an empty hub.
func NewSyncEventHub() *SyncEventHub {
	return &SyncEventHub{subs: make(map[chan SyncEvent]bool)}
}

// Subscribe registers a new subscriber channel.
func (h *SyncEventHub) Subscribe() chan SyncEvent {
	ch := make(chan SyncEvent, 16)
	h.mu.Lock()
	h.subs[ch] = true
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *SyncEventHub) Unsubscribe(ch chan SyncEvent) {
	h.mu.Lock()
	if h.subs[ch] {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish delivers an event to every subscriber without blocking.
func (h *SyncEventHub) Publish(ev SyncEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
