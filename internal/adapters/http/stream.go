package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans desk events out to active SSE connections.
type StreamManager struct {
	logger      *slog.Logger
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // desk ID -> set of channels
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a listener for one desk. The returned cancel
// removes the listener and closes the channel.
func (sm *StreamManager) Subscribe(deskID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[deskID]; !ok {
		sm.subscribers[deskID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[deskID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[deskID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, deskID)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of the desk. Slow clients
// lose messages rather than stall the mutation path.
func (sm *StreamManager) Broadcast(deskID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[deskID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("sse client buffer full, dropping event", "desk_id", deskID)
		}
	}
}
