// Package messaging provides the live feeds pushed to the admin
// dashboard: an SSE stream of visitor activity and a websocket board
// of aggregate visitor state.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
)

// ActivityEvent is one visitor action pushed to dashboard listeners.
type ActivityEvent struct {
	Kind      string         `json:"kind"`
	VisitorID string         `json:"visitorId"`
	Detail    map[string]any `json:"detail,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ActivityBroadcaster fans visitor activity out to connected SSE clients.
type ActivityBroadcaster struct {
	clients map[chan string]bool
	mu      sync.Mutex
	logger  *logging.ChanneledLogger
}

// NewActivityBroadcaster creates a broadcaster with no connected clients.
func NewActivityBroadcaster(logger *logging.ChanneledLogger) *ActivityBroadcaster {
	return &ActivityBroadcaster{
		clients: make(map[chan string]bool),
		logger:  logger,
	}
}

// AddClient registers a new SSE client and returns its message channel.
func (b *ActivityBroadcaster) AddClient() chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	b.clients[ch] = true
	count := len(b.clients)
	b.mu.Unlock()

	b.logger.SSE().Debug("Activity client registered", "clients", count)
	return ch
}

// RemoveClient unregisters an SSE client.
func (b *ActivityBroadcaster) RemoveClient(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	count := len(b.clients)
	b.mu.Unlock()

	b.logger.SSE().Debug("Activity client unregistered", "clients", count)
}

// ClientCount returns the number of connected SSE clients.
func (b *ActivityBroadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Broadcast pushes one activity event to every connected client. Slow
// clients have the message dropped rather than blocking the sender.
func (b *ActivityBroadcaster) Broadcast(event ActivityEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in activity broadcast", "error", r)
		}
	}()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.SSE().Error("Failed to marshal activity event", "error", err.Error(), "kind", event.Kind)
		return
	}
	message := fmt.Sprintf("event: visitor_activity\ndata: %s\n\n", data)

	b.logger.SSE().Debug("Broadcasting activity",
		"kind", event.Kind,
		"message", strings.ReplaceAll(message, "\n", "\\n"))

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.clients {
		select {
		case ch <- message:
		default:
			b.logger.SSE().Warn("Activity channel full, message dropped", "kind", event.Kind)
		}
	}
}
