package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/pkg/config"
)

// LiveBoardClient represents a single connected dashboard board client.
type LiveBoardClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// BoardSnapshot is the aggregate visitor state sent to the frontend on each tick.
type BoardSnapshot struct {
	TotalVisitors    int            `json:"totalVisitors"`
	Designations     map[string]int `json:"designations"`
	ActiveCount      int            `json:"activeCount"`
	AverageLeadScore float64        `json:"averageLeadScore"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}

// SnapshotSource supplies the board state on each broadcast tick.
type SnapshotSource interface {
	BoardSnapshot() (*BoardSnapshot, error)
}

// LiveBoardBroadcaster manages all connected board clients and pushes
// a fresh snapshot on a fixed interval.
type LiveBoardBroadcaster struct {
	clients    map[*LiveBoardClient]bool
	register   chan *LiveBoardClient
	unregister chan *LiveBoardClient
	done       chan struct{}
	source     SnapshotSource
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewLiveBoardBroadcaster creates a new broadcaster instance.
func NewLiveBoardBroadcaster(source SnapshotSource, logger *logging.ChanneledLogger) *LiveBoardBroadcaster {
	return &LiveBoardBroadcaster{
		clients:    make(map[*LiveBoardClient]bool),
		register:   make(chan *LiveBoardClient),
		unregister: make(chan *LiveBoardClient),
		done:       make(chan struct{}),
		source:     source,
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *LiveBoardBroadcaster) Run() {
	ticker := time.NewTicker(config.LiveBoardInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.SSE().Debug("Board client registered")

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.SSE().Debug("Board client unregistered")

		case <-ticker.C:
			b.broadcastSnapshot()

		case <-b.done:
			b.mu.Lock()
			for client := range b.clients {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			return
		}
	}
}

// Register queues a client for registration.
func (b *LiveBoardBroadcaster) Register(client *LiveBoardClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *LiveBoardBroadcaster) Unregister(client *LiveBoardClient) {
	b.unregister <- client
}

// Stop terminates the run loop and disconnects every client.
func (b *LiveBoardBroadcaster) Stop() {
	close(b.done)
}

func (b *LiveBoardBroadcaster) broadcastSnapshot() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	snapshot, err := b.source.BoardSnapshot()
	if err != nil {
		b.logger.SSE().Error("Failed to build board snapshot", "error", err.Error())
		return
	}

	message, err := json.Marshal(snapshot)
	if err != nil {
		b.logger.SSE().Error("Failed to marshal board snapshot", "error", err.Error())
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}
