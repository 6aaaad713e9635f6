package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/iknowag/engage-go/internal/infrastructure/messaging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
	"github.com/iknowag/engage-go/internal/infrastructure/observability/performance"
	"github.com/iknowag/engage-go/pkg/config"
)

const maxActivityConnections = 100

var activeActivityConnections int64

var boardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS already restricts browser origins on the admin API.
		return true
	},
}

// LiveHandlers serves the dashboard live feeds: the SSE activity
// stream and the websocket visitor board.
type LiveHandlers struct {
	activity    *messaging.ActivityBroadcaster
	board       *messaging.LiveBoardBroadcaster
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLiveHandlers creates live feed handlers.
func NewLiveHandlers(
	activity *messaging.ActivityBroadcaster,
	board *messaging.LiveBoardBroadcaster,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *LiveHandlers {
	return &LiveHandlers{
		activity:    activity,
		board:       board,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetActivityStream handles GET /api/v1/admin/live/activity - establishes
// a Server-Sent Events connection carrying visitor activity as it lands.
func (h *LiveHandlers) GetActivityStream(c *gin.Context) {
	marker := h.perfTracker.StartOperation("activity_stream_connect")
	defer h.perfTracker.CompleteOperation(marker)

	current := atomic.LoadInt64(&activeActivityConnections)
	if current >= maxActivityConnections {
		h.logger.SSE().Warn("Activity stream connection limit reached",
			"currentConnections", current,
			"maxConnections", maxActivityConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Activity stream connection limit reached. Please try again later.",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ch := h.activity.AddClient()
	atomic.AddInt64(&activeActivityConnections, 1)
	defer func() {
		atomic.AddInt64(&activeActivityConnections, -1)
		h.activity.RemoveClient(ch)
	}()

	fmt.Fprintf(c.Writer, "data: {\"type\":\"connected\",\"timestamp\":\"%s\"}\n\n", time.Now().Format(time.RFC3339))
	c.Writer.Flush()
	marker.SetSuccess(true)

	heartbeat := time.NewTicker(config.SSEHeartbeatInterval)
	defer heartbeat.Stop()

	connectionStart := time.Now()
	for {
		select {
		case <-c.Request.Context().Done():
			h.logger.SSE().Info("Activity stream client disconnected",
				"connectionDuration", time.Since(connectionStart))
			return

		case message, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprint(c.Writer, message)
			c.Writer.Flush()

		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()
		}
	}
}

// GetBoard handles GET /api/v1/admin/live/board - upgrades to a
// websocket pushing aggregate visitor state on each tick.
func (h *LiveHandlers) GetBoard(c *gin.Context) {
	conn, err := boardUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.SSE().Error("Board websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.LiveBoardClient{
		Conn: conn,
		Send: make(chan []byte, 4),
	}
	h.board.Register(client)

	go h.writePump(client)
	h.readPump(client)
}

// writePump pushes queued snapshots to the websocket until the send
// channel closes.
func (h *LiveHandlers) writePump(client *messaging.LiveBoardClient) {
	defer client.Conn.Close()

	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards inbound frames; its only job is detecting disconnects.
func (h *LiveHandlers) readPump(client *messaging.LiveBoardClient) {
	defer h.board.Unregister(client)

	client.Conn.SetReadLimit(512)
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
