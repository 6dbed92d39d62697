package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/newsalpha/backend/internal/contracts"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// events queued per subscriber before new ones are dropped
	sendBuffer = 64
)

// ProgressHub fans ingestion progress out to websocket subscribers. It is
// the collector's ProgressSink.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan contracts.ProgressEvent
	done chan struct{}
}

// NewProgressHub creates an empty hub.
func NewProgressHub(log *logger.Logger) *ProgressHub {
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// read-only local research tool, any origin may watch
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*subscriber]struct{}),
	}
}

// Publish queues ev for every subscriber. A subscriber whose queue is full
// misses the event.
func (h *ProgressHub) Publish(ev contracts.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.clients {
		select {
		case sub.send <- ev:
		default:
			h.logger.WithField("target", ev.Target).Debug("Progress subscriber lagging, event dropped")
		}
	}
}

// Subscribers is the number of connected clients.
func (h *ProgressHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close sends a going-away frame to every subscriber and drops them.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.clients))
	for sub := range h.clients {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, sub := range subs {
		_ = sub.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		h.unregister(sub)
	}
}

// ServeWS upgrades the request and streams events until the client leaves.
// GET /ws/ingest
func (h *ProgressHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan contracts.ProgressEvent, sendBuffer),
		done: make(chan struct{}),
	}
	h.register(sub)
	defer h.unregister(sub)

	go h.writeLoop(sub)
	h.readLoop(sub)
}

func (h *ProgressHub) register(sub *subscriber) {
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("subscribers", n).Debug("Progress subscriber connected")
}

func (h *ProgressHub) unregister(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.clients[sub]; ok {
		delete(h.clients, sub)
		close(sub.done)
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// readLoop discards client messages; it exists to see pongs and closes.
func (h *ProgressHub) readLoop(sub *subscriber) {
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Progress subscriber closed unexpectedly")
			}
			return
		}
	}
}

func (h *ProgressHub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case ev := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteJSON(ev); err != nil {
				h.logger.WithError(err).Debug("Failed to write progress event")
				sub.conn.Close()
				return
			}
		case <-ticker.C:
			if err := sub.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				sub.conn.Close()
				return
			}
		}
	}
}
