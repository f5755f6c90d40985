package feed

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrHubClosed = errors.New("feed: hub closed")
)

// Config configures the Hub.
type Config struct {
	WriteTimeout   time.Duration // Write deadline for outbound frames
	PingInterval   time.Duration // Keepalive ping cadence
	PongTimeout    time.Duration // Max silence before a subscriber is dropped
	SendBufferSize int           // Per-subscriber outbound queue length
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:   5 * time.Second,
		PingInterval:   30 * time.Second,
		PongTimeout:    60 * time.Second,
		SendBufferSize: 64,
	}
}

// subscriber is one connected WebSocket peer.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub broadcasts monitor events to connected WebSocket subscribers. A Hub
// serves the /ws/events endpoint; every Broadcast fans the frame out to
// all peers without ever blocking the caller.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

// NewHub creates a Hub.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Feed consumers are dashboards on other origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and streams frames until the peer leaves
// or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, h.cfg.SendBufferSize),
		done: make(chan struct{}),
	}

	h.register(sub)
	h.logger.Debug("feed subscriber connected",
		"remote", conn.RemoteAddr().String(),
		"subscribers", h.SubscriberCount(),
	)

	go h.writePump(sub)
	h.readPump(sub)

	h.unregister(sub)
	h.logger.Debug("feed subscriber disconnected", "remote", conn.RemoteAddr().String())
}

// Broadcast marshals v once and queues it to every subscriber.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal feed frame", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			// Queue full, drop oldest by consuming one and retrying.
			select {
			case <-sub.send:
			default:
			}
			select {
			case sub.send <- data:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of connected peers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects new connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true

	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
		delete(h.subs, sub)
		close(sub.done)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second),
		)
		sub.conn.Close()
	}

	h.logger.Info("feed hub closed", "disconnected", len(subs))
	return nil
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.done)
	}
	h.mu.Unlock()

	sub.conn.Close()
}

// readPump consumes the peer's messages to keep pong handling alive.
// Inbound payloads are ignored; the feed is one-way.
func (h *Hub) readPump(sub *subscriber) {
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes all writes to one peer: queued frames plus
// keepalive pings.
func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("feed write failed", "error", err)
				sub.conn.Close()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := sub.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				sub.conn.Close()
				return
			}
		}
	}
}
