package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// Constants for WebSocket timeouts
const (
	writeWait = 10 * time.Second
)

// Hub manages WebSocket connections from dashboard viewers. Viewers only
// listen: every refresh tick the host broadcasts the new snapshot to all of
// them.
type Hub struct {
	upgrader       websocket.Upgrader
	logger         zerolog.Logger
	allowedOrigins []string
	startedAt      time.Time

	mutex   sync.RWMutex
	viewers map[*websocket.Conn]time.Time
}

// NewHub creates a new viewer hub
func NewHub(logger zerolog.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		startedAt:      time.Now(),
		viewers:        make(map[*websocket.Conn]time.Time),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin validates the incoming request's Origin against the configured
// allowlist. No Origin header means same-origin and is always accepted.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	h.logger.Warn().Str("origin", origin).Msg("Rejected WebSocket connection: origin not in allowlist")
	return false
}

// ServeHTTP upgrades a viewer connection and keeps it registered until the
// viewer disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	h.mutex.Lock()
	h.viewers[conn] = time.Now()
	count := len(h.viewers)
	h.mutex.Unlock()
	h.logger.Info().Str("remote", conn.RemoteAddr().String()).Int("viewers", count).Msg("Viewer connected")

	defer func() {
		h.mutex.Lock()
		delete(h.viewers, conn)
		h.mutex.Unlock()
		conn.Close()
		h.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Viewer disconnected")
	}()

	// Viewers never send data; the read loop only notices closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			return
		}
	}
}

// BroadcastSnapshot pushes a snapshot to every connected viewer. Slow or
// broken connections are dropped rather than blocking the refresh loop.
func (h *Hub) BroadcastSnapshot(snap *models.Snapshot) {
	msg, err := models.NewMessage(models.MessageTypeSnapshot, snap)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create snapshot message")
		return
	}
	h.broadcast(msg)
}

// Heartbeat announces uptime and viewer count to all viewers.
func (h *Hub) Heartbeat() {
	msg, err := models.NewMessage(models.MessageTypeHeartbeat, models.HeartbeatMessage{
		Uptime:  int64(time.Since(h.startedAt).Seconds()),
		Viewers: h.ViewerCount(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create heartbeat message")
		return
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg *models.Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.viewers {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("Dropping viewer: write failed")
			conn.Close()
			delete(h.viewers, conn)
		}
	}
}

// ViewerCount returns the number of connected viewers.
func (h *Hub) ViewerCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.viewers)
}
