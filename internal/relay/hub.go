package relay

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks the set of active relay connections. Connections never share
// message state; the hub only exists for observability and shutdown.
type Hub struct {
	// Registered connections keyed by connection ID.
	sessions map[string]*session

	// Register requests from new connections.
	register chan *session

	// Unregister requests from closing connections.
	unregister chan *session

	// Mutex for thread-safe access to the sessions map
	mu sync.RWMutex

	logger *zap.Logger
}

// session is the hub's view of one client connection.
type session struct {
	id          string
	remoteAddr  string
	connectedAt time.Time
}

// NewHub creates a new connection registry.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]*session),
		register:   make(chan *session),
		unregister: make(chan *session),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case sess := <-h.register:
			h.mu.Lock()
			h.sessions[sess.id] = sess
			h.mu.Unlock()
			h.logger.Info("Client connected",
				zap.String("connID", sess.id),
				zap.String("remoteAddr", sess.remoteAddr))

		case sess := <-h.unregister:
			h.mu.Lock()
			delete(h.sessions, sess.id)
			h.mu.Unlock()
			h.logger.Info("Client disconnected",
				zap.String("connID", sess.id),
				zap.Duration("connectedFor", time.Since(sess.connectedAt)))
		}
	}
}

// Count returns the number of active connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
