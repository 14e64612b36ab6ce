package relay

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 32 * 1024
)

// User-facing envelope texts.
const (
	emptyMessageText = "Empty messages cannot be processed."
	fallbackReply    = "No response could be generated. Please try again."
)

// BotClient answers one user message with one reply.
type BotClient interface {
	Ask(ctx context.Context, userText string) (string, error)
}

// Handler owns the lifecycle of relay WebSocket connections.
type Handler struct {
	hub      *Hub
	bot      BotClient
	botName  string
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a relay handler. An empty allowedOrigins list admits
// every origin.
func NewHandler(hub *Hub, bot BotClient, botName string, allowedOrigins []string, logger *zap.Logger) *Handler {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &Handler{
		hub:     hub,
		bot:     bot,
		botName: botName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Allow non-browser clients.
					return true
				}
				return origins[origin]
			},
		},
		logger: logger,
	}
}

// ServeWS upgrades the request and runs the connection loop until the
// client disconnects.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	sess := &session{
		id:          uuid.NewString(),
		remoteAddr:  c.Request().RemoteAddr,
		connectedAt: time.Now(),
	}
	h.hub.register <- sess
	defer func() {
		h.hub.unregister <- sess
		conn.Close()
	}()

	h.serve(conn, sess)
	return nil
}

// serve runs the sequential message loop: read one frame, make at most one
// bot call, write the result, repeat. A failed envelope write means the
// connection is gone, so the loop exits.
func (h *Handler) serve(conn *websocket.Conn, sess *session) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Connection loop panicked",
				zap.String("connID", sess.id),
				zap.Any("panic", r))
			// Best effort; the write failure has nowhere to go.
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(ErrorEnvelope(fmt.Sprintf("Server error: %v", r)))
		}
	}()

	conn.SetReadLimit(maxMessageSize)

	if err := h.write(conn, sess, GreetingEnvelope(h.botName)); err != nil {
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("WebSocket read failed",
					zap.String("connID", sess.id),
					zap.Error(err))
			}
			return
		}

		userText := extractUserMessage(parseInbound(raw))
		if userText == "" {
			if err := h.write(conn, sess, ErrorEnvelope(emptyMessageText)); err != nil {
				return
			}
			continue
		}

		if err := h.write(conn, sess, TypingEnvelope(h.botName)); err != nil {
			return
		}

		// The bot call is deliberately not tied to the connection context:
		// a disconnect is only observed at the next read, after the call
		// resolves or times out.
		reply, err := h.bot.Ask(context.Background(), userText)
		if err != nil {
			h.logger.Warn("Bot call failed",
				zap.String("connID", sess.id),
				zap.Error(err))
			if err := h.write(conn, sess, ErrorEnvelope("Bot call failed: "+err.Error())); err != nil {
				return
			}
			continue
		}

		reply = strings.TrimSpace(reply)
		if reply == "" {
			reply = fallbackReply
		}

		if err := h.write(conn, sess, MessageEnvelope(reply)); err != nil {
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, sess *session, env Envelope) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(env); err != nil {
		h.logger.Error("Failed to write envelope",
			zap.String("connID", sess.id),
			zap.String("type", string(env.Type)),
			zap.Error(err))
		return err
	}
	return nil
}
