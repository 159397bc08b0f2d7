package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/agent-station/companion/internal/events"
	"github.com/agent-station/companion/internal/infrastructure/logging"
	"github.com/agent-station/companion/internal/terminal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The companion binds to loopback; the desktop UI connects from
		// a file:// or app:// origin.
		return true
	},
}

// Message is an inbound client frame.
type Message struct {
	Type       string `json:"type"`
	TerminalID string `json:"terminalId"`
	Data       string `json:"data"`
	Cols       int    `json:"cols"`
	Rows       int    `json:"rows"`
}

// Handler upgrades connections, attaches them to the event hub, and
// services inbound input/resize frames.
type Handler struct {
	hub       *events.Hub
	terminals *terminal.Manager
	logger    *logging.Logger
}

// NewHandler creates a WebSocket handler.
func NewHandler(hub *events.Hub, terminals *terminal.Manager, logger *logging.Logger) *Handler {
	return &Handler{
		hub:       hub,
		terminals: terminals,
		logger:    logger,
	}
}

// HandleConnection handles a WebSocket upgrade and the connection's
// read loop. Terminal events flow outbound via the hub for as long as
// the connection is registered.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.hub.Register(conn)
	defer sub.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "input":
			if err := h.terminals.Write(msg.TerminalID, []byte(msg.Data)); err != nil {
				sendError(sub, msg.TerminalID, err.Error())
			}
		case "resize":
			if err := h.terminals.Resize(msg.TerminalID, msg.Cols, msg.Rows); err != nil {
				sendError(sub, msg.TerminalID, err.Error())
			}
		case "ping":
			sub.Send(gin.H{"type": "pong"})
		default:
			sendError(sub, msg.TerminalID, "unknown message type")
		}
	}
}

func sendError(sub *events.Subscription, terminalID, msg string) {
	sub.Send(gin.H{
		"type":       "error",
		"terminalId": terminalID,
		"error":      msg,
	})
}
