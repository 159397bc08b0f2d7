package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/agent-station/companion/internal/infrastructure/logging"
	"github.com/agent-station/companion/internal/infrastructure/monitoring"
)

// Frame is the wire format pushed to WebSocket subscribers.
type Frame struct {
	Type       string `json:"type"`
	TerminalID string `json:"terminalId"`
	Data       string `json:"data"`
}

// sendBuffer bounds the per-client outbound queue. A subscriber that
// falls this far behind starts losing frames rather than stalling the
// reader loops feeding the hub.
const sendBuffer = 256

// Hub broadcasts terminal events to all connected WebSocket clients.
// Each client gets a dedicated writer goroutine draining a FIFO queue,
// so per-session event order is preserved per client and Emit never
// blocks on a slow connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Subscription]struct{}
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Subscription is one attached client. All writes to the underlying
// connection go through its queue; the writer goroutine is the sole
// writer on the conn.
type Subscription struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates a new broadcast hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		clients: make(map[*Subscription]struct{}),
		logger:  logger,
	}
}

// WithMetrics attaches a metrics collector.
func (h *Hub) WithMetrics(m *monitoring.Metrics) *Hub {
	h.metrics = m
	return h
}

// Emit implements Sink. The frame is marshaled once and fanned out to
// every client queue; clients with full queues drop the frame.
func (h *Hub) Emit(event string, payload TerminalEvent) {
	frame, err := json.Marshal(Frame{
		Type:       event,
		TerminalID: payload.TerminalID,
		Data:       payload.Data,
	})
	if err != nil {
		h.logger.Error("failed to marshal event frame", zap.Error(err))
		return
	}

	if h.metrics != nil {
		h.metrics.EventsEmitted.WithLabelValues(event).Inc()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.clients {
		if !sub.enqueue(frame) {
			h.logger.Warn("dropping event frame for slow subscriber",
				zap.String("event", event),
				zap.String("terminal_id", payload.TerminalID),
			)
		}
	}
}

// Register attaches a connection and starts its writer goroutine.
func (h *Hub) Register(conn *websocket.Conn) *Subscription {
	sub := &Subscription{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}

	go sub.writePump()

	return sub
}

// Subscribers returns the number of attached clients.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send enqueues an out-of-band frame (pong, error) for this client,
// keeping the writer goroutine the only writer on the conn. Frames are
// dropped when the queue is full.
func (s *Subscription) Send(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		s.hub.logger.Error("failed to marshal frame", zap.Error(err))
		return
	}
	s.enqueue(frame)
}

// Close detaches the client from the hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.clients, s)
		s.hub.mu.Unlock()
		close(s.send)
		if s.hub.metrics != nil {
			s.hub.metrics.WSConnections.Dec()
		}
	})
}

func (s *Subscription) enqueue(frame []byte) bool {
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// writePump drains the queue onto the connection in FIFO order.
func (s *Subscription) writePump() {
	for frame := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			// The read side notices the broken conn and closes us.
			return
		}
	}
}
