package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davenersa/beacon-core/internal/broadcast"
	"github.com/davenersa/beacon-core/internal/gateway"
	"github.com/davenersa/beacon-core/internal/infrastructure/config"
	"github.com/davenersa/beacon-core/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	// WSTypeInit is the first message on every connection: the full
	// store snapshot taken when the observer connected.
	WSTypeInit = "init"

	// WSTypeEvent carries one live update. EventType is "new-<kind>",
	// e.g. "new-sms" or "new-deviceinfo-update".
	WSTypeEvent = "event"
)

// WSMessage is the envelope for messages sent to observers.
type WSMessage struct {
	Type      string `json:"type"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSEventPayload is the payload of an event message: which device, and
// the data as stored (a record batch, or the full merged info).
type WSEventPayload struct {
	DeviceID string `json:"deviceId"`
	Data     any    `json:"data"`
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// wsClient is one connected observer: its connection, outbound buffer,
// and gateway session.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *logging.Logger
}

// handleWebSocket upgrades the connection and starts the observer session.
//
// GET /ws
//
// The session follows the subscribe-then-snapshot discipline (via
// gateway.Connect), so the init message plus the event stream covers
// every store mutation: duplicates across the seam are possible, gaps
// are not.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := s.gateway.Connect()
	s.logger.Info("observer connected",
		"session_id", session.ID(),
		"remote", r.RemoteAddr,
	)

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, s.wsCfg.SendBuffer),
		logger: s.logger,
	}

	// Per-connection context: cancelled by readPump when the connection
	// dies, or by Close() via the server context.
	parent := s.ctx
	if parent == nil {
		parent = r.Context()
	}
	ctx, cancel := context.WithCancel(parent)

	go client.writePump(s.wsCfg)
	go client.relay(ctx, session)
	go client.readPump(s.wsCfg, cancel)
}

// relay feeds the outbound buffer: the init snapshot first, then every
// session event in order. It owns the send channel and closes it on exit,
// which ends the write pump.
func (c *wsClient) relay(ctx context.Context, session *gateway.Session) {
	defer close(c.send)
	defer session.Close()

	c.enqueue(WSMessage{
		Type:      WSTypeInit,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   session.Snapshot(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-session.Events():
			if !ok {
				return
			}
			c.enqueue(eventMessage(ev))
		}
	}
}

// eventMessage converts a broadcast event to its wire form.
func eventMessage(ev broadcast.Event) WSMessage {
	return WSMessage{
		Type:      WSTypeEvent,
		EventType: "new-" + ev.Kind,
		Timestamp: ev.At.Format(time.RFC3339),
		Payload: WSEventPayload{
			DeviceID: ev.DeviceID,
			Data:     ev.Payload,
		},
	}
}

// enqueue marshals and buffers one outbound message. A full buffer drops
// the message rather than blocking the relay; the observer catches up or
// reconnects for a fresh snapshot.
func (c *wsClient) enqueue(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal websocket message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn("websocket message dropped for slow observer", "type", msg.Type)
	}
}

// readPump reads from the connection until it dies. Observers do not send
// application messages; the pump exists for pong handling, read deadlines,
// and disconnect detection.
func (c *wsClient) readPump(cfg config.WebSocketConfig, cancel context.CancelFunc) {
	defer func() {
		cancel()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			} else {
				c.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client message resets the read deadline.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	}
}

// writePump writes buffered messages to the connection and keeps it alive
// with protocol-level pings.
func (c *wsClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Relay ended the session
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
