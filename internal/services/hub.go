package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/pitch"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var errHubStopped = errors.New("websocket hub stopped")

// StateMessage is the frame pushed to editor clients
type StateMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Data      pitch.State `json:"data"`
}

// Client represents a WebSocket client watching one session
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *Hub
}

type sessionMessage struct {
	sessionID string
	data      []byte
}

// countQuery asks Run for the clients of one session, or of all sessions
// when sessionID is empty
type countQuery struct {
	sessionID string
	reply     chan int
}

// Hub fans editor states out to the websocket clients of each session. All
// client bookkeeping happens on the Run goroutine.
type Hub struct {
	sessions     map[string]map[*Client]bool
	broadcast    chan sessionMessage
	register     chan *Client
	unregister   chan *Client
	closeSession chan string
	count        chan countQuery
	done         chan struct{}
	upgrader     websocket.Upgrader
	logger       *logrus.Logger
}

// NewHub creates a hub accepting upgrades from allowedOrigins. An empty
// list accepts every origin.
func NewHub(logger *logrus.Logger, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		sessions:     make(map[string]map[*Client]bool),
		broadcast:    make(chan sessionMessage, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		closeSession: make(chan string, 16),
		count:        make(chan countQuery),
		done:         make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin] || allowed["*"]
			},
		},
		logger: logger,
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id := range h.sessions {
				h.dropSession(id)
			}
			return

		case client := <-h.register:
			clients := h.sessions[client.SessionID]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.sessions[client.SessionID] = clients
			}
			clients[client] = true

			h.logger.WithFields(logrus.Fields{
				"session_id":      client.SessionID,
				"session_clients": len(clients),
			}).Info("WebSocket client connected")

		case client := <-h.unregister:
			if h.remove(client) {
				h.logger.WithField("session_id", client.SessionID).Info("WebSocket client disconnected")
			}

		case msg := <-h.broadcast:
			for client := range h.sessions[msg.sessionID] {
				select {
				case client.Send <- msg.data:
				default:
					h.logger.WithField("session_id", client.SessionID).Warn("WebSocket client too slow, dropping")
					h.remove(client)
				}
			}

		case id := <-h.closeSession:
			h.dropSession(id)

		case q := <-h.count:
			if q.sessionID != "" {
				q.reply <- len(h.sessions[q.sessionID])
				continue
			}
			n := 0
			for _, clients := range h.sessions {
				n += len(clients)
			}
			q.reply <- n
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	clients, ok := h.sessions[client.SessionID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.sessions, client.SessionID)
	}
	return true
}

func (h *Hub) dropSession(sessionID string) {
	for client := range h.sessions[sessionID] {
		h.remove(client)
	}
}

// Publish queues state for every client of sessionID. It never blocks; when
// the hub is saturated the frame is dropped and clients catch up on the next
// one.
func (h *Hub) Publish(sessionID string, state pitch.State) {
	data, err := json.Marshal(StateMessage{Type: "state", SessionID: sessionID, Data: state})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal WebSocket message")
		return
	}

	select {
	case h.broadcast <- sessionMessage{sessionID: sessionID, data: data}:
	default:
		h.logger.WithField("session_id", sessionID).Warn("WebSocket broadcast queue full, dropping state")
	}
}

// CloseSession disconnects every client of sessionID
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeSession <- sessionID:
	default:
		h.logger.WithField("session_id", sessionID).Warn("WebSocket close queue full")
	}
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount(ctx context.Context) int {
	return h.query(ctx, "")
}

// SessionConnectionCount returns the number of clients watching sessionID
func (h *Hub) SessionConnectionCount(ctx context.Context, sessionID string) int {
	if sessionID == "" {
		return 0
	}
	return h.query(ctx, sessionID)
}

func (h *Hub) query(ctx context.Context, sessionID string) int {
	q := countQuery{sessionID: sessionID, reply: make(chan int, 1)}
	select {
	case h.count <- q:
		return <-q.reply
	case <-h.done:
		return 0
	case <-ctx.Done():
		return 0
	}
}

// ServeSession upgrades the request and streams states of sessionID,
// starting with initial
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string, initial pitch.State) error {
	first, err := json.Marshal(StateMessage{Type: "state", SessionID: sessionID, Data: initial})
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return err
	}

	client := &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		Hub:       h,
	}
	client.Send <- first

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// readPump discards client frames and detects disconnects
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.WithError(err).Debug("Failed to write WebSocket message")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
