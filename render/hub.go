package render

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer (style patches are small)
	maxMessageSize = 64 * 1024

	sendBuffer      = 64
	broadcastBuffer = 256
)

// Message types pushed to clients.
const (
	MessageOption  = "option"
	MessageDispose = "dispose"
	MessageResize  = "resize"

	// MessageStyle is the only message type accepted from clients.
	MessageStyle = "style"
)

// Message is a server to client frame.
type Message struct {
	Type      string             `json:"type"`
	ChartType chart.ChartType    `json:"chartType,omitempty"`
	Option    *chart.ChartOption `json:"option,omitempty"`
	Width     int                `json:"width,omitempty"`
	Height    int                `json:"height,omitempty"`
}

// StyleMessage is a client to server style edit.
type StyleMessage struct {
	Type   string          `json:"type"`
	Bucket string          `json:"bucket"`
	Patch  json.RawMessage `json:"patch"`
}

// StyleHandler applies a style edit received from a client.
type StyleHandler func(bucket string, patch []byte) error

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
	id   string
}

// Hub fans chart messages out to connected WebSocket clients. Run must be
// running for clients to register and for broadcasts to be delivered.
type Hub struct {
	ctx        context.Context
	register   chan *client
	unregister chan *client
	broadcast  chan Message

	mu      sync.RWMutex
	clients map[*client]bool
	last    *Message

	onStyle        StyleHandler
	allowedOrigins []string
	upgrader       websocket.Upgrader
	log            *zap.SugaredLogger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithStyleHandler sets the handler for inbound style edits.
func WithStyleHandler(fn StyleHandler) HubOption {
	return func(h *Hub) { h.onStyle = fn }
}

// WithAllowedOrigins restricts WebSocket upgrades to the given origins. An
// entry may hold one "*" wildcard, as in "http://localhost:*"; "*" alone
// allows any origin.
func WithAllowedOrigins(origins []string) HubOption {
	return func(h *Hub) { h.allowedOrigins = origins }
}

// NewHub creates a hub bound to ctx. Cancelling ctx stops Run and the
// clients' write pumps.
func NewHub(ctx context.Context, opts ...HubOption) *Hub {
	h := &Hub{
		ctx:        ctx,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Message, broadcastBuffer),
		clients:    make(map[*client]bool),
		log:        logger.ComponentLogger("render.hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// localOrigins are accepted when no origins are configured.
var localOrigins = []string{
	"http://localhost", "http://localhost:*",
	"https://localhost", "https://localhost:*",
	"http://127.0.0.1", "http://127.0.0.1:*",
}

// checkOrigin allows requests without an Origin header, then matches the
// configured origins. With none configured only localhost is accepted.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := h.allowedOrigins
	if len(allowed) == 0 {
		allowed = localOrigins
	}
	for _, pattern := range allowed {
		if matchOrigin(origin, pattern) {
			return true
		}
	}
	return false
}

// matchOrigin compares case-insensitively; a single "*" in pattern matches
// any run of characters.
func matchOrigin(origin, pattern string) bool {
	origin, pattern = strings.ToLower(origin), strings.ToLower(pattern)
	if pattern == "*" {
		return true
	}
	i := strings.IndexByte(pattern, '*')
	if i < 0 {
		return origin == pattern
	}
	prefix, suffix := pattern[:i], pattern[i+1:]
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix)
}

// Run is the hub event loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			h.log.Debugw("Hub stopping due to context cancellation")
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

func (h *Hub) handleRegister(c *client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	last := h.last
	h.mu.Unlock()

	h.log.Infow("Client connected", logger.FieldClientID, c.id, logger.FieldCount, total)

	// Late joiners get the current chart.
	if last != nil {
		select {
		case c.send <- *last:
		default:
		}
	}
}

func (h *Hub) handleUnregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Infow("Client disconnected", logger.FieldClientID, c.id, logger.FieldCount, total)
}

func (h *Hub) handleBroadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.Type {
	case MessageOption:
		h.last = &msg
	case MessageDispose:
		h.last = nil
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.log.Warnw("Client send channel full, removing client", logger.FieldClientID, c.id)
		}
	}
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full the message is dropped and logged.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	default:
		h.log.Warnw("Broadcast queue full, dropping message", logger.FieldEvent, msg.Type)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("WebSocket upgrade failed", logger.FieldError, err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
		id:   uuid.NewString(),
	}
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.hub.log.Warnw("WebSocket read error", logger.FieldClientID, c.id, logger.FieldError, err)
			}
			return
		}

		var msg StyleMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Warnw("JSON unmarshal error", logger.FieldClientID, c.id, logger.FieldError, err)
			continue
		}
		c.route(msg)
	}
}

func (c *client) route(msg StyleMessage) {
	switch msg.Type {
	case MessageStyle:
		if c.hub.onStyle == nil {
			return
		}
		if err := c.hub.onStyle(msg.Bucket, msg.Patch); err != nil {
			c.hub.log.Warnw("Style edit rejected",
				logger.FieldClientID, c.id,
				logger.FieldBucket, msg.Bucket,
				logger.FieldError, err)
		}
	default:
		c.hub.log.Debugw("Ignoring message", logger.FieldClientID, c.id, logger.FieldEvent, msg.Type)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.hub.log.Warnw("WebSocket write error", logger.FieldClientID, c.id, logger.FieldError, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// View is the controller backend for one chart instance. Each render pushes
// the full option to every client.
type View struct {
	hub       *Hub
	chartType chart.ChartType
}

// View returns a backend that publishes charts of type t through h.
func (h *Hub) View(t chart.ChartType) *View {
	return &View{hub: h, chartType: t}
}

func (v *View) Render(opt chart.ChartOption) error {
	v.hub.Broadcast(Message{Type: MessageOption, ChartType: v.chartType, Option: &opt})
	return nil
}

func (v *View) Resize(width, height int) error {
	v.hub.Broadcast(Message{Type: MessageResize, ChartType: v.chartType, Width: width, Height: height})
	return nil
}

func (v *View) Dispose() error {
	v.hub.Broadcast(Message{Type: MessageDispose, ChartType: v.chartType})
	return nil
}
