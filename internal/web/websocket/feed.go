// Package websocket streams registry registration events to websocket clients.
package websocket

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/conduit-lang/podreg/runtime/pod"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

// Message is the JSON frame sent for every registration
type Message struct {
	Type  string `json:"type"`
	Pod   string `json:"pod"`
	QName string `json:"qname,omitempty"`
	Base  string `json:"base,omitempty"`
}

// NewMessage converts a registry event into a frame
func NewMessage(e pod.Event) Message {
	msg := Message{Type: e.Kind.String(), Pod: e.Pod}
	if e.Type != nil {
		msg.QName = e.Type.QName()
		msg.Base = e.Type.Base()
	}
	return msg
}

// Feed is a pod.Listener that fans events out to connected clients.
// Clients that cannot keep up are disconnected rather than blocking
// registration.
type Feed struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// NewFeed creates an empty feed. Browser upgrades are accepted from the
// same origin and from allowedOrigins ("*" allows any origin).
func NewFeed(logger *zap.Logger, allowedOrigins ...string) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients), same-origin requests and the listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if set[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// OnRegister implements pod.Listener
func (f *Feed) OnRegister(e pod.Event) {
	data, err := json.Marshal(NewMessage(e))
	if err != nil {
		f.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	f.mu.RLock()
	var slow []*client
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		f.logger.Warn("dropping slow client", zap.String("client_id", c.id))
		f.remove(c)
	}
}

// ServeHTTP upgrades the connection and streams events until the client leaves
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		f.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		conn.Close()
		return
	}
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	f.logger.Debug("client connected", zap.String("client_id", c.id), zap.Int("clients", f.ClientCount()))

	go f.writePump(c)
	f.readPump(c)
}

// readPump discards client frames and detects disconnects
func (f *Feed) readPump(c *client) {
	defer f.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	_, ok := f.clients[c]
	delete(f.clients, c)
	f.mu.Unlock()

	if ok {
		c.close()
		f.logger.Debug("client disconnected", zap.String("client_id", c.id))
	}
}

// ClientCount returns the number of connected clients
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects all clients and refuses new ones
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	clients := f.clients
	f.clients = make(map[*client]struct{})
	f.mu.Unlock()

	for c := range clients {
		c.close()
	}
}
