package ws

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/lshigami/Ocelots/internal/attempt"
	"github.com/lshigami/Ocelots/internal/model"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one websocket connection plus its outbound queue. All writes go
// through the queue so publishers never touch the socket directly.
type client struct {
	conn *websocket.Conn
	send chan attempt.Event
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan attempt.Event, sendBufferSize),
		done: make(chan struct{}),
	}
}

// shutdown signals the writer to stop. Safe to call from any goroutine, any
// number of times.
func (cl *client) shutdown() {
	cl.once.Do(func() { close(cl.done) })
}

// Hub fans attempt events (ticks, expiry, submission results) out to the
// websocket connections watching a session. It implements attempt.Notifier.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	jwtSecret   []byte
}

func NewHub(jwtSecret []byte) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		jwtSecret:   jwtSecret,
	}
}

// Publish queues one event for every connection registered for the session
// key. It never blocks: each connection has a buffered queue drained by its
// own writer goroutine, and a connection whose queue is full is dropped
// instead of stalling the publisher.
func (h *Hub) Publish(sessionKey string, event attempt.Event) {
	h.mu.RLock()
	clients := h.connections[sessionKey]
	h.mu.RUnlock()

	for _, cl := range clients {
		select {
		case cl.send <- event:
		case <-cl.done:
		default:
			log.Warn().Str("session", sessionKey).Msg("ws: send queue full, dropping connection")
			cl.shutdown()
		}
	}
}

// HandleWebSocket upgrades the connection after validating the access token
// passed as a query parameter. The session key is derived from the token's
// user, matching the attempt controller's keying.
func (h *Hub) HandleWebSocket(ctx *gin.Context) {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "token query parameter is required"})
		return
	}

	claims := &model.Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws: upgrade failed")
		return
	}

	sessionKey := fmt.Sprintf("student-%d", claims.UserID)
	cl := newClient(conn)
	h.register(sessionKey, cl)

	go cl.writeLoop(h, sessionKey)
	go cl.readLoop(h, sessionKey)
}

// writeLoop drains the client's queue onto the socket. A write that cannot
// finish within writeWait counts as a dead peer.
func (cl *client) writeLoop(h *Hub, sessionKey string) {
	defer h.unregister(sessionKey, cl)
	for {
		select {
		case <-cl.done:
			return
		case ev := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; its only job is detecting disconnects.
func (cl *client) readLoop(h *Hub, sessionKey string) {
	defer h.unregister(sessionKey, cl)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(sessionKey string, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[sessionKey] = append(h.connections[sessionKey], cl)
	log.Debug().Str("session", sessionKey).Int("total", len(h.connections[sessionKey])).Msg("ws: connection registered")
}

func (h *Hub) unregister(sessionKey string, cl *client) {
	h.mu.Lock()
	conns := h.connections[sessionKey]
	for i, c := range conns {
		if c == cl {
			h.connections[sessionKey] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sessionKey]) == 0 {
		delete(h.connections, sessionKey)
	}
	h.mu.Unlock()

	cl.shutdown()
	cl.conn.Close()
}
