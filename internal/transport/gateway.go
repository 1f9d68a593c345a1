package transport

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the configured client origin in production.
	},
}

// Router decodes a connection's ingress envelopes into table events. It is
// implemented by internal/lobby.Lobby, which cmd/server passes to New:
// keeping knowledge of the lobby and the tables out of this package is
// what lets internal/table import
// internal/transport (for the wire codec) without a cycle.
type Router interface {
	// Route handles one decoded client envelope for userID and reports the
	// table it is now associated with, if any, so the gateway can tag the
	// connection for logging. send is this connection's push function,
	// handed through on every call exactly as the teacher's gateway passed
	// broadcastToUser into Lobby.QuickStart, so a table created to serve
	// this request can be wired to push back through this connection
	// without the router holding a reference to the gateway itself. A
	// returned error is sent back to the client as an error envelope,
	// except for player_action envelopes.
	Route(userID uint64, send func(uint64, []byte), env *ClientEnvelope) (tableID string, err error)
	// Disconnect notifies the router that userID's transport has gone
	// away, without waiting for the table's offline-seat TTL to expire.
	Disconnect(userID uint64)
}

// Connection is one upgraded websocket client.
type Connection struct {
	ID       string
	UserID   uint64
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time

	TableID string
}

// Gateway is the websocket ingress/egress boundary: connection upgrade,
// ping/pong keepalive, and per-connection read/write pumps. It never
// touches game state directly.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	userConns   map[uint64]*Connection
	nextConnID  uint64
	seq         uint64
	router      Router
}

func New(router Router) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		userConns:   make(map[uint64]*Connection),
		router:      router,
	}
}

// HandleWebSocket upgrades r and spawns the connection's read/write pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] upgrade error: %v", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	connID := fmt.Sprintf("conn_%d", g.nextConnID)
	userID := g.nextConnID // demo identity: one connection, one player id
	c := &Connection{
		ID:       connID,
		UserID:   userID,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Gateway:  g,
		LastPing: time.Now(),
	}
	g.connections[connID] = c
	g.userConns[userID] = c
	g.mu.Unlock()

	log.Printf("[Gateway] client connected: %s (userID=%d), total=%d", connID, userID, len(g.connections))

	go c.writePump()
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(65536)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] read error on %s: %v", c.ID, err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := DecodeClientEnvelope(data)
	if err != nil {
		log.Printf("[Gateway] %s: %v", c.ID, err)
		c.sendError(1, "invalid message format")
		return
	}
	tableID, err := c.Gateway.router.Route(c.UserID, c.Gateway.SendToUser, env)
	if tableID != "" {
		c.TableID = tableID
	}
	// player_action rejections are only logged by the table; the client
	// learns the outcome from the next game_state.
	if err != nil && env.Type != ClientAction {
		c.sendError(2, err.Error())
	}
}

func (c *Connection) sendError(code int32, msg string) {
	env := ServerEnvelope{
		Type:      ServerError,
		TableID:   c.TableID,
		ServerSeq: atomic.AddUint64(&c.Gateway.seq, 1),
		TsMs:      time.Now().UnixMilli(),
		Error:     &ErrorPayload{Code: code, Message: msg},
	}
	data, err := Encode(env)
	if err != nil {
		log.Printf("[Gateway] encode error envelope failed: %v", err)
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	delete(g.userConns, c.UserID)
	total := len(g.connections)
	g.mu.Unlock()
	log.Printf("[Gateway] client disconnected: %s, total=%d", c.ID, total)
	g.router.Disconnect(c.UserID)
}

// SendToUser implements broadcast.Sender: it is handed to internal/table
// (as Router.Route's send argument, which the lobby passes on to
// table.New) as the function a table uses to push bytes to one seat's
// transport.
func (g *Gateway) SendToUser(userID uint64, data []byte) {
	g.mu.RLock()
	c := g.userConns[userID]
	g.mu.RUnlock()
	if c == nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		log.Printf("[Gateway] dropped message to user %d: send buffer full", userID)
	}
}

// Broadcast pushes raw bytes to every connected client, used for
// process-wide notices (maintenance, shutdown) outside any one table.
func (g *Gateway) Broadcast(data []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		select {
		case c.Send <- data:
		default:
		}
	}
}
