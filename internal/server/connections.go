package server

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendQueueSize = 64
	writeTimeout  = 10 * time.Second
)

// Conn is one client connection with its outbound queue. A single writer
// goroutine drains the queue, so broadcasting never blocks the room that
// emitted the event and each client observes frames in emission order.
type Conn struct {
	ID   string
	sock *websocket.Conn
	send chan []byte
	once sync.Once
}

func newConn(id string, sock *websocket.Conn) *Conn {
	c := &Conn{
		ID:   id,
		sock: sock,
		send: make(chan []byte, sendQueueSize),
	}
	go c.writePump()
	return c
}

func (c *Conn) writePump() {
	for data := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.sock.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			// The read loop will observe the dead socket and clean up.
			log.Debug().Str("conn", c.ID).Err(err).Msg("websocket write failed")
			return
		}
	}
}

// enqueue queues an outbound frame, dropping it rather than blocking when
// the client cannot keep up.
func (c *Conn) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Warn().Str("conn", c.ID).Msg("send queue full, dropping frame")
	}
}

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// ConnectionManager tracks live connections and which room each one is in.
// Player seat IDs are connection IDs, so this is also the seat → socket
// mapping the broadcast gateway resolves against.
type ConnectionManager struct {
	mu    sync.RWMutex
	conns map[string]*Conn  // connectionID → connection
	rooms map[string]string // connectionID → room code
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		conns: make(map[string]*Conn),
		rooms: make(map[string]string),
	}
}

func (cm *ConnectionManager) Add(c *Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.conns[c.ID] = c
}

// Remove drops a connection and returns the room code it was in, if any.
func (cm *ConnectionManager) Remove(id string) string {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	code := cm.rooms[id]
	delete(cm.conns, id)
	delete(cm.rooms, id)
	return code
}

func (cm *ConnectionManager) Get(id string) *Conn {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.conns[id]
}

func (cm *ConnectionManager) SetRoom(id, code string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.rooms[id] = code
}

func (cm *ConnectionManager) ClearRoom(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	delete(cm.rooms, id)
}

// CloseAll closes every connection's send queue. Used at shutdown.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, c := range cm.conns {
		c.close()
	}
}

// RoomOf returns the room code a connection joined, or "".
func (cm *ConnectionManager) RoomOf(id string) string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.rooms[id]
}
