package websocket

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conn is the subset of *websocket.Conn the hub needs. Tests substitute a
// recording implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client represents a connected WebSocket client
type Client struct {
	ConnID  string
	UserID  primitive.ObjectID
	Role    string
	Conn    Conn
	writeMu sync.Mutex
}

// Send writes one event to the client. Serialized because the hub and the
// per-connection goroutine both write to the same conn.
func (c *Client) Send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of active clients and their room memberships.
// Rooms are re-derived on every connect; nothing here survives a reconnect.
type Hub struct {
	clients    map[primitive.ObjectID]map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
			client.Conn.Close()
		}
	}
}

// Register queues a client for registration.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister queues a client for removal and connection teardown.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	connectionsGauge.Inc()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.UserID]; ok {
		if conns[client] {
			delete(conns, client)
			connectionsGauge.Dec()
		}
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	for room, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

// JoinRoom subscribes a client to a room. Idempotent: joining a room the
// client is already in neither duplicates membership nor double-delivers.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
}

// LeaveRoom unsubscribes a client from a room.
func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// InRoom reports whether the client is currently subscribed to the room.
func (h *Hub) InRoom(client *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[room][client]
}

// RoomSize returns the number of connections subscribed to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// EmitToRoom pushes an event to every currently-connected member of a room.
// Delivery is best-effort, at-most-once: members that fail the write are
// dropped, and nothing is queued for disconnected users.
func (h *Hub) EmitToRoom(room string, event Event) {
	h.emit(h.roomMembers(room), event)
}

// EmitToUser pushes an event to all connections of a specific user.
func (h *Hub) EmitToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.clients[userID]))
	for client := range h.clients[userID] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("user not connected")
	}

	h.emit(conns, event)
	return nil
}

// EmitToRoomUser pushes an event to one user's connections inside a room.
// Used for per-recipient payloads (unread counts differ per member) while
// still honoring room isolation: a user who never joined the room gets
// nothing, even when connected.
func (h *Hub) EmitToRoomUser(room string, userID primitive.ObjectID, event Event) {
	h.mu.RLock()
	conns := make([]*Client, 0, 2)
	for client := range h.rooms[room] {
		if client.UserID == userID {
			conns = append(conns, client)
		}
	}
	h.mu.RUnlock()

	h.emit(conns, event)
}

func (h *Hub) roomMembers(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		members = append(members, client)
	}
	return members
}

func (h *Hub) emit(clients []*Client, event Event) {
	for _, client := range clients {
		if err := client.Send(event); err != nil {
			// Dead connection: drop it, the client recovers via polling
			h.removeClient(client)
			client.Conn.Close()
			continue
		}
		eventsTotal.WithLabelValues(event.Event).Inc()
	}
}
