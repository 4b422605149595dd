// Package relay is the realtime core: a websocket hub with named rooms,
// per-chat ordered message persistence, and fan-out of chat and call events.
package relay

import (
	"encoding/json"
	"fmt"
	"sync"

	"pulsechat/models"
)

// InboxRoom is the per-user room every connection of that user joins.
// Conversation-list updates and call invites land here.
func InboxRoom(userID int64) string {
	return fmt.Sprintf("inbox:%d", userID)
}

// ChatRoom is the room for one chat's live message stream.
func ChatRoom(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

// Hub tracks which clients are in which rooms. All membership state is
// guarded by one lock; emits take the read side so fan-out can overlap.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Join adds the client to a room. Joining a room twice is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[c] = true
	c.rooms[room] = true
}

// Leave removes the client from a room. Leaving a room the client is not in
// is a no-op.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, room)
}

// Disconnect removes the client from every room and closes its send channel.
// Membership removal and channel close happen under the same lock Emit
// reads under, so no emit can write to a closed channel.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for room := range c.rooms {
		h.removeLocked(c, room)
	}
	c.closed = true
	close(c.send)
}

func (h *Hub) removeLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c)
	delete(c.rooms, room)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Emit serializes the event once and queues it to every client in the room.
// Returns the number of clients the event was queued for; zero means the
// room is empty. A client whose send buffer is full has stopped draining
// its socket; it is disconnected so it reconnects and resyncs instead of
// silently falling behind the stream.
func (h *Hub) Emit(room string, event models.ServerEvent) int {
	data, err := json.Marshal(event)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	delivered := 0
	var stalled []*Client
	for c := range h.rooms[room] {
		select {
		case c.send <- data:
			delivered++
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.RUnlock()

	// Disconnect takes the write lock, so it must run after the read
	// side is released.
	for _, c := range stalled {
		h.Disconnect(c)
	}
	return delivered
}

// EmitTo queues an event to a single client. Returns false if the client
// has disconnected or its buffer is full.
func (h *Hub) EmitTo(c *Client, event models.ServerEvent) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// RoomSize reports the current number of clients in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
