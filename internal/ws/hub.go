package ws

import (
	"sync"

	"github.com/bogdang40/DouaInimi/internal/logger"
)

// Hub tracks connected clients and conversation rooms. A room is one match;
// a client may sit in several rooms over the life of its connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[uint64]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[uint64]map[*Client]struct{}),
	}
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logger.Debug("ws client registered", "user_id", c.userID, "conn_id", c.connID)
}

// Unregister removes the client from the hub and from every room it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for matchID, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, matchID)
			}
		}
	}
	h.mu.Unlock()
	logger.Debug("ws client unregistered", "user_id", c.userID, "conn_id", c.connID)
}

// Join puts the client in the match's room. Authorization happens in the
// gateway before this is called.
func (h *Hub) Join(c *Client, matchID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[matchID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[matchID] = members
	}
	members[c] = struct{}{}
}

// Leave removes the client from the match's room.
func (h *Hub) Leave(c *Client, matchID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[matchID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, matchID)
	}
}

// InRoom reports whether the client joined the match's room.
func (h *Hub) InRoom(c *Client, matchID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[matchID][c]
	return ok
}

// Broadcast sends frame to everyone in the match's room, skipping exclude
// when non-nil. Clients with a full send buffer are dropped rather than
// allowed to stall the rest of the room.
func (h *Hub) Broadcast(matchID uint64, frame []byte, exclude *Client) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[matchID]))
	for c := range h.rooms[matchID] {
		if c != exclude {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.trySend(frame) {
			logger.Warn("ws send buffer full, closing slow client",
				"user_id", c.userID, "conn_id", c.connID)
			c.close()
		}
	}
}
