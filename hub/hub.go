package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/redripper480/sync-party-server/domain"
	"github.com/redripper480/sync-party-server/metrics"
)

type room struct {
	url       string
	createdAt time.Time
	members   map[string]domain.Connection
}

// Hub is the room registry. One mutex guards the whole room map so that
// no two dispatches interleave their effects on the same room.
type Hub struct {
	rooms map[string]*room
	mu    sync.RWMutex
}

func New() *Hub {
	return &Hub{
		rooms: make(map[string]*room),
	}
}

// Create inserts a new room with member as its only occupant. The member
// is detached from any previous room first.
func (h *Hub) Create(roomID, url string, member domain.Connection) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[roomID]; exists {
		return domain.ErrRoomExists
	}

	h.detachLocked(member)
	h.rooms[roomID] = &room{
		url:       url,
		createdAt: time.Now(),
		members:   map[string]domain.Connection{member.ID(): member},
	}
	member.SetRoom(roomID)
	metrics.RoomsActive.Inc()

	slog.Info("room created", "room", roomID, "url", url, "clientId", member.ClientID())
	return nil
}

// Join adds member to an existing room and returns the room's url.
// Joining a room the member already occupies is a no-op. Joining a
// different room detaches from the old one first.
func (h *Hub) Join(roomID string, member domain.Connection) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, exists := h.rooms[roomID]
	if !exists {
		return "", domain.ErrRoomNotFound
	}

	if member.Room() != roomID {
		h.detachLocked(member)
	}
	r.members[member.ID()] = member
	member.SetRoom(roomID)

	slog.Info("client joined room", "room", roomID, "clientId", member.ClientID(), "members", len(r.members))
	return r.url, nil
}

// Detach removes member from its current room, deleting the room when it
// empties. Safe to call for a member that was never in a room.
func (h *Hub) Detach(member domain.Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(member)
}

func (h *Hub) detachLocked(member domain.Connection) {
	roomID := member.Room()
	if roomID == "" {
		return
	}
	member.SetRoom("")

	r, exists := h.rooms[roomID]
	if !exists {
		return
	}

	delete(r.members, member.ID())
	slog.Info("client left room", "room", roomID, "clientId", member.ClientID(), "members", len(r.members))

	if len(r.members) == 0 {
		delete(h.rooms, roomID)
		metrics.RoomsActive.Dec()
		slog.Info("room removed", "room", roomID)
	}
}

// Targets returns the room's members other than exclude. A missing room
// yields an empty slice, not an error.
func (h *Hub) Targets(roomID string, exclude domain.Connection) []domain.Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, exists := h.rooms[roomID]
	if !exists {
		return nil
	}

	targets := make([]domain.Connection, 0, len(r.members))
	for id, conn := range r.members {
		if exclude != nil && id == exclude.ID() {
			continue
		}
		targets = append(targets, conn)
	}
	return targets
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms = len(h.rooms)
	for _, r := range h.rooms {
		clients += len(r.members)
	}
	return rooms, clients
}
