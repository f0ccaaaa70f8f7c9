package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redripper480/sync-party-server/domain"
)

type mockConn struct {
	id       string
	mu       sync.Mutex
	clientID string
	roomID   string
	received [][]byte
	sendErr  error
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) ClientID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientID
}

func (m *mockConn) SetClientID(id string) {
	m.mu.Lock()
	m.clientID = id
	m.mu.Unlock()
}

func (m *mockConn) Room() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

func (m *mockConn) SetRoom(id string) {
	m.mu.Lock()
	m.roomID = id
	m.mu.Unlock()
}

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error { return nil }

func TestHub_Create(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}

	require.NoError(t, h.Create("r1", "http://x", a))
	assert.Equal(t, "r1", a.Room())

	err := h.Create("r1", "http://y", b)
	assert.ErrorIs(t, err, domain.ErrRoomExists)
	assert.Empty(t, b.Room())

	// The losing creator must not have disturbed the original membership.
	rooms, clients := h.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, clients)
}

func TestHub_Join(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}

	_, err := h.Join("nowhere", b)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Empty(t, b.Room())

	require.NoError(t, h.Create("r1", "http://x", a))

	url, err := h.Join("r1", b)
	require.NoError(t, err)
	assert.Equal(t, "http://x", url)
	assert.Equal(t, "r1", b.Room())

	// Joining the same room again must not duplicate the member.
	_, err = h.Join("r1", b)
	require.NoError(t, err)
	_, clients := h.Stats()
	assert.Equal(t, 2, clients)
}

func TestHub_JoinLeavesOldRoom(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	c := &mockConn{id: "c"}

	require.NoError(t, h.Create("r1", "", a))
	require.NoError(t, h.Create("r2", "", b))
	_, err := h.Join("r1", c)
	require.NoError(t, err)

	// c moves rooms; it must not linger in r1's member set.
	_, err = h.Join("r2", c)
	require.NoError(t, err)
	assert.Equal(t, "r2", c.Room())
	assert.Empty(t, h.Targets("r1", a))
	assert.Len(t, h.Targets("r2", b), 1)
}

func TestHub_Detach(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}

	require.NoError(t, h.Create("r1", "", a))
	_, err := h.Join("r1", b)
	require.NoError(t, err)

	h.Detach(a)
	assert.Empty(t, a.Room())
	rooms, clients := h.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, clients)

	h.Detach(b)
	rooms, _ = h.Stats()
	assert.Equal(t, 0, rooms)

	// A reclaimed room id is free for reuse.
	assert.NoError(t, h.Create("r1", "http://again", b))
}

func TestHub_DetachWithoutRoom(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}

	assert.NotPanics(t, func() {
		h.Detach(a)
		h.Detach(a)
	})
	rooms, clients := h.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, clients)
}

func TestHub_Targets(t *testing.T) {
	h := New()
	a := &mockConn{id: "a"}
	b := &mockConn{id: "b"}
	c := &mockConn{id: "c"}

	require.NoError(t, h.Create("r1", "", a))
	_, err := h.Join("r1", b)
	require.NoError(t, err)
	_, err = h.Join("r1", c)
	require.NoError(t, err)

	targets := h.Targets("r1", a)
	require.Len(t, targets, 2)
	for _, conn := range targets {
		assert.NotEqual(t, "a", conn.ID())
	}

	assert.Empty(t, h.Targets("missing", a))
	assert.Len(t, h.Targets("r1", nil), 3)
}

func TestHub_Stats(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*Hub)
		wantRooms   int
		wantClients int
	}{
		{
			name:        "empty hub",
			setup:       func(h *Hub) {},
			wantRooms:   0,
			wantClients: 0,
		},
		{
			name: "one room one client",
			setup: func(h *Hub) {
				h.Create("r1", "", &mockConn{id: "c1"})
			},
			wantRooms:   1,
			wantClients: 1,
		},
		{
			name: "multiple rooms",
			setup: func(h *Hub) {
				h.Create("r1", "", &mockConn{id: "c1"})
				h.Join("r1", &mockConn{id: "c2"})
				h.Create("r2", "", &mockConn{id: "c3"})
			},
			wantRooms:   2,
			wantClients: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			tt.setup(h)

			rooms, clients := h.Stats()

			assert.Equal(t, tt.wantRooms, rooms)
			assert.Equal(t, tt.wantClients, clients)
		})
	}
}
