package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient builds a client without a live websocket; only the send buffer
// and done channel matter for hub behavior.
func testClient(userID uint64) *Client {
	return &Client{
		userID: userID,
		connID: "test",
		send:   make(chan []byte, 4),
		done:   make(chan struct{}),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case frame := <-c.send:
			out = append(out, frame)
		default:
			return out
		}
	}
}

func TestHubBroadcastExcludesSender(t *testing.T) {
	hub := NewHub()
	a, b := testClient(1), testClient(2)
	hub.Register(a)
	hub.Register(b)
	hub.Join(a, 10)
	hub.Join(b, 10)

	hub.Broadcast(10, []byte("typing"), a)

	assert.Empty(t, drain(a))
	require.Len(t, drain(b), 1)
}

func TestHubBroadcastToAll(t *testing.T) {
	hub := NewHub()
	a, b := testClient(1), testClient(2)
	hub.Register(a)
	hub.Register(b)
	hub.Join(a, 10)
	hub.Join(b, 10)

	hub.Broadcast(10, []byte("msg"), nil)

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	a, b := testClient(1), testClient(2)
	hub.Register(a)
	hub.Register(b)
	hub.Join(a, 10)
	hub.Join(b, 20)

	hub.Broadcast(10, []byte("msg"), nil)

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestHubLeaveAndUnregister(t *testing.T) {
	hub := NewHub()
	a, b := testClient(1), testClient(2)
	hub.Register(a)
	hub.Register(b)
	hub.Join(a, 10)
	hub.Join(b, 10)

	hub.Leave(a, 10)
	assert.False(t, hub.InRoom(a, 10))
	assert.True(t, hub.InRoom(b, 10))

	hub.Broadcast(10, []byte("msg"), nil)
	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)

	// unregister removes from all rooms
	hub.Unregister(b)
	hub.Broadcast(10, []byte("msg"), nil)
	assert.Empty(t, drain(b))
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{userID: 1, connID: "slow", send: make(chan []byte, 1), done: make(chan struct{})}
	hub.Register(slow)
	hub.Join(slow, 10)

	hub.Broadcast(10, []byte("first"), nil)
	// buffer full now; the next broadcast closes the client
	hub.Broadcast(10, []byte("second"), nil)

	select {
	case <-slow.done:
	default:
		t.Fatal("expected slow client to be closed")
	}
}
