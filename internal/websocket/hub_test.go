package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(id, userID string, hub *Hub) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Hub:    hub,
		Send:   make(chan []byte, 4),
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, hub.GetClientCount())
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := testClient("conn-1", "user-001", hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	// Send channel is closed on unregister
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := testClient("conn-1", "user-001", hub)
	second := testClient("conn-2", "user-002", hub)
	hub.Register <- first
	hub.Register <- second
	waitForClients(t, hub, 2)

	require.True(t, hub.Send([]byte("phase_changed")))

	for _, client := range []*Client{first, second} {
		select {
		case msg := <-client.Send:
			assert.Equal(t, "phase_changed", string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the broadcast", client.ID)
		}
	}
}

func TestHub_BroadcastToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	target := testClient("conn-1", "user-001", hub)
	other := testClient("conn-2", "user-002", hub)
	hub.Register <- target
	hub.Register <- other
	waitForClients(t, hub, 2)

	hub.BroadcastToUser("user-001", []byte("direct"))

	select {
	case msg := <-target.Send:
		assert.Equal(t, "direct", string(msg))
	case <-time.After(time.Second):
		t.Fatal("target never received the message")
	}

	select {
	case msg := <-other.Send:
		t.Fatalf("unexpected message for other user: %s", msg)
	default:
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{
		ID:     "conn-1",
		UserID: "user-001",
		Hub:    hub,
		Send:   make(chan []byte), // unbuffered, nobody reading
	}
	hub.Register <- slow
	waitForClients(t, hub, 1)

	require.True(t, hub.Send([]byte("one")))
	waitForClients(t, hub, 0)
}

func TestHub_SendReportsFullQueue(t *testing.T) {
	hub := NewHub()
	// hub not running, fill the broadcast queue
	for i := 0; i < cap(hub.Broadcast); i++ {
		require.True(t, hub.Send([]byte("x")))
	}
	assert.False(t, hub.Send([]byte("overflow")))
}
