package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, Serve(hub, w, r))
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) SessionEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event SessionEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", want, hub.Subscribers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversEventsInPublishOrder(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()
	conn := dialTestHub(t, hub)
	waitForSubscribers(t, hub, 1)

	hub.Publish("SIGNED_IN", "acc-1", "ada@example.com")
	hub.Publish("TOKEN_REFRESHED", "acc-1", "ada@example.com")
	hub.Publish("SIGNED_OUT", "acc-1", "")

	first := readEvent(t, conn)
	second := readEvent(t, conn)
	third := readEvent(t, conn)

	assert.Equal(t, "SIGNED_IN", first.Type)
	assert.Equal(t, "TOKEN_REFRESHED", second.Type)
	assert.Equal(t, "SIGNED_OUT", third.Type)
	assert.Equal(t, first.Seq+1, second.Seq)
	assert.Equal(t, second.Seq+1, third.Seq)
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()
	connA := dialTestHub(t, hub)
	connB := dialTestHub(t, hub)
	waitForSubscribers(t, hub, 2)

	hub.Publish("SIGNED_IN", "acc-1", "ada@example.com")

	eventA := readEvent(t, connA)
	eventB := readEvent(t, connB)
	assert.Equal(t, eventA.Seq, eventB.Seq)
	assert.Equal(t, "acc-1", eventA.AccountID)
	assert.Equal(t, "acc-1", eventB.AccountID)
}

func TestHubPublishAfterShutdownIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Shutdown()

	hub.Publish("SIGNED_IN", "acc-1", "")

	assert.Zero(t, hub.Subscribers())
}
