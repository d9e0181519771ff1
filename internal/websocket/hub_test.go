package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func waitConnections(t *testing.T, hub *Hub, sessionID string, want int) {
	require.Eventually(t, func() bool {
		return hub.Connections(sessionID) == want
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) EffectMessage {
	select {
	case data, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg EffectMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return EffectMessage{}
	}
}

func TestHub_PublishReachesEveryTabOfTheSession(t *testing.T) {
	hub := startHub(t)
	a1 := NewClient(hub, nil, "a")
	a2 := NewClient(hub, nil, "a")
	b := NewClient(hub, nil, "b")
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)
	waitConnections(t, hub, "a", 2)
	waitConnections(t, hub, "b", 1)

	hub.Publish("a", []storefront.Effect{{Type: storefront.EffectToast, Message: storefront.ToastAdded}})

	for _, c := range []*Client{a1, a2} {
		msg := receive(t, c)
		assert.Equal(t, "effects", msg.Type)
		require.Len(t, msg.Effects, 1)
		assert.Equal(t, storefront.ToastAdded, msg.Effects[0].Message)
	}
	assert.Len(t, b.Send, 0)
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	c := NewClient(hub, nil, "a")
	hub.Register(c)
	waitConnections(t, hub, "a", 1)

	hub.Unregister(c)
	waitConnections(t, hub, "a", 0)

	_, ok := <-c.Send
	assert.False(t, ok, "unregister closes the send channel")

	// publishing to a session without connections is a no-op
	hub.Publish("a", []storefront.Effect{{Type: storefront.EffectCartChanged}})
}
