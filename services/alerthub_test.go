package services

import (
	"testing"
	"time"
)

func newTestClient(hub *AlertHub, addr string) *AlertClient {
	return &AlertClient{
		hub:        hub,
		send:       make(chan []byte, sendBufferSize),
		channels:   make(map[string]bool),
		remoteAddr: addr,
	}
}

func TestHubDisconnectWithActiveSubscription(t *testing.T) {
	hub := NewAlertHub(nil)
	go hub.Run()

	client := newTestClient(hub, "client-1")
	client.channels["7"] = true

	// Seed a subscription directly; no broker needed to exercise the
	// unregister path (unsubscribeClient tolerates a nil natsSub).
	hub.subscriptionsMu.Lock()
	hub.subscriptions["7"] = &alertSubscription{
		channel: "7",
		viewers: map[*AlertClient]bool{client: true},
	}
	hub.subscriptionsMu.Unlock()

	hub.register <- client
	hub.unregister <- client

	// The hub loop must keep serving after a disconnect that tears down
	// channel subscriptions.
	second := newTestClient(hub, "client-2")
	select {
	case hub.register <- second:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub stopped accepting clients after a disconnect with an active subscription")
	}

	deadline := time.After(2 * time.Second)
	for {
		hub.subscriptionsMu.RLock()
		_, exists := hub.subscriptions["7"]
		hub.subscriptionsMu.RUnlock()
		if !exists {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("viewerless subscription must be removed when its last client disconnects")
		case <-time.After(10 * time.Millisecond):
		}
	}

	client.channelsMu.RLock()
	remaining := len(client.channels)
	client.channelsMu.RUnlock()
	if remaining != 0 {
		t.Fatalf("disconnected client still holds %d channel(s)", remaining)
	}
}

func TestHubStatsCountsClients(t *testing.T) {
	hub := NewAlertHub(nil)
	go hub.Run()

	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	hub.register <- a
	hub.register <- b

	deadline := time.After(2 * time.Second)
	for hub.Stats().Clients != 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 registered clients, got %d", hub.Stats().Clients)
		case <-time.After(10 * time.Millisecond):
		}
	}

	hub.unregister <- a
	for hub.Stats().Clients != 1 {
		select {
		case <-deadline:
			t.Fatalf("expected 1 client after disconnect, got %d", hub.Stats().Clients)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
