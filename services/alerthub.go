package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// SubscribeAll is the channel key for clients that want every alert.
const SubscribeAll = "*"

// AlertHub fans freshly detected alerts out to WebSocket dashboard clients.
// Clients subscribe to a single vehicle id or to "*"; the hub holds one NATS
// subscription per channel.
type AlertHub struct {
	natsConn *nats.Conn

	clients   map[*AlertClient]bool
	clientsMu sync.RWMutex

	// channel key ("*" or vehicle id) -> subscription
	subscriptions   map[string]*alertSubscription
	subscriptionsMu sync.RWMutex

	register   chan *AlertClient
	unregister chan *AlertClient
}

// alertSubscription tracks one NATS subject with its viewers
type alertSubscription struct {
	channel   string
	natsSub   *nats.Subscription
	viewers   map[*AlertClient]bool
	viewersMu sync.RWMutex
}

// AlertClient represents a WebSocket client watching alerts
type AlertClient struct {
	hub        *AlertHub
	conn       *websocket.Conn
	send       chan []byte
	channels   map[string]bool
	channelsMu sync.RWMutex
	userID     string
	remoteAddr string
}

// AlertMessage is a control/data message exchanged with clients
type AlertMessage struct {
	Type    string          `json:"type"`              // subscribe, unsubscribe, alert, ping
	Channel string          `json:"channel,omitempty"` // "*" or a vehicle id
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewAlertHub creates a new alert hub
func NewAlertHub(natsConn *nats.Conn) *AlertHub {
	return &AlertHub{
		natsConn:      natsConn,
		clients:       make(map[*AlertClient]bool),
		subscriptions: make(map[string]*alertSubscription),
		register:      make(chan *AlertClient),
		unregister:    make(chan *AlertClient),
	}
}

// Register adds a client to the hub
func (h *AlertHub) Register(client *AlertClient) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *AlertHub) Run() {
	log.Println("🔔 Alert hub started")

	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client] = true
			h.clientsMu.Unlock()
			log.Printf("🔔 Client connected: %s", client.remoteAddr)

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMu.Unlock()

			// Snapshot the keys first: unsubscribeClient takes channelsMu
			// itself, so it must not run under that lock.
			client.channelsMu.Lock()
			channels := make([]string, 0, len(client.channels))
			for channel := range client.channels {
				channels = append(channels, channel)
			}
			client.channelsMu.Unlock()

			for _, channel := range channels {
				h.unsubscribeClient(client, channel)
			}

			log.Printf("🔔 Client disconnected: %s", client.remoteAddr)
		}
	}
}

// subjectFor maps a channel key to its NATS subject
func subjectFor(channel string) string {
	if channel == SubscribeAll {
		return "alerts.>"
	}
	return fmt.Sprintf("alerts.%s", channel)
}

// Subscribe subscribes a client to an alert channel
func (h *AlertHub) Subscribe(client *AlertClient, channel string) error {
	h.subscriptionsMu.Lock()
	defer h.subscriptionsMu.Unlock()

	sub, exists := h.subscriptions[channel]
	if !exists {
		sub = &alertSubscription{
			channel: channel,
			viewers: make(map[*AlertClient]bool),
		}

		natsSub, err := h.natsConn.Subscribe(subjectFor(channel), func(msg *nats.Msg) {
			h.broadcast(channel, msg.Data)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to alerts: %w", err)
		}
		sub.natsSub = natsSub
		h.subscriptions[channel] = sub

		log.Printf("🔔 Created subscription for channel %s", channel)
	}

	sub.viewersMu.Lock()
	sub.viewers[client] = true
	sub.viewersMu.Unlock()

	client.channelsMu.Lock()
	client.channels[channel] = true
	client.channelsMu.Unlock()

	log.Printf("🔔 Client %s subscribed to %s", client.remoteAddr, channel)
	return nil
}

// Unsubscribe removes a client from a channel
func (h *AlertHub) Unsubscribe(client *AlertClient, channel string) {
	h.unsubscribeClient(client, channel)
}

func (h *AlertHub) unsubscribeClient(client *AlertClient, channel string) {
	h.subscriptionsMu.Lock()
	defer h.subscriptionsMu.Unlock()

	sub, exists := h.subscriptions[channel]
	if !exists {
		return
	}

	sub.viewersMu.Lock()
	delete(sub.viewers, client)
	viewerCount := len(sub.viewers)
	sub.viewersMu.Unlock()

	client.channelsMu.Lock()
	delete(client.channels, channel)
	client.channelsMu.Unlock()

	if viewerCount == 0 {
		if sub.natsSub != nil {
			sub.natsSub.Unsubscribe()
		}
		delete(h.subscriptions, channel)
		log.Printf("🔔 Removed subscription for channel %s (no viewers)", channel)
	}
}

// broadcast sends an alert to every viewer of a channel
func (h *AlertHub) broadcast(channel string, alertData []byte) {
	h.subscriptionsMu.RLock()
	sub, exists := h.subscriptions[channel]
	h.subscriptionsMu.RUnlock()

	if !exists {
		return
	}

	msg := AlertMessage{
		Type:    "alert",
		Channel: channel,
		Data:    alertData,
	}
	msgBytes, _ := json.Marshal(msg)

	sub.viewersMu.RLock()
	for client := range sub.viewers {
		select {
		case client.send <- msgBytes:
		default:
			// Client buffer full, skip
		}
	}
	sub.viewersMu.RUnlock()
}

// HubStats holds hub statistics
type HubStats struct {
	Clients        int      `json:"clients"`
	Subscriptions  int      `json:"subscriptions"`
	ActiveChannels []string `json:"activeChannels"`
}

// Stats returns hub statistics
func (h *AlertHub) Stats() HubStats {
	h.clientsMu.RLock()
	clientCount := len(h.clients)
	h.clientsMu.RUnlock()

	h.subscriptionsMu.RLock()
	channels := make([]string, 0, len(h.subscriptions))
	for key := range h.subscriptions {
		channels = append(channels, key)
	}
	h.subscriptionsMu.RUnlock()

	return HubStats{
		Clients:        clientCount,
		Subscriptions:  len(channels),
		ActiveChannels: channels,
	}
}
