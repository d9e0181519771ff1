package websocket

import (
	"encoding/json"
	"sync"

	"github.com/ikkim/vitrine-backend/internal/storefront"
	"github.com/ikkim/vitrine-backend/pkg/logger"
)

const sendBufferSize = 64

// EffectMessage is the frame pushed to a session's connections.
type EffectMessage struct {
	Type    string              `json:"type"`
	Effects []storefront.Effect `json:"effects"`
}

// Client is one WebSocket connection bound to a storefront session.
type Client struct {
	Hub       *Hub
	Conn      *Conn
	SessionID string
	Send      chan []byte
}

func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, sendBufferSize),
	}
}

type broadcastMessage struct {
	sessionID string
	message   []byte
}

// Hub fans effects out to every tab open on a session.
type Hub struct {
	// SessionID -> []*Client (여러 탭 지원)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			n := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": n,
			})

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := append([]*Client(nil), h.clients[msg.sessionID]...)
			h.mu.RUnlock()
			for _, client := range clients {
				select {
				case client.Send <- msg.message:
				default:
					// 버퍼가 가득 찬 연결은 끊는다
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": client.SessionID,
					})
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	kept := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return
	}
	if len(kept) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = kept
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id":  client.SessionID,
		"connections": len(kept),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// Publish queues effects for every connection of the session. Frames are
// dropped when the broadcast queue is full; clients resync from the views.
func (h *Hub) Publish(sessionID string, effects []storefront.Effect) {
	if len(effects) == 0 {
		return
	}
	data, err := json.Marshal(EffectMessage{Type: "effects", Effects: effects})
	if err != nil {
		logger.Error("Failed to marshal effects", err)
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{sessionID: sessionID, message: data}:
	default:
		logger.Warn("Broadcast channel full, effects dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Connections counts the open connections of a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}
