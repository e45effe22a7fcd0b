package websocket

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Hub fans server events out to the dashboard connections of one user.
// Each client joins exactly one room, keyed by the user id it watches.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	done       chan struct{}
	mutex      sync.Mutex
	log        logrus.FieldLogger
}

type Message struct {
	Type      string                 `json:"type"`
	UserID    int64                  `json:"user_id"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves register and unregister requests until ctx is cancelled, then
// closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoom(client.UserID))
	h.log.WithField("user_id", client.UserID).Debug("Dashboard client registered")

	h.sendToClient(client, Message{
		Type:      "welcome",
		UserID:    client.UserID,
		Timestamp: getCurrentTimestamp(),
		Data: map[string]interface{}{
			"message": "Connected successfully",
		},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.dropClient(client)
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.dropClient(client)
	}
}

// dropClient must be called with the mutex held.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.log.WithField("user_id", client.UserID).Debug("Dashboard client unregistered")
}

func (h *Hub) sendToRoom(roomID string, message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Warn("Failed to encode websocket message")
		return
	}
	for client := range room {
		select {
		case client.send <- data:
		default:
			// slow consumer
			h.dropClient(client)
		}
	}
}

// sendToClient must be called with the mutex held.
func (h *Hub) sendToClient(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.dropClient(client)
	}
}

func (h *Hub) SendToUser(userID int64, message Message) {
	h.sendToRoom(userRoom(userID), message)
}

// ClientCount reports how many connections watch userID.
func (h *Hub) ClientCount(userID int64) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.rooms[userRoom(userID)])
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func userRoom(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10)
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
